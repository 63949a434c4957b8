package reconcile

import (
	"github.com/bnema/esoctl/internal/addons"
	"github.com/bnema/esoctl/internal/catalog"
)

// Tier identifies which comparison proved an install current
type Tier int

const (
	TierNone        Tier = iota // No comparison matched
	TierAddOnVersion            // install.Version == entry.NestedVersion
	TierVersionName             // install.VersionName == entry.Version
)

func (t Tier) String() string {
	switch t {
	case TierAddOnVersion:
		return "addon-version"
	case TierVersionName:
		return "version-name"
	default:
		return "none"
	}
}

// IsCurrent reports whether install is up to date with entry.
// Versions are compared as exact strings; upstream versions are not
// guaranteed to be well-formed semantic versions.
func IsCurrent(install *addons.InstalledAddon, entry catalog.Entry) bool {
	return CompareTier(install, entry) != TierNone
}

// CompareTier returns the first comparison tier that matches, or TierNone
func CompareTier(install *addons.InstalledAddon, entry catalog.Entry) Tier {
	if install == nil {
		return TierNone
	}
	if install.Version != "" && entry.NestedVersion != "" && install.Version == entry.NestedVersion {
		return TierAddOnVersion
	}
	if install.VersionName != "" && install.VersionName == entry.Version.String() {
		return TierVersionName
	}
	return TierNone
}
