package addons

import (
	"strings"
	"time"
	"unicode"
)

// InstalledAddon represents one add-on directory found in the ESO AddOns folder
type InstalledAddon struct {
	Title        string `json:"title"`         // From manifest: ## Title, cleaned
	Version      string `json:"version"`       // From manifest: ## AddOnVersion
	VersionName  string `json:"version_name"`  // From manifest: ## Version
	Name         string `json:"name"`          // Folder name (e.g., "LibAddonMenu-2.0")
	Path         string `json:"path"`          // Normalized folder key (e.g., "libaddonmenu-2.0")
	IsLibrary    bool   `json:"is_library"`    // From manifest: ## IsLibrary
	ManifestPath string `json:"manifest_path"` // Full path to the manifest file
}

// NormalizePath turns a folder name into the key shared by local installs and
// catalog entries: all whitespace removed, lower-cased.
func NormalizePath(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// DownloadRecord is stored in downloads.json for every fetched archive
type DownloadRecord struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Version      string    `json:"version"`
	Checksum     string    `json:"checksum"`
	Archive      string    `json:"archive"` // Full path of the archive in the download cache
	DownloadedAt time.Time `json:"downloaded_at"`
}

// Store represents the persistent download metadata storage
type Store struct {
	Downloads map[string]DownloadRecord `json:"downloads"`
}

// SkippedManifest is a manifest that could not be parsed during a scan
type SkippedManifest struct {
	Path string
	Err  error
}

// ScanResult represents the outcome of scanning the AddOns directory
type ScanResult struct {
	Addons    map[string]*InstalledAddon // Keyed by normalized path
	Skipped   []SkippedManifest          // Malformed manifests, skipped per item
	DataFiles []string                   // Manifests that declared themselves data files
	Ignored   []string                   // .txt files that are not the folder's manifest
}

// Sorted returns the scanned addons, libraries last, then by normalized path
func (r *ScanResult) Sorted() []*InstalledAddon {
	out := make([]*InstalledAddon, 0, len(r.Addons))
	for _, a := range r.Addons {
		out = append(out, a)
	}
	sortAddons(out)
	return out
}
