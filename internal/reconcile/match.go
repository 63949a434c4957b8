package reconcile

import (
	"strings"

	"github.com/bnema/esoctl/internal/addons"
	"github.com/bnema/esoctl/internal/catalog"
)

// MatchKind tags the outcome of looking an install up in the catalog
type MatchKind int

const (
	Absent    MatchKind = iota // No catalog entry installs into this folder
	Unique                     // Exactly one entry
	Ambiguous                  // Several entries collide on the folder
)

func (k MatchKind) String() string {
	switch k {
	case Unique:
		return "unique"
	case Ambiguous:
		return "ambiguous"
	default:
		return "absent"
	}
}

// Match is the result of identifying one install
type Match struct {
	Kind       MatchKind
	Candidates []catalog.Entry
}

// Entry returns the single candidate of a Unique match
func (m Match) Entry() (catalog.Entry, bool) {
	if m.Kind != Unique {
		return catalog.Entry{}, false
	}
	return m.Candidates[0], true
}

// Identify looks an install up by its normalized path
func Identify(install *addons.InstalledAddon, idx *catalog.Index) Match {
	candidates := idx.Lookup(install.Path)
	switch len(candidates) {
	case 0:
		return Match{Kind: Absent}
	case 1:
		return Match{Kind: Unique, Candidates: candidates}
	default:
		return Match{Kind: Ambiguous, Candidates: candidates}
	}
}

// Disambiguator picks a replacement among colliding candidates when none of
// them is current. Returning false leaves the install unresolved.
type Disambiguator interface {
	Disambiguate(install *addons.InstalledAddon, candidates []catalog.Entry) (catalog.Entry, bool)
}

// NoDisambiguation never resolves a collision
type NoDisambiguation struct{}

// Disambiguate implements Disambiguator
func (NoDisambiguation) Disambiguate(*addons.InstalledAddon, []catalog.Entry) (catalog.Entry, bool) {
	return catalog.Entry{}, false
}

// TitleDisambiguator picks the only candidate whose title equals the install
// title, ignoring case and color codes
type TitleDisambiguator struct{}

// Disambiguate implements Disambiguator
func (TitleDisambiguator) Disambiguate(install *addons.InstalledAddon, candidates []catalog.Entry) (catalog.Entry, bool) {
	if install.Title == "" {
		return catalog.Entry{}, false
	}

	var found []catalog.Entry
	for _, c := range candidates {
		if strings.EqualFold(addons.CleanTitle(c.Title), install.Title) {
			found = append(found, c)
		}
	}
	if len(found) != 1 {
		return catalog.Entry{}, false
	}
	return found[0], true
}

// DisambiguatorByName returns the strategy configured by name
func DisambiguatorByName(name string) (Disambiguator, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return NoDisambiguation{}, true
	case "title":
		return TitleDisambiguator{}, true
	default:
		return nil, false
	}
}
