package catalog

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/bnema/esoctl/internal/addons"
)

// Index maps a normalized install path to every catalog entry that installs
// into it. Collisions are kept as multiple values.
type Index struct {
	byPath  map[string][]Entry
	byID    map[int]Entry
	orphans []Entry
}

// NewIndex normalizes the raw file list into an Index.
// Entries whose sub-paths are all nested routes are not indexed; they are
// exposed through Orphans.
func NewIndex(entries []Entry, logger *log.Logger) *Index {
	idx := &Index{
		byPath: make(map[string][]Entry),
		byID:   make(map[int]Entry, len(entries)),
	}

	for _, entry := range entries {
		key := ""
		for _, sub := range entry.Addons {
			if !sub.IsBare() {
				continue
			}
			v := sub.AddOnVersion.String()
			if key == "" {
				key = addons.NormalizePath(sub.Path)
				entry.NestedVersion = v
				continue
			}
			if v != "" && entry.NestedVersion != "" && v != entry.NestedVersion {
				logger.Warn("Nested version mismatch, keeping first",
					"id", entry.ID,
					"title", entry.Title,
					"path", sub.Path,
					"version", v,
					"kept", entry.NestedVersion,
				)
			} else if entry.NestedVersion == "" {
				entry.NestedVersion = v
			}
		}

		idx.byID[entry.ID] = entry

		if key == "" {
			idx.orphans = append(idx.orphans, entry)
			continue
		}
		idx.byPath[key] = append(idx.byPath[key], entry)
	}

	if len(idx.orphans) > 0 {
		logger.Debug("Catalog entries without a top-level folder", "count", len(idx.orphans))
	}

	return idx
}

// Lookup returns the candidates for a normalized path
func (idx *Index) Lookup(path string) []Entry {
	return idx.byPath[path]
}

// ByID returns the entry with the given catalog id
func (idx *Index) ByID(id int) (Entry, bool) {
	e, ok := idx.byID[id]
	return e, ok
}

// Orphans returns entries that could not be keyed by a local folder
func (idx *Index) Orphans() []Entry {
	return idx.orphans
}

// Len returns the number of indexed paths
func (idx *Index) Len() int {
	return len(idx.byPath)
}

// Collisions returns the paths that more than one entry resolves to, sorted
func (idx *Index) Collisions() []string {
	var paths []string
	for p, entries := range idx.byPath {
		if len(entries) > 1 {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}
