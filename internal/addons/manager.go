package addons

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

var (
	ErrAddonNotFound = errors.New("addon not found")
	ErrAddonsDir     = errors.New("failed to access addons directory")
	ErrScan          = errors.New("failed to scan addons directory")
)

// Manager handles the local side of reconciliation: scanning installed
// addons and tracking downloaded archives
type Manager struct {
	addonsDir string
	dataDir   string
	store     *StoreManager
	log       *log.Logger
}

// NewManager creates a new addon manager
func NewManager(addonsDir, dataDir string, logger *log.Logger) *Manager {
	return &Manager{
		addonsDir: addonsDir,
		dataDir:   dataDir,
		store:     NewStoreManager(dataDir),
		log:       logger,
	}
}

// Load loads the download store from disk
func (m *Manager) Load() error {
	return m.store.Load()
}

// Save saves the download store to disk
func (m *Manager) Save() error {
	return m.store.Save()
}

// Store returns the download metadata store
func (m *Manager) Store() *StoreManager {
	return m.store
}

// Scan discovers manifests with the */*.txt pattern and parses each one.
// A malformed manifest is skipped and reported; it never aborts the scan.
func (m *Manager) Scan() (*ScanResult, error) {
	if _, err := os.Stat(m.addonsDir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAddonsDir, err)
	}

	pattern := filepath.Join(globEscape(m.addonsDir), "*", "*.txt")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScan, err)
	}
	sort.Strings(matches)

	result := &ScanResult{
		Addons: make(map[string]*InstalledAddon),
	}

	for _, manifestPath := range matches {
		dirName := filepath.Base(filepath.Dir(manifestPath))
		base := strings.TrimSuffix(filepath.Base(manifestPath), filepath.Ext(manifestPath))

		// The game only loads the manifest named after its folder
		if !strings.EqualFold(base, dirName) {
			result.Ignored = append(result.Ignored, manifestPath)
			continue
		}

		addon, err := ParseManifest(manifestPath, m.log)
		if err != nil {
			m.log.Warn("Skipping manifest", "path", manifestPath, "error", err)
			result.Skipped = append(result.Skipped, SkippedManifest{Path: manifestPath, Err: err})
			continue
		}
		if addon == nil {
			m.log.Debug("Skipping data file manifest", "path", manifestPath)
			result.DataFiles = append(result.DataFiles, manifestPath)
			continue
		}

		if existing, ok := result.Addons[addon.Path]; ok {
			m.log.Warn("Two folders share a normalized path, keeping the first",
				"path", addon.Path, "kept", existing.Name, "ignored", addon.Name)
			continue
		}
		result.Addons[addon.Path] = addon
	}

	m.log.Debug("Scanned addons directory",
		"dir", m.addonsDir,
		"addons", len(result.Addons),
		"skipped", len(result.Skipped),
		"data_files", len(result.DataFiles),
	)

	return result, nil
}

// GetInfo returns the parsed manifest of a single installed addon, looked up
// by folder name or normalized path
func (m *Manager) GetInfo(name string) (*InstalledAddon, error) {
	result, err := m.Scan()
	if err != nil {
		return nil, err
	}
	if addon, ok := result.Addons[NormalizePath(name)]; ok {
		return addon, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrAddonNotFound, name)
}

// GetAddonsDir returns the addons directory path
func (m *Manager) GetAddonsDir() string {
	return m.addonsDir
}

// sortAddons orders libraries last, then by name
func sortAddons(list []*InstalledAddon) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].IsLibrary != list[j].IsLibrary {
			return !list[i].IsLibrary
		}
		return list[i].Path < list[j].Path
	})
}

// globEscape escapes glob metacharacters in a literal directory path.
// The default macOS and Windows AddOns folders contain spaces and sometimes brackets.
func globEscape(dir string) string {
	var b strings.Builder
	for _, r := range dir {
		switch r {
		case '*', '?', '[':
			b.WriteRune('[')
			b.WriteRune(r)
			b.WriteRune(']')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
