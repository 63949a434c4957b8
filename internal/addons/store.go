package addons

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// StoreManager handles persistence of download metadata
type StoreManager struct {
	path  string
	store *Store
	mu    sync.RWMutex
}

// NewStoreManager creates a new store manager
func NewStoreManager(dataDir string) *StoreManager {
	return &StoreManager{
		path: filepath.Join(dataDir, "downloads.json"),
		store: &Store{
			Downloads: make(map[string]DownloadRecord),
		},
	}
}

// Load reads the store from disk
func (sm *StoreManager) Load() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	data, err := os.ReadFile(sm.path)
	if err != nil {
		if os.IsNotExist(err) {
			sm.store = &Store{
				Downloads: make(map[string]DownloadRecord),
			}
			return nil
		}
		return err
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		return err
	}

	if store.Downloads == nil {
		store.Downloads = make(map[string]DownloadRecord)
	}

	sm.store = &store
	return nil
}

// Save writes the store to disk
func (sm *StoreManager) Save() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(sm.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(sm.store, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(sm.path, data, 0644)
}

// Get retrieves the last download record for a normalized path
func (sm *StoreManager) Get(path string) (DownloadRecord, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	rec, ok := sm.store.Downloads[path]
	return rec, ok
}

// Set stores the download record for a normalized path
func (sm *StoreManager) Set(path string, rec DownloadRecord) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.store.Downloads[path] = rec
}

// Delete removes the record for a normalized path
func (sm *StoreManager) Delete(path string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.store.Downloads, path)
}

// List returns all recorded paths, sorted
func (sm *StoreManager) List() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	paths := make([]string, 0, len(sm.store.Downloads))
	for p := range sm.store.Downloads {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
