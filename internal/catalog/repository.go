package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/patrickmn/go-cache"
)

// detailsTTL bounds how long resolved file details are reused within a process
const detailsTTL = 10 * time.Minute

// Repository serves the catalog from the on-disk cache, fetching it through
// the discovery chain when the cache is missing
type Repository struct {
	cacheDir       string
	fileListPath   string
	gameConfigPath string
	client         *Client
	logger         *log.Logger

	mu         sync.Mutex
	gameConfig *GameConfig

	details *cache.Cache
}

// NewRepository creates a new catalog repository
func NewRepository(cacheDir string, client *Client, logger *log.Logger) *Repository {
	return &Repository{
		cacheDir:       cacheDir,
		fileListPath:   filepath.Join(cacheDir, "filelist.json"),
		gameConfigPath: filepath.Join(cacheDir, "gameconfig.json"),
		client:         client,
		logger:         logger,
		details:        cache.New(detailsTTL, 2*detailsTTL),
	}
}

// Entries returns the catalog entries. A present cache file bypasses the
// network entirely unless refresh is set.
func (r *Repository) Entries(ctx context.Context, refresh bool) ([]Entry, error) {
	if !refresh {
		entries, err := r.loadFileList()
		if err == nil {
			r.logger.Debug("Using cached catalog", "path", r.fileListPath, "entries", len(entries))
			return entries, nil
		}
		if !os.IsNotExist(err) {
			r.logger.Warn("Cached catalog unreadable, fetching", "path", r.fileListPath, "error", err)
		}
	}

	gc, err := r.discover(ctx, true)
	if err != nil {
		return nil, err
	}

	entries, body, err := r.client.FetchFileList(ctx, gc)
	if err != nil {
		return nil, err
	}

	if err := r.writeCache(r.fileListPath, body); err != nil {
		r.logger.Warn("Failed to save catalog cache", "error", err)
	}

	return entries, nil
}

// FileDetails resolves per-item download details for a catalog id.
// Results are memoized in memory for detailsTTL.
func (r *Repository) FileDetails(ctx context.Context, id int) ([]FileDetails, error) {
	key := strconv.Itoa(id)
	if cached, ok := r.details.Get(key); ok {
		return cached.([]FileDetails), nil
	}

	gc, err := r.discover(ctx, false)
	if err != nil {
		return nil, err
	}
	details, err := r.client.FetchFileDetails(ctx, gc, id)
	if err != nil {
		return nil, err
	}
	r.details.SetDefault(key, details)
	return details, nil
}

// CacheInfo describes the state of the catalog cache
type CacheInfo struct {
	HasCache    bool
	Path        string
	LastUpdated time.Time
	Age         time.Duration
	Size        int64
}

// Info returns information about the catalog cache
func (r *Repository) Info() CacheInfo {
	info := CacheInfo{Path: r.fileListPath}
	st, err := os.Stat(r.fileListPath)
	if err != nil {
		return info
	}
	info.HasCache = true
	info.LastUpdated = st.ModTime()
	info.Age = time.Since(st.ModTime())
	info.Size = st.Size()
	return info
}

// RawFileList returns the cached file list document as stored on disk
func (r *Repository) RawFileList() ([]byte, error) {
	return os.ReadFile(r.fileListPath)
}

// discover returns the game config, from memory, the cache, or the network.
// force skips the cache and always walks the chain.
func (r *Repository) discover(ctx context.Context, force bool) (*GameConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gameConfig != nil && !force {
		return r.gameConfig, nil
	}

	if !force {
		if data, err := os.ReadFile(r.gameConfigPath); err == nil {
			var gc GameConfig
			if err := json.Unmarshal(data, &gc); err == nil && gc.APIFeeds.FileList != "" {
				r.gameConfig = &gc
				return r.gameConfig, nil
			}
		}
	}

	gc, err := r.client.Discover(ctx)
	if err != nil {
		return nil, err
	}
	r.gameConfig = gc

	if data, err := json.MarshalIndent(gc, "", "  "); err == nil {
		if err := r.writeCache(r.gameConfigPath, data); err != nil {
			r.logger.Warn("Failed to save game config cache", "error", err)
		}
	}

	return gc, nil
}

// loadFileList loads the cached file list from disk
func (r *Repository) loadFileList() ([]Entry, error) {
	data, err := os.ReadFile(r.fileListPath)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse cached catalog: %w", err)
	}
	return entries, nil
}

// writeCache writes data to path through a temp file
func (r *Repository) writeCache(path string, data []byte) error {
	if err := os.MkdirAll(r.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move cache into place: %w", err)
	}
	return nil
}
