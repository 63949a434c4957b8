package catalog

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apiServer serves a complete discovery chain and counts requests per path
type apiServer struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()

	s := &apiServer{hits: make(map[string]int)}
	mux := http.NewServeMux()
	mux.HandleFunc("/globalconfig.json", func(w http.ResponseWriter, r *http.Request) {
		s.hit(r)
		_, _ = io.WriteString(w, `{"games":[{"gameID":"ESO","gameConfig":"`+s.URL+`/eso/gameconfig.json"}]}`)
	})
	mux.HandleFunc("/eso/gameconfig.json", func(w http.ResponseWriter, r *http.Request) {
		s.hit(r)
		_, _ = io.WriteString(w, `{"apiFeeds":{"fileList":"`+s.URL+`/eso/filelist.json","fileDetails":"`+s.URL+`/eso/filedetails/"}}`)
	})
	mux.HandleFunc("/eso/filelist.json", func(w http.ResponseWriter, r *http.Request) {
		s.hit(r)
		_, _ = io.WriteString(w, testFileList)
	})
	mux.HandleFunc("/eso/filedetails/42.json", func(w http.ResponseWriter, r *http.Request) {
		s.hit(r)
		_, _ = io.WriteString(w, `[{"id":42,"fileName":"FooBar.zip","checksum":"00"}]`)
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *apiServer) hit(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits[r.URL.Path]++
}

func (s *apiServer) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func newTestRepository(s *apiServer, cacheDir string) *Repository {
	logger := log.New(io.Discard)
	client := NewClient(logger,
		WithGlobalConfigURL(s.URL+"/globalconfig.json"),
		WithRateLimit(0, 0),
	)
	return NewRepository(cacheDir, client, logger)
}

func TestRepositoryCacheBypassesNetwork(t *testing.T) {
	s := newAPIServer(t)
	cacheDir := t.TempDir()
	ctx := context.Background()

	entries, err := newTestRepository(s, cacheDir).Entries(ctx, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, s.count("/eso/filelist.json"))

	raw, err := os.ReadFile(filepath.Join(cacheDir, "filelist.json"))
	require.NoError(t, err)
	assert.Equal(t, testFileList, string(raw), "cache holds the raw body")

	// A fresh repository over the same cache never touches the network
	repo := newTestRepository(s, cacheDir)
	entries, err = repo.Entries(ctx, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, s.count("/globalconfig.json"))
	assert.Equal(t, 1, s.count("/eso/filelist.json"))

	info := repo.Info()
	assert.True(t, info.HasCache)
	assert.Equal(t, int64(len(testFileList)), info.Size)

	// Refresh walks the whole chain again
	_, err = repo.Entries(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, s.count("/globalconfig.json"))
	assert.Equal(t, 2, s.count("/eso/filelist.json"))
}

func TestRepositoryFileDetailsUsesCachedGameConfig(t *testing.T) {
	s := newAPIServer(t)
	cacheDir := t.TempDir()
	ctx := context.Background()

	_, err := newTestRepository(s, cacheDir).Entries(ctx, false)
	require.NoError(t, err)

	details, err := newTestRepository(s, cacheDir).FileDetails(ctx, 42)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "FooBar.zip", details[0].FileName)
	assert.Equal(t, 1, s.count("/globalconfig.json"), "game config comes from the cache")
}

func TestRepositoryFileDetailsMemoized(t *testing.T) {
	s := newAPIServer(t)
	repo := newTestRepository(s, t.TempDir())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		details, err := repo.FileDetails(ctx, 42)
		require.NoError(t, err)
		require.Len(t, details, 1)
	}
	assert.Equal(t, 1, s.count("/eso/filedetails/42.json"))

	_, err := repo.FileDetails(ctx, 7)
	assert.ErrorIs(t, err, ErrFetch, "failures are not memoized")
}

func TestRepositoryUnreadableCacheRefetches(t *testing.T) {
	s := newAPIServer(t)
	cacheDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "filelist.json"), []byte("not json"), 0644))

	entries, err := newTestRepository(s, cacheDir).Entries(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, s.count("/eso/filelist.json"))
}

func TestRepositoryInfoWithoutCache(t *testing.T) {
	s := newAPIServer(t)
	info := newTestRepository(s, t.TempDir()).Info()
	assert.False(t, info.HasCache)
}
