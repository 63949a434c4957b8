package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the XDG variables at a temp directory
func isolate(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("ESOCTL_ADDONS_DIR", "")
	t.Setenv("ESOCTL_CACHE_DIR", "")
	t.Setenv("ESOCTL_DATA_DIR", "")
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Path, "no file at the default location")
	assert.Equal(t, filepath.Join(home, ".cache", "esoctl"), cfg.CacheDir)
	assert.Equal(t, filepath.Join(home, ".local", "share", "esoctl"), cfg.DataDir)
	assert.Equal(t, filepath.Join(cfg.CacheDir, "downloads"), cfg.DownloadDir())
	assert.NotEmpty(t, cfg.AddonsDir)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, float64(DefaultRequestsPerSecond), cfg.RequestsPerSecond)
}

func TestLoadFileAndEnv(t *testing.T) {
	home := isolate(t)
	xdg := filepath.Join(home, "xdg")
	t.Setenv("XDG_CONFIG_HOME", xdg)

	path := filepath.Join(xdg, "esoctl", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(`addons_dir: ~/eso/AddOns
cache_dir: /tmp/esoctl-cache
http_timeout: 5s
requests_per_second: 0
disambiguate: title
addons:
  - AUI - Advanced UI
  - Combat Metrics
`), 0644))

	t.Setenv("ESOCTL_CACHE_DIR", "/var/cache/esoctl")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, filepath.Join(home, "eso", "AddOns"), cfg.AddonsDir)
	assert.Equal(t, "/var/cache/esoctl", cfg.CacheDir, "environment overrides the file")
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Zero(t, cfg.RequestsPerSecond)
	assert.Equal(t, "title", cfg.Disambiguate)
	assert.Equal(t, []string{"AUI - Advanced UI", "Combat Metrics"}, cfg.Addons)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("addons_dir: [unterminated"), 0644))
	_, err := Load(bad)
	assert.ErrorIs(t, err, ErrInvalid)

	strategy := filepath.Join(dir, "strategy.yaml")
	require.NoError(t, os.WriteFile(strategy, []byte("disambiguate: author\n"), 0644))
	_, err = Load(strategy)
	assert.ErrorIs(t, err, ErrInvalid)

	negative := filepath.Join(dir, "negative.yaml")
	require.NoError(t, os.WriteFile(negative, []byte("requests_per_second: -1\n"), 0644))
	_, err = Load(negative)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDefaultAddonsDir(t *testing.T) {
	linux := DefaultAddonsDir("/home/u", "linux")
	assert.Contains(t, linux, filepath.Join("compatdata", "306130"))
	assert.Equal(t, "AddOns", filepath.Base(linux))

	assert.Equal(t,
		filepath.Join("/Users/u", "Documents", "Elder Scrolls Online", "live", "AddOns"),
		DefaultAddonsDir("/Users/u", "darwin"))
}
