// Package config resolves where esoctl reads add-ons from and where it keeps
// its cache, data and logs.
//
// Values come from, in increasing priority: built-in defaults (XDG
// directories and the platform AddOns folder), the optional YAML file at
// $XDG_CONFIG_HOME/esoctl/config.yaml (or --config), and the ESOCTL_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrHomeDir = errors.New("cannot resolve home directory")
	ErrInvalid = errors.New("invalid configuration")
)

// AppName is used for XDG sub-directories and the log file
const AppName = "esoctl"

// Config is the user configuration
type Config struct {
	// AddonsDir is the ESO live/AddOns folder.
	AddonsDir string `yaml:"addons_dir"`

	// CacheDir holds the catalog cache and the downloads folder.
	CacheDir string `yaml:"cache_dir"`

	// DataDir holds the download metadata store.
	DataDir string `yaml:"data_dir"`

	// GlobalConfigURL overrides the first hop of catalog discovery.
	GlobalConfigURL string `yaml:"global_config_url,omitempty"`

	// HTTPTimeout bounds each API request (not archive downloads).
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// RequestsPerSecond throttles API requests; 0 disables throttling.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Disambiguate names the strategy for folder collisions: none or title.
	Disambiguate string `yaml:"disambiguate"`

	// Addons lists the titles to manage, like "AUI - Advanced UI".
	// Empty means every installed add-on is managed.
	Addons []string `yaml:"addons,omitempty"`

	// Path is the file the config was loaded from, if any.
	Path string `yaml:"-"`
}

// Default values
const (
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultRequestsPerSecond = 4
)

// Load reads the config file at path, or the default location when path is
// empty. A missing file at the default location is not an error.
func Load(path string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return nil, fmt.Errorf("%w: %v", ErrHomeDir, err)
	}

	cfg := &Config{
		HTTPTimeout:       DefaultHTTPTimeout,
		RequestsPerSecond: DefaultRequestsPerSecond,
	}

	explicit := path != ""
	if !explicit {
		path = filepath.Join(xdgDir("XDG_CONFIG_HOME", home, ".config"), AppName, "config.yaml")
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
		}
		cfg.Path = path
	case os.IsNotExist(err) && !explicit:
		// Defaults only
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults(home, runtime.GOOS)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets ESOCTL_* variables override file values
func (c *Config) applyEnv() {
	if v := os.Getenv("ESOCTL_ADDONS_DIR"); v != "" {
		c.AddonsDir = v
	}
	if v := os.Getenv("ESOCTL_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("ESOCTL_DATA_DIR"); v != "" {
		c.DataDir = v
	}
}

func (c *Config) applyDefaults(home, goos string) {
	if c.AddonsDir == "" {
		c.AddonsDir = DefaultAddonsDir(home, goos)
	}
	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(xdgDir("XDG_CACHE_HOME", home, ".cache"), AppName)
	}
	if c.DataDir == "" {
		c.DataDir = filepath.Join(xdgDir("XDG_DATA_HOME", home, filepath.Join(".local", "share")), AppName)
	}
	c.AddonsDir = expandHome(c.AddonsDir, home)
	c.CacheDir = expandHome(c.CacheDir, home)
	c.DataDir = expandHome(c.DataDir, home)
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests_per_second must not be negative", ErrInvalid)
	}
	switch strings.ToLower(strings.TrimSpace(c.Disambiguate)) {
	case "", "none", "title":
	default:
		return fmt.Errorf("%w: unknown disambiguate strategy %q (want none or title)", ErrInvalid, c.Disambiguate)
	}
	return nil
}

// DownloadDir is where replacement archives are stored
func (c *Config) DownloadDir() string {
	return filepath.Join(c.CacheDir, "downloads")
}

// DefaultAddonsDir returns the live AddOns folder for a platform
func DefaultAddonsDir(home, goos string) string {
	switch goos {
	case "linux":
		// Steam Proton prefix of ESO (app 306130)
		return filepath.Join(home, ".steam", "steam", "steamapps", "compatdata", "306130",
			"pfx", "drive_c", "users", "steamuser", "Documents", "Elder Scrolls Online", "live", "AddOns")
	default:
		return filepath.Join(home, "Documents", "Elder Scrolls Online", "live", "AddOns")
	}
}

func xdgDir(env, home, fallback string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return filepath.Join(home, fallback)
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
