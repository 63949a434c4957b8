package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bnema/esoctl/internal/addons"
	"github.com/bnema/esoctl/internal/catalog"
	"github.com/bnema/esoctl/internal/config"
	applog "github.com/bnema/esoctl/internal/logger"
	"github.com/bnema/esoctl/internal/ui/styles"
)

// Version info set via ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
)

var (
	verbose    bool
	configPath string
	refresh    bool

	cfg    *config.Config
	logger *log.Logger
)

// ErrDownloadsFailed is returned by update when at least one item failed
var ErrDownloadsFailed = errors.New("one or more downloads failed")

// Exit codes
const (
	exitOK            = 0
	exitFailure       = 1
	exitCatalogFetch  = 2
	exitManifestScan  = 3
	exitDownloadsFail = 4
)

var rootCmd = &cobra.Command{
	Use:     "esoctl",
	Short:   "Elder Scrolls Online add-on update checker",
	Version: version + " (" + commit + ")",
	Long: `A Go CLI tool that matches the add-ons installed in the ESO AddOns
folder against the ESOUI catalog and downloads the newer archives.

Quick start:
  esoctl status     Show which add-ons are outdated
  esoctl update     Download replacement archives for outdated add-ons`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := applog.Init(cfg.CacheDir, verbose); err != nil {
			return err
		}
		logger = applog.Get()
		logger.Debug("Loaded configuration",
			"file", cfg.Path,
			"addons_dir", cfg.AddonsDir,
			"cache_dir", cfg.CacheDir,
		)
		return nil
	},
}

// Execute runs the root command and exits with a code describing the failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx, os.Args[1:])
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, styles.FormatError(err.Error()))
		os.Exit(exitCodeFor(err))
	}
}

// execute runs the command tree and closes the log file whatever the outcome.
// cobra skips post-run hooks when a command fails.
func execute(ctx context.Context, args []string) error {
	defer applog.Close()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// exitCodeFor maps a command error to the process exit code
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, catalog.ErrFetch), errors.Is(err, catalog.ErrGameNotFound):
		return exitCatalogFetch
	case errors.Is(err, addons.ErrScan), errors.Is(err, addons.ErrAddonsDir), errors.Is(err, config.ErrHomeDir):
		return exitManifestScan
	case errors.Is(err, ErrDownloadsFailed):
		return exitDownloadsFail
	default:
		return exitFailure
	}
}

// getLogger returns the command logger, discarding output before init
func getLogger() *log.Logger {
	if logger == nil {
		return applog.Discard()
	}
	return logger
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default $XDG_CONFIG_HOME/esoctl/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&refresh, "refresh", false, "Refetch the catalog instead of using the cache")
}
