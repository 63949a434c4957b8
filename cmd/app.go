package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bnema/esoctl/internal/addons"
	"github.com/bnema/esoctl/internal/catalog"
	"github.com/bnema/esoctl/internal/reconcile"
)

// apiBurst is the number of catalog requests allowed back to back
const apiBurst = 2

// newAddonManager returns a manager over the configured AddOns folder with
// its download store loaded
func newAddonManager() *addons.Manager {
	manager := addons.NewManager(cfg.AddonsDir, cfg.DataDir, getLogger())
	if err := manager.Load(); err != nil {
		getLogger().Warn("Failed to load download store", "error", err)
	}
	return manager
}

// newRepository wires the catalog client and cache from the configuration
func newRepository() *catalog.Repository {
	opts := []catalog.ClientOption{
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		catalog.WithRateLimit(cfg.RequestsPerSecond, apiBurst),
	}
	if cfg.GlobalConfigURL != "" {
		opts = append(opts, catalog.WithGlobalConfigURL(cfg.GlobalConfigURL))
	}
	client := catalog.NewClient(getLogger(), opts...)
	return catalog.NewRepository(cfg.CacheDir, client, getLogger())
}

// loadIndex loads the catalog, from cache unless --refresh, and normalizes it
func loadIndex(ctx context.Context, repo *catalog.Repository) (*catalog.Index, error) {
	entries, err := repo.Entries(ctx, refresh)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return catalog.NewIndex(entries, getLogger()), nil
}

// newReconciler builds a reconciler honoring the disambiguation and managed
// titles settings
func newReconciler(index *catalog.Index) (*reconcile.Reconciler, error) {
	d, ok := reconcile.DisambiguatorByName(cfg.Disambiguate)
	if !ok {
		return nil, fmt.Errorf("unknown disambiguate strategy %q", cfg.Disambiguate)
	}
	return reconcile.New(index, reconcile.Options{
		Disambiguator: d,
		Managed:       cfg.Addons,
	}, getLogger()), nil
}

// checkResult is everything status and update need
type checkResult struct {
	manager *addons.Manager
	repo    *catalog.Repository
	scan    *addons.ScanResult
	index   *catalog.Index
	report  *reconcile.Report
}

// runCheck scans the AddOns folder, loads the catalog and reconciles them
func runCheck(ctx context.Context) (*checkResult, error) {
	manager := newAddonManager()
	scan, err := manager.Scan()
	if err != nil {
		return nil, err
	}

	repo := newRepository()
	index, err := loadIndex(ctx, repo)
	if err != nil {
		return nil, err
	}

	r, err := newReconciler(index)
	if err != nil {
		return nil, err
	}

	return &checkResult{
		manager: manager,
		repo:    repo,
		scan:    scan,
		index:   index,
		report:  r.Reconcile(scan.Addons),
	}, nil
}
