// catalog-dump is a standalone tool that walks the ESOUI discovery chain and
// writes the ESO file list pretty-printed. It never touches the esoctl cache,
// which makes it handy for inspecting the live catalog or building fixtures.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bnema/esoctl/internal/catalog"
)

func main() {
	outputPath := flag.String("output", "-", "Output path for the catalog JSON (- for stdout)")
	globalConfigURL := flag.String("global-config", catalog.GlobalConfigURL, "Global config URL starting the discovery chain")
	summary := flag.Bool("summary", false, "Print index statistics instead of the catalog")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	if err := run(ctx, logger, *globalConfigURL, *outputPath, *summary); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger, globalConfigURL, outputPath string, summary bool) error {
	client := catalog.NewClient(logger, catalog.WithGlobalConfigURL(globalConfigURL))

	startTime := time.Now()
	gc, err := client.Discover(ctx)
	if err != nil {
		return err
	}
	logger.Info("Resolved game config", "file_list", gc.APIFeeds.FileList, "file_details", gc.APIFeeds.FileDetails)

	entries, raw, err := client.FetchFileList(ctx, gc)
	if err != nil {
		return err
	}
	logger.Info("Fetched catalog", "entries", len(entries), "bytes", len(raw), "elapsed", time.Since(startTime).Round(time.Millisecond))

	if summary {
		return printSummary(logger, entries)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to format catalog: %w", err)
	}
	buf.WriteByte('\n')

	if outputPath == "-" {
		_, err := buf.WriteTo(os.Stdout)
		return err
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	logger.Info("Catalog written", "output", outputPath)
	return nil
}

// printSummary reports how the catalog normalizes
func printSummary(logger *log.Logger, entries []catalog.Entry) error {
	idx := catalog.NewIndex(entries, logger)

	collisions := idx.Collisions()
	sort.Strings(collisions)

	fmt.Println("=== Summary ===")
	fmt.Printf("Entries:     %d\n", len(entries))
	fmt.Printf("Indexed:     %d\n", idx.Len())
	fmt.Printf("Orphans:     %d\n", len(idx.Orphans()))
	fmt.Printf("Collisions:  %d\n", len(collisions))
	for _, path := range collisions {
		ids := make([]int, 0)
		for _, e := range idx.Lookup(path) {
			ids = append(ids, e.ID)
		}
		fmt.Printf("  %-30s %v\n", path, ids)
	}
	return nil
}
