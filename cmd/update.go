package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bnema/esoctl/internal/download"
	"github.com/bnema/esoctl/internal/reconcile"
	uiprogress "github.com/bnema/esoctl/internal/ui/progress"
	"github.com/bnema/esoctl/internal/ui/updates"
)

var (
	updateDryRun bool
	updatePlain  bool
)

var updateCmd = &cobra.Command{
	Use:     "update",
	Aliases: []string{"u"},
	Short:   "Download new versions of outdated add-ons",
	Long: `Reconcile the installed add-ons with the catalog and download the archive
of every outdated one into the download cache.

Archives whose checksum already matches the catalog are not fetched again.
A failed item never stops the others; the command exits with code 4 when
any item failed.

Examples:
  esoctl update            # Download every outdated add-on
  esoctl update --dry-run  # Show what would be downloaded
  esoctl update --plain    # No interactive progress`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		res, err := runCheck(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printScanWarnings(out, res.scan)

		for _, e := range res.report.Filter(reconcile.EventMultiOutdated) {
			uiprogress.NewPrinter(out).Warning(fmt.Sprintf(
				"%s matches %d catalog entries (%s); set 'disambiguate: title' to pick one",
				e.Install.Name, len(e.Candidates), remoteColumn(e)))
		}

		plan := res.report.Plan
		if len(plan) == 0 {
			uiprogress.NewPrinter(out).Complete("Everything is up to date")
			return nil
		}

		d := download.New(cfg.DownloadDir(), res.repo, getLogger(),
			download.WithStore(res.manager.Store()),
			download.WithDryRun(updateDryRun),
		)

		var result *download.RunResult
		if updateDryRun || updatePlain || !isTerminal(out) {
			result = runPlain(ctx, out, d, plan)
		} else {
			result, err = runInteractive(ctx, d, plan)
			if err != nil {
				return err
			}
		}

		if failed := result.Failed(); len(failed) > 0 {
			return fmt.Errorf("%w: %d of %d", ErrDownloadsFailed, len(failed), len(result.Items))
		}
		return nil
	},
}

// runPlain processes the plan and prints one line per item
func runPlain(ctx context.Context, out io.Writer, d *download.Downloader, plan reconcile.Plan) *download.RunResult {
	p := uiprogress.NewPrinter(out)
	if updateDryRun {
		p.Title(fmt.Sprintf("Would download %d update(s)", len(plan)))
	} else {
		p.Title(fmt.Sprintf("Downloading %d update(s)", len(plan)))
	}

	result := d.Run(ctx, plan)

	for _, it := range result.Items {
		name := stepLabel(it)
		switch it.Status {
		case download.StatusFailed:
			p.Error(fmt.Sprintf("%s: %v", name, it.Err))
		case download.StatusAlreadyDownloaded:
			p.Skipped(name + " (already downloaded)")
			p.Detail(it.Archive)
		case download.StatusPlanned:
			p.Step(uiprogress.StatePending, name)
			p.Detail(it.Archive)
		default:
			p.Complete(name)
			p.Detail(it.Archive)
		}
	}

	if !updateDryRun {
		p.Summary("Downloaded: %d, Already cached: %d, Failed: %d",
			result.Count(download.StatusDownloaded),
			result.Count(download.StatusAlreadyDownloaded),
			result.Count(download.StatusFailed))
	}
	return result
}

// runInteractive processes the plan inside the bubbletea progress view
func runInteractive(ctx context.Context, d *download.Downloader, plan reconcile.Plan) (*download.RunResult, error) {
	m := updates.New(ctx, d, plan)

	p := tea.NewProgram(m)
	d.SetProgressFunc(uiprogress.ByteProgress(p))

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("error running TUI: %w", err)
	}
	d.SaveStore()

	return finalModel.(updates.Model).Result(), nil
}

func stepLabel(it download.ItemResult) string {
	name := it.Entry.Title
	if name == "" {
		name = it.Path
	}
	if it.Details != nil && it.Details.Version.String() != "" {
		name += " " + it.Details.Version.String()
	}
	return name
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func init() {
	updateCmd.Flags().BoolVarP(&updateDryRun, "dry-run", "n", false, "Resolve download details without fetching anything")
	updateCmd.Flags().BoolVar(&updatePlain, "plain", false, "Print plain progress lines instead of the interactive view")
	rootCmd.AddCommand(updateCmd)
}
