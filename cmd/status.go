package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bnema/esoctl/internal/addons"
	"github.com/bnema/esoctl/internal/reconcile"
	"github.com/bnema/esoctl/internal/ui/styles"
)

var statusOutdatedOnly bool

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"s", "check"},
	Short:   "Show which installed add-ons are outdated",
	Long: `Scan the AddOns folder, match every add-on against the ESOUI catalog and
report whether it is current, outdated, missing upstream or ambiguous.

Examples:
  esoctl status             # All installed add-ons
  esoctl status --outdated  # Only add-ons that need attention
  esoctl status --refresh   # Refetch the catalog first`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runCheck(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printScanWarnings(out, res.scan)

		events := res.report.Events
		if statusOutdatedOnly {
			var filtered []reconcile.Event
			for _, e := range events {
				if e.Kind != reconcile.EventCurrent && e.Kind != reconcile.EventUnmanaged {
					filtered = append(filtered, e)
				}
			}
			events = filtered
		}

		if len(events) == 0 {
			if len(res.scan.Addons) == 0 {
				_, _ = fmt.Fprintf(out, "No add-ons found in %s\n", res.manager.GetAddonsDir())
			} else {
				_, _ = fmt.Fprintln(out, styles.FormatSuccess("Everything is up to date"))
			}
			return nil
		}

		printEvents(out, events)
		printReportSummary(out, res.report)
		return nil
	},
}

func printEvents(out io.Writer, events []reconcile.Event) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		styles.Title.Render("FOLDER"),
		styles.Title.Render("TITLE"),
		styles.Title.Render("LOCAL"),
		styles.Title.Render("REMOTE"),
		styles.Title.Render("STATUS"),
	)

	for _, e := range events {
		title := e.Install.Title
		if e.Install.IsLibrary {
			title += " " + styles.FormatLibrary()
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.Install.Name,
			orDash(title),
			orDash(reconcile.LocalVersion(e.Install)),
			orDash(remoteColumn(e)),
			styles.FormatStatus(e.Kind.String()),
		)
	}

	_ = w.Flush()
}

// remoteColumn shows the catalog version, or the candidate ids of a collision
func remoteColumn(e reconcile.Event) string {
	switch len(e.Candidates) {
	case 0:
		return ""
	case 1:
		return reconcile.RemoteVersion(e.Candidates[0])
	}
	ids := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		ids[i] = "#" + strconv.Itoa(c.ID)
	}
	return strings.Join(ids, ",")
}

func printReportSummary(out io.Writer, r *reconcile.Report) {
	_, _ = fmt.Fprintf(out, "\n%s\n", styles.MutedText.Render(fmt.Sprintf(
		"%d current, %d outdated, %d not in catalog, %d ambiguous",
		r.Count(reconcile.EventCurrent),
		len(r.Plan),
		r.Count(reconcile.EventUpstreamMissing),
		r.Count(reconcile.EventMultiOutdated),
	)))
	if len(r.Plan) > 0 {
		_, _ = fmt.Fprintln(out, styles.MutedText.Render("Run 'esoctl update' to download the new versions"))
	}
}

// printScanWarnings reports manifests the scan could not use
func printScanWarnings(out io.Writer, scan *addons.ScanResult) {
	for _, s := range scan.Skipped {
		_, _ = fmt.Fprintln(out, styles.FormatWarning(fmt.Sprintf("Skipped %s: %v", s.Path, s.Err)))
	}
	if len(scan.Skipped) > 0 {
		_, _ = fmt.Fprintln(out)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	statusCmd.Flags().BoolVarP(&statusOutdatedOnly, "outdated", "o", false, "Only show add-ons that are not current")
	rootCmd.AddCommand(statusCmd)
}
