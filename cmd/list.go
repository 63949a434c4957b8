package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bnema/esoctl/internal/ui/styles"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List installed add-ons",
	Long: `List the add-ons found in the AddOns folder with the facts read from
their manifests. Does not contact the catalog.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager := newAddonManager()
		scan, err := manager.Scan()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printScanWarnings(out, scan)

		installed := scan.Sorted()
		if len(installed) == 0 {
			_, _ = fmt.Fprintf(out, "No add-ons found in %s\n", manager.GetAddonsDir())
			return nil
		}

		// Use tabwriter for aligned output
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			styles.Title.Render("FOLDER"),
			styles.Title.Render("TITLE"),
			styles.Title.Render("VERSION"),
			styles.Title.Render("ADDON VERSION"),
		)

		for _, a := range installed {
			title := orDash(a.Title)
			if a.IsLibrary {
				title += " " + styles.FormatLibrary()
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Name, title, orDash(a.VersionName), orDash(a.Version))
		}

		_ = w.Flush()

		_, _ = fmt.Fprintf(out, "\n%d add-on(s) installed", len(installed))
		if n := len(scan.DataFiles); n > 0 {
			_, _ = fmt.Fprintf(out, ", %d data folder(s) ignored", n)
		}
		_, _ = fmt.Fprintf(out, "\nAddOns directory: %s\n", manager.GetAddonsDir())

		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
