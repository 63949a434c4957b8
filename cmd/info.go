package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bnema/esoctl/internal/addons"
	"github.com/bnema/esoctl/internal/catalog"
	"github.com/bnema/esoctl/internal/reconcile"
	"github.com/bnema/esoctl/internal/ui/styles"
)

var infoCmd = &cobra.Command{
	Use:   "info <folder|id>",
	Short: "Show catalog details for an add-on",
	Long: `Show the catalog entry of an add-on, its download details and its
description, together with the installed version when present.

Examples:
  esoctl info LibAddonMenu-2.0
  esoctl info 7`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		repo := newRepository()
		index, err := loadIndex(ctx, repo)
		if err != nil {
			return err
		}

		var installed *addons.InstalledAddon
		manager := newAddonManager()
		if a, err := manager.GetInfo(args[0]); err == nil {
			installed = a
		} else if !errors.Is(err, addons.ErrAddonNotFound) {
			getLogger().Debug("Could not read installed add-on", "name", args[0], "error", err)
		}

		var entries []catalog.Entry
		if id, err := strconv.Atoi(args[0]); err == nil {
			if e, ok := index.ByID(id); ok {
				entries = append(entries, e)
			}
		}
		if len(entries) == 0 {
			entries = index.Lookup(addons.NormalizePath(args[0]))
		}

		if len(entries) == 0 {
			if installed != nil {
				printInstalled(out, installed)
				_, _ = fmt.Fprintln(out)
				_, _ = fmt.Fprintln(out, styles.FormatStatus(reconcile.EventUpstreamMissing.String()))
				return nil
			}
			return fmt.Errorf("%w: %s", addons.ErrAddonNotFound, args[0])
		}

		for i, entry := range entries {
			if i > 0 {
				_, _ = fmt.Fprintln(out)
			}
			printEntry(out, entry)

			if installed != nil && reconcileKey(entry) == installed.Path {
				tier := reconcile.CompareTier(installed, entry)
				printField(out, "Installed", orDash(reconcile.LocalVersion(installed)))
				if tier != reconcile.TierNone {
					printField(out, "Status", styles.FormatStatus("current")+styles.MutedText.Render(" ("+tier.String()+")"))
				} else {
					printField(out, "Status", styles.FormatStatus("outdated"))
				}
			}

			details, err := repo.FileDetails(ctx, entry.ID)
			if err != nil {
				getLogger().Warn("Failed to fetch file details", "id", entry.ID, "error", err)
				continue
			}
			if len(details) == 0 {
				continue
			}
			printDetails(out, details[0])
		}

		return nil
	},
}

// reconcileKey returns the normalized path an entry is indexed under
func reconcileKey(e catalog.Entry) string {
	for _, sp := range e.Addons {
		if sp.IsBare() {
			return addons.NormalizePath(sp.Path)
		}
	}
	return ""
}

func printInstalled(out io.Writer, a *addons.InstalledAddon) {
	_, _ = fmt.Fprintln(out, styles.Title.Render(a.Name))
	_, _ = fmt.Fprintln(out)
	printField(out, "Title", orDash(a.Title))
	printField(out, "Version", orDash(a.VersionName))
	printField(out, "AddOnVer", orDash(a.Version))
	printField(out, "Manifest", a.ManifestPath)
}

func printEntry(out io.Writer, e catalog.Entry) {
	_, _ = fmt.Fprintln(out, styles.Title.Render(e.Title))
	_, _ = fmt.Fprintln(out)
	printField(out, "ID", strconv.Itoa(e.ID))
	printField(out, "Author", orDash(e.Author))
	printField(out, "Version", orDash(e.Version.String()))
	if e.NestedVersion != "" {
		printField(out, "AddOnVer", e.NestedVersion)
	}
	printField(out, "Downloads", strconv.Itoa(e.Downloads))
	for _, sp := range e.Addons {
		printField(out, "Folder", sp.Path)
	}
}

func printDetails(out io.Writer, d catalog.FileDetails) {
	printField(out, "File", orDash(d.FileName))
	printField(out, "MD5", orDash(d.Checksum))
	if text := catalog.DescriptionText(d.Description); text != "" {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, text)
	}
}

func printField(out io.Writer, label, value string) {
	_, _ = fmt.Fprintf(out, "%-10s %s\n", label+":", value)
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
