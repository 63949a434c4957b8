package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	uiprogress "github.com/bnema/esoctl/internal/ui/progress"
	"github.com/bnema/esoctl/internal/ui/styles"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the cached ESOUI catalog",
	Long: `The catalog is fetched once through the ESOUI discovery chain and cached.
Every other command reads the cache; refresh it to see new releases.

Examples:
  esoctl catalog           # Show cache status
  esoctl catalog refresh   # Refetch the catalog
  esoctl catalog show      # Print the cached catalog as indented JSON`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		info := newRepository().Info()

		printField(out, "Cache", info.Path)
		if !info.HasCache {
			_, _ = fmt.Fprintln(out, styles.MutedText.Render("No cached catalog, run 'esoctl catalog refresh'"))
			return nil
		}
		printField(out, "Updated", info.LastUpdated.Format("2006-01-02 15:04:05"))
		printField(out, "Age", info.Age.Round(time.Minute).String())
		printField(out, "Size", uiprogress.FormatBytes(info.Size))
		return nil
	},
}

var catalogRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refetch the catalog through the discovery chain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := newRepository()
		entries, err := repo.Entries(cmd.Context(), true)
		if err != nil {
			return fmt.Errorf("failed to refresh catalog: %w", err)
		}

		p := uiprogress.NewPrinter(cmd.OutOrStdout())
		p.Complete(fmt.Sprintf("Catalog refreshed: %d entries", len(entries)))
		p.Detail(repo.Info().Path)
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cached catalog as indented JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := newRepository()
		// Populates the cache when missing
		if _, err := repo.Entries(cmd.Context(), refresh); err != nil {
			return err
		}

		raw, err := repo.RawFileList()
		if err != nil {
			return fmt.Errorf("failed to read catalog cache: %w", err)
		}

		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("failed to format catalog: %w", err)
		}
		buf.WriteByte('\n')
		_, err = buf.WriteTo(cmd.OutOrStdout())
		return err
	},
}

func init() {
	catalogCmd.AddCommand(catalogRefreshCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	rootCmd.AddCommand(catalogCmd)
}
