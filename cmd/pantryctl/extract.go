package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pantry-cookbook/internal/core/extraction"
	"pantry-cookbook/internal/pkg/common"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>...",
	Short: "Scrape recipes from one or more URLs",
	Long: `Fetches each URL (honoring robots.txt and per-domain delays), extracts
the recipe and prints a one-line report per URL.

Examples:
  # Preview a single page
  pantryctl scrape https://example.com/recipes/stew

  # Scrape and store several pages
  pantryctl scrape --import https://a.example/1 https://b.example/2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScrape,
}

var importTextCmd = &cobra.Command{
	Use:   "import-text <file>",
	Short: "Import recipes from a plain-text file",
	Long: `Reads a text file holding one or more recipes separated by "---",
"***", "Recipe:" markers or two blank lines. Each recipe needs a title,
ingredients and instructions to be imported.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportText,
}

func init() {
	scrapeCmd.Flags().Bool("import", false, "store successfully extracted recipes in the catalog")

	rootCmd.AddCommand(scrapeCmd, importTextCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	doImport, _ := cmd.Flags().GetBool("import")
	out := cmd.OutOrStdout()

	results := a.Extraction.ScrapeMany(ctx, args)
	failed := 0
	for i := range results {
		res := &results[i]
		if !res.Success {
			failed++
			fmt.Fprintf(out, "FAIL %s (%dms) %s\n", res.URL, res.DurationMs, strings.Join(res.Errors, "; "))
			continue
		}
		line := fmt.Sprintf("OK   %s (%dms) %q", res.URL, res.DurationMs, res.Record.Title)
		if doImport {
			r, err := a.Importer.Import(ctx, res.Record)
			if err != nil {
				failed++
				fmt.Fprintf(out, "%s import failed: %v\n", line, err)
				continue
			}
			line += fmt.Sprintf(" -> recipe %d", r.ID)
		}
		fmt.Fprintln(out, line)
	}

	common.LogInfo("scrape finished",
		zap.Int("urls", len(args)),
		zap.Int("failed", failed),
		zap.Bool("import", doImport),
	)
	if failed > 0 {
		return eris.Errorf("%d of %d urls failed", failed, len(args))
	}
	return nil
}

func runImportText(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return eris.Wrapf(err, "read %s", args[0])
	}
	records := extraction.ParseBulkText(string(data))
	if len(records) == 0 {
		return eris.Errorf("no recipes found in %s", args[0])
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	imported := 0
	for i, rec := range records {
		r, err := a.Importer.Import(cmd.Context(), rec)
		if err != nil {
			fmt.Fprintf(out, "#%d %q skipped: %v\n", i+1, rec.Title, err)
			continue
		}
		imported++
		fmt.Fprintf(out, "#%d %q -> recipe %d\n", i+1, r.Name, r.ID)
	}
	fmt.Fprintf(out, "imported %d of %d\n", imported, len(records))
	return nil
}
