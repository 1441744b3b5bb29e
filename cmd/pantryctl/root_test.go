package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantry-cookbook/internal/infrastructure/config"
)

const garlicRice = `Garlic Rice
A quick side for weeknights.
Cook time: 20 minutes
Serves 2

Ingredients:
- 1 cup rice
- 3 cloves garlic
- 2 tbsp oil

Instructions:
1. Fry the garlic in the oil.
2. Add the rice and water, then simmer until tender.`

const lemonBars = `Lemon Bars
Tangy and sweet squares for dessert.
Prep time: 15 minutes
Cook time: 25 minutes
Serves 12

Ingredients:
- 1 cup butter
- 2 cups flour
- 4 eggs

Instructions:
1. Heat the oven to 350F.
2. Bake the crust for 20 minutes.`

func useTestConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cfg = &config.Config{
		App:       config.AppConfig{Version: "test"},
		Database:  config.DatabaseConfig{Path: filepath.Join(dir, "pantry.db")},
		Household: config.HouseholdConfig{DefaultID: 1},
		AI:        config.AIConfig{Enabled: false, BaseURL: "http://127.0.0.1:1", Model: "test"},
		Scraping:  config.ScrapingConfig{UserAgent: "pantryctl-test", Timeout: 5 * time.Second, MaxHTMLBytes: 1 << 20},
		Image:     config.ImageConfig{MaxSizeBytes: 1 << 20, Dir: filepath.Join(dir, "images"), MaxDimension: 64},
	}
}

// capture 以測試 context 與輸出緩衝執行子命令
func capture(t *testing.T, cmd *cobra.Command, run func(*cobra.Command, []string) error, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetContext(context.TODO())
	})
	require.NoError(t, run(cmd, args))
	return buf.String()
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"migrate", "seed", "scrape", "import-text", "match", "suggest", "shopping"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "pantryctl", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	for _, name := range []string{"household", "db", "sites"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing persistent flag %q", name)
	}
}

func TestCommandFlags(t *testing.T) {
	assert.Equal(t, "false", seedCmd.Flags().Lookup("stock").DefValue)
	assert.Equal(t, "false", scrapeCmd.Flags().Lookup("import").DefValue)
	assert.Equal(t, "best_match", matchCmd.Flags().Lookup("sort").DefValue)
	assert.Equal(t, "3", suggestCmd.Flags().Lookup("max-missing").DefValue)
	assert.NotNil(t, shoppingCmd.Flags().Lookup("optional"))
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"3", "14"})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 14}, ids)

	_, err = parseIDs([]string{"0"})
	assert.Error(t, err)
	_, err = parseIDs([]string{"abc"})
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	useTestConfig(t)
	out := capture(t, migrateCmd, migrateCmd.RunE)
	assert.Contains(t, out, "schema ready")
	assert.FileExists(t, cfg.Database.Path)
}

func TestSeedIsIdempotent(t *testing.T) {
	useTestConfig(t)
	require.NoError(t, seedCmd.Flags().Set("stock", "true"))
	t.Cleanup(func() { _ = seedCmd.Flags().Set("stock", "false") })

	first := capture(t, seedCmd, runSeed)
	assert.Contains(t, first, "21 new")
	assert.Contains(t, first, "pantry 1:")

	second := capture(t, seedCmd, runSeed)
	assert.Contains(t, second, "0 new")
}

func TestImportTextMatchAndShopping(t *testing.T) {
	useTestConfig(t)
	file := filepath.Join(t.TempDir(), "recipes.txt")
	require.NoError(t, os.WriteFile(file, []byte(lemonBars+"\n---\n"+garlicRice), 0o644))

	out := capture(t, importTextCmd, runImportText, file)
	assert.Contains(t, out, "imported 2 of 2")

	require.NoError(t, matchCmd.Flags().Set("partial", "true"))
	t.Cleanup(func() { _ = matchCmd.Flags().Set("partial", "false") })
	out = capture(t, matchCmd, runMatch)
	assert.Contains(t, out, "Garlic Rice")
	assert.Contains(t, out, "Lemon Bars")

	out = capture(t, shoppingCmd, runShopping, "1")
	assert.NotEmpty(t, out)
}

func TestImportTextMissingFile(t *testing.T) {
	useTestConfig(t)
	importTextCmd.SetContext(context.Background())
	err := runImportText(importTextCmd, []string{filepath.Join(t.TempDir(), "missing.txt")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.txt")
}

func TestMatchRejectsUnknownSort(t *testing.T) {
	useTestConfig(t)
	require.NoError(t, matchCmd.Flags().Set("sort", "random"))
	t.Cleanup(func() { _ = matchCmd.Flags().Set("sort", "best_match") })

	err := runMatch(matchCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sort mode")
}
