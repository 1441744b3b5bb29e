package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pantry-cookbook/internal/pkg/common"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the SQLite schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "schema ready at %s\n", cfg.Database.Path)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the catalog with common staple ingredients",
	Long: `Adds the built-in list of common staples to the ingredient catalog.
Existing ingredients are left untouched. With --stock the seeded staples
are also marked available in the household pantry.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().Bool("stock", false, "also mark seeded staples available in the pantry")

	rootCmd.AddCommand(migrateCmd, seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	seeded, created, err := a.Catalog.SeedCommon(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "catalog: %d staples, %d new\n", len(seeded), created)

	if stock, _ := cmd.Flags().GetBool("stock"); stock {
		household := householdFlag(cmd)
		n, err := a.Pantry.StockCommon(ctx, household, seeded)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "pantry %d: %d items stocked\n", household, n)
		common.LogInfo("pantry stocked", zap.Int64("household_id", household), zap.Int("count", n))
	}
	return nil
}
