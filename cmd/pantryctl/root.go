package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pantry-cookbook/internal/app"
	"pantry-cookbook/internal/infrastructure/config"
	"pantry-cookbook/internal/pkg/common"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "pantryctl",
	Short: "Pantry and recipe catalog maintenance",
	Long:  "Seeds the ingredient catalog, imports recipes from URLs or text, and matches recipes against a household pantry without running the HTTP server.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := common.InitLogger(cfg.LogLevel); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		common.Sync()
	},
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.Int64("household", 0, "household id (0=use config default)")
	pf.String("db", "", "sqlite database path (overrides database.path)")
	pf.String("sites", "", "site selector YAML file (overrides scraping.sites_file)")

	_ = viper.BindPFlag("database.path", pf.Lookup("db"))
	_ = viper.BindPFlag("scraping.sites_file", pf.Lookup("sites"))
}

// openApp 依目前設定開啟資料庫與服務
func openApp(cmd *cobra.Command) (*app.App, error) {
	return app.New(cmd.Context(), cfg)
}

// householdFlag 未指定時使用設定中的預設家庭
func householdFlag(cmd *cobra.Command) int64 {
	h, _ := cmd.Flags().GetInt64("household")
	if h <= 0 {
		return cfg.Household.DefaultID
	}
	return h
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
