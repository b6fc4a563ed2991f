package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/california-civic-data/calaccess-processed/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "calaccess-processed",
	Short: "CAL-ACCESS processing pipeline",
	Long:  "Loads raw CAL-ACCESS scrapes and filings, then resolves them into canonical persons, parties, posts, elections, contests, and candidacies.",
	// Runtime failures should not dump command usage.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
