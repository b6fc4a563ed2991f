package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/california-civic-data/calaccess-processed/internal/calaccess/dataset"
	"github.com/california-civic-data/calaccess-processed/internal/fetcher"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load raw CAL-ACCESS data",
	Long: `Downloads and loads the raw CAL-ACCESS datasets: scrape snapshots,
Form 501 and 497 filings, and the filer-to-party history.

By default, loads every dataset whose last sync has gone stale.
Use --datasets to restrict to specific datasets, --force to ignore staleness.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "load"))

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "load: migrate")
		}

		datasets, err := cmd.Flags().GetStringSlice("datasets")
		if err != nil {
			return eris.Wrap(err, "load: parse --datasets")
		}
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return eris.Wrap(err, "load: parse --force")
		}

		tempDir := cfg.Fetch.TempDir
		if err := os.MkdirAll(tempDir, 0o755); err != nil {
			return eris.Wrapf(err, "load: create temp dir %s", tempDir)
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:      cfg.Fetch.UserAgent,
			Timeout:        time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries:     cfg.Fetch.MaxRetries,
			RequestsPerSec: cfg.Fetch.RequestsPerSec,
		})

		engine := dataset.NewEngine(st, f, dataset.NewRegistry(cfg), tempDir)
		stats, err := engine.Run(ctx, dataset.RunOpts{Datasets: datasets, Force: force})
		if stats != nil {
			log.Info("load finished",
				zap.Int("synced", stats.Synced),
				zap.Int("skipped", stats.Skipped),
				zap.Int("failed", stats.Failed),
				zap.Int64("rows", stats.Rows))
		}
		return err
	},
}

func init() {
	loadCmd.Flags().StringSlice("datasets", nil, "restrict to specific datasets (comma-separated)")
	loadCmd.Flags().Bool("force", false, "sync even if the last sync is fresh")
	rootCmd.AddCommand(loadCmd)
}
