package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve raw records into canonical entities",
}

var resolveElectionsCmd = &cobra.Command{
	Use:   "elections",
	Short: "Resolve scraped elections",
	Long:  "Maps every scraped election onto a canonical Election, collapsing duplicate scrape sources. Records that cannot be dated are logged and skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		r, err := newResolver(st)
		if err != nil {
			return err
		}

		stats, err := r.ResolveElections(ctx)
		if err != nil {
			return err
		}
		zap.L().Info("elections resolved",
			zap.Int("processed", stats.Processed),
			zap.Int("created", stats.Created),
			zap.Int("failed", stats.Failed))
		return nil
	},
}

var resolveCandidaciesCmd = &cobra.Command{
	Use:   "candidacies",
	Short: "Resolve scraped candidates",
	Long:  "Runs the full orchestrator over every scraped candidate: post, election, party, and contest resolution, then person matching and candidacy creation. Safe to re-run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		r, err := newResolver(st)
		if err != nil {
			return err
		}

		stats, err := r.ResolveCandidacies(ctx)
		if err != nil {
			return err
		}
		zap.L().Info("candidacies resolved",
			zap.Int("processed", stats.Processed),
			zap.Int("created", stats.Created),
			zap.Int("failed", stats.Failed))
		return nil
	},
}

func init() {
	resolveCmd.AddCommand(resolveElectionsCmd)
	resolveCmd.AddCommand(resolveCandidaciesCmd)
	rootCmd.AddCommand(resolveCmd)
}
