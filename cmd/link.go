package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link filings onto resolved entities",
}

var linkForm501Cmd = &cobra.Command{
	Use:   "form501",
	Short: "Link Form 501 filings onto candidacies",
	Long:  "Matches candidate-intention statements to existing candidacies, then refreshes each candidacy's filed date and withdrawal status from the linked filings.",
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

		stats, err := r.LinkForm501Filings(ctx)
		if err != nil {
			return err
		}
		zap.L().Info("form501 filings linked",
			zap.Int("candidacies", stats.Processed),
			zap.Int("linked", stats.Updated),
			zap.Int("failed", stats.Failed))
		return nil
	},
}

func init() {
	linkCmd.AddCommand(linkForm501Cmd)
	rootCmd.AddCommand(linkCmd)
}
