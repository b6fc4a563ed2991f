package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/california-civic-data/calaccess-processed/internal/resolve"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Report probable duplicate persons",
	Long:  "Scores person pairs by name similarity and reports probable duplicates. Report-only: confirmed duplicates are repaired by linking filer IDs or adding corrections, never by automatic merge.",
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

		suggestions, err := r.SuggestMerges(ctx)
		if err != nil {
			return err
		}
		if len(suggestions) == 0 {
			zap.L().Info("no probable duplicates above threshold",
				zap.Float64("threshold", cfg.Resolve.SuggestThreshold))
			return nil
		}

		formatSuggestions(os.Stdout, suggestions)
		return nil
	},
}

func formatSuggestions(out io.Writer, suggestions []resolve.PersonSuggestion) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SIMILARITY\tPERSON\tPROBABLE DUPLICATE")
	_, _ = fmt.Fprintln(w, "----------\t------\t------------------")
	for _, s := range suggestions {
		_, _ = fmt.Fprintf(w, "%.3f\t%s (%s)\t%s (%s)\n",
			s.Similarity, s.PersonName, s.PersonID, s.CandidateName, s.CandidateID)
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}
