package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/california-civic-data/calaccess-processed/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show table counts and sync history",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		counts, err := st.Counts(ctx)
		if err != nil {
			return eris.Wrap(err, "status: counts")
		}
		states, err := st.ListSyncStates(ctx)
		if err != nil {
			return eris.Wrap(err, "status: sync states")
		}

		formatCounts(os.Stdout, counts)
		fmt.Fprintln(os.Stdout)
		formatSyncStates(os.Stdout, states)
		return nil
	},
}

func formatCounts(out io.Writer, counts map[string]int64) {
	tables := make([]string, 0, len(counts))
	for t := range counts {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TABLE\tROWS")
	_, _ = fmt.Fprintln(w, "-----\t----")
	for _, t := range tables {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", t, counts[t])
	}
	_ = w.Flush()
}

func formatSyncStates(out io.Writer, states []model.SyncState) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATASET\tSTATUS\tLAST SYNC\tROWS\tERROR")
	_, _ = fmt.Fprintln(w, "-------\t------\t---------\t----\t-----")
	for _, s := range states {
		last := "-"
		if s.LastSyncAt != nil {
			last = s.LastSyncAt.Format("2006-01-02 15:04")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			s.Dataset, s.Status, last, s.RowsSynced, truncate(s.Error, 60))
	}
	_ = w.Flush()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
