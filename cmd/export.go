package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/california-civic-data/calaccess-processed/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export flattened projections",
}

var exportCandidaciesCmd = &cobra.Command{
	Use:   "candidacies",
	Short: "Export the flattened candidacy view",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, func(e *export.Exporter, w io.Writer, format export.Format) error {
			rows, err := e.Candidacies(cmd.Context())
			if err != nil {
				return err
			}
			return writeRows(w, format, rows)
		})
	},
}

var exportContributionsCmd = &cobra.Command{
	Use:   "contributions",
	Short: "Export the flattened late-contribution view",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, func(e *export.Exporter, w io.Writer, format export.Format) error {
			rows, err := e.Contributions(cmd.Context())
			if err != nil {
				return err
			}
			return writeRows(w, format, rows)
		})
	},
}

func runExport(cmd *cobra.Command, write func(*export.Exporter, io.Writer, export.Format) error) error {
	ctx := cmd.Context()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return eris.Wrap(err, "export: parse --format")
	}
	f := export.Format(format)
	if f != export.FormatCSV && f != export.FormatJSON {
		return eris.Errorf("export: unknown format %q", format)
	}

	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return eris.Wrap(err, "export: parse --out")
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	var w io.Writer = os.Stdout
	if outPath != "" {
		file, err := os.Create(outPath)
		if err != nil {
			return eris.Wrapf(err, "export: create %s", outPath)
		}
		defer file.Close()
		w = file
		zap.L().Info("writing export", zap.String("path", outPath), zap.String("format", format))
	}

	return write(export.New(st), w, f)
}

func writeRows[T any](w io.Writer, format export.Format, rows []T) error {
	if format == export.FormatJSON {
		return export.WriteJSON(w, rows)
	}
	return export.WriteCSV(w, rows)
}

func init() {
	for _, c := range []*cobra.Command{exportCandidaciesCmd, exportContributionsCmd} {
		c.Flags().String("format", "csv", "output format: csv or json")
		c.Flags().String("out", "", "output file (default stdout)")
		exportCmd.AddCommand(c)
	}
	rootCmd.AddCommand(exportCmd)
}
