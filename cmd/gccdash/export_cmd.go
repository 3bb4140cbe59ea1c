package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/spektr-org/gccdash/export"
)

func newExportCmd(g *globals) *cobra.Command {
	var (
		id     string
		xlsx   bool
		outDir string
	)
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export one record as GCC_<id>_Details.csv (or .xlsx)",
		Example: `  gccdash export --gcc-id G-1 --out-dir exports`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			rec, ok := s.ds.FindByGCCID(id)
			if !ok {
				return errors.Errorf("no GCC with ID %q", id)
			}

			ext := ".csv"
			if xlsx {
				ext = ".xlsx"
			}
			path := filepath.Join(outDir, export.RecordFilename(rec, ext))
			f, err := os.Create(path)
			if err != nil {
				return errors.Wrap(err, "create export")
			}
			if xlsx {
				err = export.WriteRecordXLSX(f, rec, s.engine.DateFormat())
			} else {
				err = export.WriteRecordCSV(f, rec, s.engine.DateFormat())
			}
			if err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return errors.Wrap(err, "close export")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
	cmd.Flags().StringVar(&id, "gcc-id", "", "GCC ID of the record (exact match, required)")
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "Write an Excel workbook instead of CSV")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "Directory to write the export into")
	_ = cmd.MarkFlagRequired("gcc-id")
	return cmd
}
