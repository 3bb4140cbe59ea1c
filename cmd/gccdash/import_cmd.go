package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spektr-org/gccdash/importer"
)

func newImportCmd(g *globals) *cobra.Command {
	var (
		sheet string
		out   string
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Convert an exported spreadsheet (xlsx or csv) into the JSON dataset",
		Long: `Convert an exported spreadsheet into the JSON dataset.

A relative file name that does not exist in the working directory is looked
up in ~/Downloads. An existing output file is first renamed to
<name>_YYYYMMDD_HHMMSS<ext>.`,
		Example: `  gccdash import roster.xlsx
  gccdash import roster.xlsx --sheet "Base Data" --out data/db.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := g.configuration()
			if err != nil {
				return err
			}
			im := importer.New(importer.WithSheet(sheet), importer.WithLogger(conf.Logger()))
			res, err := im.Import(args[0], out)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if g.format == "json" || g.format == "pretty" {
				return writeJSON(w, res, g.format)
			}
			if res.Archived != "" {
				fmt.Fprintf(w, "Existing file renamed to: %s\n", res.Archived)
			}
			_, err = fmt.Fprintf(w, "Conversion complete. %d records from '%s' saved to %s\n", res.Records, res.Source, res.Output)
			return err
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", `Worksheet to read (default "Base Data", else the first sheet)`)
	cmd.Flags().StringVar(&out, "out", "db.json", "Dataset file to write")
	addFormatFlag(cmd, g)
	return cmd
}
