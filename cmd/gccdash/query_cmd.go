package main

import (
	"os"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/spektr-org/gccdash/engine"
	"github.com/spektr-org/gccdash/export"
)

func newSearchCmd(g *globals) *cobra.Command {
	var (
		c   engine.Criteria
		all bool
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the roster by name, GCC ID, skill or source",
		Example: `  gccdash search --first-name ann --source vendor
  gccdash search --gcc-id G-1 --all --format pretty`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			st, out := s.engine.Search(s.ds, engine.NewViewState(), c)
			if all && out.Success {
				_, out2 := s.engine.ShowAll(st)
				out.Details = out2.Details
			}
			return writeOutcome(cmd.OutOrStdout(), out, out.Summary, g.format)
		},
	}
	cmd.Flags().StringVar(&c.FirstName, "first-name", "", "Associate first name contains")
	cmd.Flags().StringVar(&c.LastName, "last-name", "", "Associate last name contains")
	cmd.Flags().StringVar(&c.GCCID, "gcc-id", "", "GCC ID (exact, case-insensitive)")
	cmd.Flags().StringVar(&c.Skill, "skill", "", "Specific skill requirements contain")
	cmd.Flags().StringVar(&c.Source, "source", "", "Source contains")
	cmd.Flags().BoolVar(&all, "all", false, "Show every field of the first match")
	addFormatFlag(cmd, g)
	return cmd
}

func newPivotCmd(g *globals) *cobra.Command {
	var (
		sel     engine.Selection
		filters map[string]string
		drill   string
		xlsxOut string
	)
	shortcuts := map[string]*string{
		"Status":  new(string),
		"Source":  new(string),
		"Level":   new(string),
		"TSLT":    new(string),
		"Quarter": new(string),
	}
	cmd := &cobra.Command{
		Use:   "pivot",
		Short: "Count the roster by one axis, optionally filtered",
		Example: `  gccdash pivot --group-by Level --source "Vendor A"
  gccdash pivot --group-by Status --filter Quarter=Q1 --format csv
  gccdash pivot --group-by Source --drill "Vendor A"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			sel.Filters = make(map[string]string, len(filters)+len(shortcuts))
			for axis, v := range filters {
				sel.Filters[axis] = v
			}
			for axis, v := range shortcuts {
				if *v != "" {
					sel.Filters[axis] = *v
				}
			}

			st, out := s.engine.Pivot(s.ds, engine.NewViewState(), sel)
			if out.Success && xlsxOut != "" {
				if err := writePivotWorkbook(xlsxOut, st.Pivot, s.engine); err != nil {
					return err
				}
			}
			if out.Success && drill != "" {
				_, out = s.engine.DrillDown(st, drill)
				return writeOutcome(cmd.OutOrStdout(), out, out.Summary, g.format)
			}
			return writeOutcome(cmd.OutOrStdout(), out, out.Pivot, g.format)
		},
	}
	cmd.Flags().StringVar(&sel.Grouping, "group-by", "Status", "Grouping axis")
	cmd.Flags().StringToStringVar(&filters, "filter", nil, "Exact-match filter as Axis=Value (repeatable)")
	cmd.Flags().StringVar(shortcuts["Status"], "status", "", "Filter: Status")
	cmd.Flags().StringVar(shortcuts["Source"], "source", "", "Filter: Source")
	cmd.Flags().StringVar(shortcuts["Level"], "level", "", "Filter: Level")
	cmd.Flags().StringVar(shortcuts["TSLT"], "tslt", "", "Filter: TSLT member")
	cmd.Flags().StringVar(shortcuts["Quarter"], "quarter", "", "Filter: original quarter")
	cmd.Flags().StringVar(&drill, "drill", "", "List the records of one bucket instead of the counts")
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "Also write the pivot table to this workbook")
	addFormatFlag(cmd, g)
	return cmd
}

func writePivotWorkbook(path string, result *engine.PivotResult, eng *engine.Engine) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create workbook")
	}
	if err := export.WritePivotXLSX(f, result, eng.Axes()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
