package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/go-faster/errors"

	"github.com/spektr-org/gccdash/engine"
)

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v interface{}, format string) error {
	enc := json.NewEncoder(w)
	if format == "pretty" {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// ============================================================================
// TABLE OUTPUT: summary and pivot tables as text or Sheets-ready CSV
// ============================================================================

func tableHeaders(t *engine.TableData) []string {
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Label
	}
	return headers
}

func writeTableCSV(w io.Writer, t *engine.TableData) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tableHeaders(t)); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func writeTableText(w io.Writer, t *engine.TableData) error {
	if len(t.Rows) == 0 {
		if t.Empty != "" {
			_, err := fmt.Fprintln(w, t.Empty)
			return err
		}
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(tableHeaders(t), "\t")))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func writeDetailsText(w io.Writer, d *engine.DetailsView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n", d.Title)
	for _, row := range d.Rows {
		fmt.Fprintf(tw, "  %s\t%s\n", row.Field, row.Value)
	}
	return tw.Flush()
}

// writeOutcome renders an engine outcome around the given table. A failed
// outcome is written like any other and then reported as errReported.
func writeOutcome(w io.Writer, out *engine.Outcome, table *engine.TableData, format string) error {
	var err error
	switch format {
	case "json", "pretty":
		err = writeJSON(w, out, format)
	case "csv":
		if table == nil {
			return errors.New(out.Message.Text)
		}
		err = writeTableCSV(w, table)
	case "text":
		err = writeOutcomeText(w, out, table)
	default:
		return errors.Errorf("unknown format %q", format)
	}
	if err != nil {
		return errors.Wrap(err, "write output")
	}
	if !out.Success {
		return errReported
	}
	return nil
}

func writeOutcomeText(w io.Writer, out *engine.Outcome, table *engine.TableData) error {
	if _, err := fmt.Fprintln(w, out.Message.Text); err != nil {
		return err
	}
	if out.QuerySummary != "" {
		fmt.Fprintln(w, out.QuerySummary)
	}
	if table != nil {
		fmt.Fprintln(w)
		if err := writeTableText(w, table); err != nil {
			return err
		}
	}
	if out.Details != nil {
		fmt.Fprintln(w)
		return writeDetailsText(w, out.Details)
	}
	return nil
}
