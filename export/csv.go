// Package export renders the selected record and the current pivot as
// downloadable CSV and XLSX files.
package export

import (
	"io"
	"strings"

	"github.com/go-faster/errors"

	"github.com/spektr-org/gccdash/engine"
	"github.com/spektr-org/gccdash/roster"
)

// ============================================================================
// RECORD CSV: header line + value line, every cell quoted
// ============================================================================

var filenameReplacer = strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")

// RecordFilename is the download name of a record export, e.g. GCC_7_Details.csv.
// Path separators in the GCC ID are replaced, so the name never leaves the
// directory it is joined to.
func RecordFilename(r *roster.Record, ext string) string {
	return "GCC_" + filenameReplacer.Replace(r.GCCID) + "_Details" + ext
}

// FormatRecordCSV renders r as two lines: field names, then field values, in
// field order. Header names have quotes doubled and commas removed; values
// keep their commas and only have quotes doubled.
func FormatRecordCSV(r *roster.Record, df roster.DateFormat) string {
	fields := r.Fields()
	headers := make([]string, len(fields))
	values := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = quote(strings.ReplaceAll(escapeQuotes(f.Name), ",", ""))
		values[i] = quote(csvValue(f.Name, f.Value, df))
	}
	return strings.Join(headers, ",") + "\n" + strings.Join(values, ",")
}

// WriteRecordCSV writes the CSV export of r to w.
func WriteRecordCSV(w io.Writer, r *roster.Record, df roster.DateFormat) error {
	if r == nil {
		return engine.ErrNoSelection
	}
	if _, err := io.WriteString(w, FormatRecordCSV(r, df)); err != nil {
		return errors.Wrap(err, "write csv")
	}
	return nil
}

func csvValue(name string, v roster.Value, df roster.DateFormat) string {
	switch {
	case v.IsNull():
		return roster.NotAvailable
	case roster.IsDateValue(name, v):
		ms, _ := v.Float()
		return df.Format(ms)
	case v.Kind() == roster.KindString, v.Kind() == roster.KindRaw:
		return escapeQuotes(v.String())
	default:
		return v.String()
	}
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}

func quote(s string) string {
	return `"` + s + `"`
}
