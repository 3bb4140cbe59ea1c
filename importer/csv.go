package importer

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/spektr-org/gccdash/roster"
)

// ============================================================================
// CSV: header row plus data rows
// ============================================================================
// A column is numeric when every non-empty cell in it parses as a number;
// otherwise all of its cells stay text. Empty cells are null.
// ============================================================================

// ReadCSV parses CSV (optionally with a UTF-8 or UTF-16 byte order mark)
// into records.
func ReadCSV(r io.Reader) ([]*roster.Record, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []*roster.Record{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read CSV header")
	}
	names := columnNames(header)

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read CSV row")
		}
		if blankRow(row) {
			continue
		}
		rows = append(rows, row)
	}

	numeric := make([]bool, len(names))
	for col := range names {
		numeric[col] = numericColumn(rows, col)
	}

	records := make([]*roster.Record, 0, len(rows))
	for _, row := range rows {
		fields := make([]roster.Field, len(names))
		for col, name := range names {
			fields[col] = roster.Field{Name: name, Value: csvValue(cell(row, col), numeric[col])}
		}
		records = append(records, roster.NewRecord(fields))
	}
	return records, nil
}

func cell(row []string, col int) string {
	if col < len(row) {
		return strings.TrimSpace(row[col])
	}
	return ""
}

func numericColumn(rows [][]string, col int) bool {
	seen := false
	for _, row := range rows {
		v := cell(row, col)
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}

func csvValue(v string, numeric bool) roster.Value {
	if v == "" {
		return roster.NullValue()
	}
	if numeric {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return roster.NumberValue(f)
		}
	}
	return roster.StringValue(v)
}
