package export

import (
	"io"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/gccdash/engine"
	"github.com/spektr-org/gccdash/roster"
	"github.com/spektr-org/gccdash/schema"
)

// ============================================================================
// XLSX: record and pivot workbooks
// ============================================================================

const (
	recordSheet = "Details"
	pivotSheet  = "Pivot"

	// ContentTypeXLSX is the media type of the workbooks written here.
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// ContentTypeCSV is the media type of record CSV exports.
	ContentTypeCSV = "text/csv; charset=utf-8"
)

var percentFormat = "0.0%"

// PivotFilename is the download name of a pivot export, e.g. GCC_Pivot_Status.xlsx.
func PivotFilename(result *engine.PivotResult) string {
	return "GCC_Pivot_" + result.Axis.Name + ".xlsx"
}

// WriteRecordXLSX writes r as a one-sheet workbook: a bold header row of
// field names and one row of values.
func WriteRecordXLSX(w io.Writer, r *roster.Record, df roster.DateFormat) error {
	if r == nil {
		return engine.ErrNoSelection
	}

	f, err := newWorkbook(recordSheet)
	if err != nil {
		return err
	}
	defer f.Close()

	fields := r.Fields()
	header := make([]interface{}, len(fields))
	values := make([]interface{}, len(fields))
	for i, fld := range fields {
		header[i] = fld.Name
		values[i] = cellValue(fld.Name, fld.Value, df)
	}

	if err := f.SetSheetRow(recordSheet, "A1", &header); err != nil {
		return errors.Wrap(err, "write header row")
	}
	if err := f.SetSheetRow(recordSheet, "A2", &values); err != nil {
		return errors.Wrap(err, "write value row")
	}
	if err := boldRow(f, recordSheet, 1, len(header)); err != nil {
		return err
	}
	return writeWorkbook(f, w)
}

// WritePivotXLSX writes a pivot table: axis, count and percentage per bucket,
// a total row, then the filters the pivot was computed under.
func WritePivotXLSX(w io.Writer, result *engine.PivotResult, axes *schema.AxisTable) error {
	if result == nil {
		return engine.ErrNoData
	}

	f, err := newWorkbook(pivotSheet)
	if err != nil {
		return err
	}
	defer f.Close()

	rows := [][]interface{}{{result.Axis.Name, "Count", "Percentage"}}
	for _, g := range result.Buckets {
		rows = append(rows, []interface{}{g.Key, g.Count, g.Percentage / 100})
	}
	rows = append(rows, []interface{}{"Total", result.Total})
	totalRow := len(rows)

	rows = append(rows, []interface{}{}, []interface{}{"Filter", "Value"})
	filterHeader := len(rows)
	for _, a := range axes.Filterable() {
		value := result.Filters[a.Name]
		if value == "" {
			value = a.AllLabel()
		}
		rows = append(rows, []interface{}{a.Name, value})
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "cell name")
		}
		if err := f.SetSheetRow(pivotSheet, cell, &rows[i]); err != nil {
			return errors.Wrapf(err, "write row %d", i+1)
		}
	}

	for _, row := range []int{1, totalRow, filterHeader} {
		if err := boldRow(f, pivotSheet, row, 3); err != nil {
			return err
		}
	}
	if len(result.Buckets) > 0 {
		pct, err := f.NewStyle(&excelize.Style{CustomNumFmt: &percentFormat})
		if err != nil {
			return errors.Wrap(err, "percent style")
		}
		last, _ := excelize.CoordinatesToCellName(3, len(result.Buckets)+1)
		if err := f.SetCellStyle(pivotSheet, "C2", last, pct); err != nil {
			return errors.Wrap(err, "apply percent style")
		}
	}
	return writeWorkbook(f, w)
}

func newWorkbook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "name sheet")
	}
	return f, nil
}

func boldRow(f *excelize.File, sheet string, row, cols int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "bold style")
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(max(cols, 1), row)
	if err := f.SetCellStyle(sheet, first, last, style); err != nil {
		return errors.Wrap(err, "apply bold style")
	}
	return nil
}

func writeWorkbook(f *excelize.File, w io.Writer) error {
	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

// cellValue keeps numbers and booleans typed; dates and nulls become text.
func cellValue(name string, v roster.Value, df roster.DateFormat) interface{} {
	switch {
	case v.IsNull():
		return roster.NotAvailable
	case roster.IsDateValue(name, v):
		ms, _ := v.Float()
		return df.Format(ms)
	case v.Kind() == roster.KindNumber:
		n, _ := v.Float()
		return n
	case v.Kind() == roster.KindBool:
		return v.String() == "true"
	default:
		return v.String()
	}
}
