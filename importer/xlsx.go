package importer

import (
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/gccdash/roster"
)

// ReadXLSX reads one worksheet of a workbook. The first row is the header.
// When sheet is missing and was not chosen explicitly, the first worksheet
// is read instead.
func ReadXLSX(r io.Reader, sheet string, explicit bool) ([]*roster.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open workbook")
	}
	defer f.Close()

	sheet, err = pickSheet(f, sheet, explicit)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %q", sheet)
	}
	if len(rows) == 0 {
		return []*roster.Record{}, nil
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	dates := dateStyles{f: f, known: map[int]bool{}}
	names := columnNames(rows[0])
	records := make([]*roster.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rowNum := i + 2
		fields := make([]roster.Field, len(names))
		for col, name := range names {
			var raw string
			if col < len(row) {
				raw = row[col]
			}
			v, err := xlsxValue(f, &dates, sheet, col+1, rowNum, raw, date1904)
			if err != nil {
				return nil, err
			}
			fields[col] = roster.Field{Name: name, Value: v}
		}
		records = append(records, roster.NewRecord(fields))
	}
	return records, nil
}

func pickSheet(f *excelize.File, sheet string, explicit bool) (string, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err == nil && idx >= 0 {
		return sheet, nil
	}
	list := f.GetSheetList()
	if explicit || len(list) == 0 {
		return "", errors.Errorf("worksheet named %q not found", sheet)
	}
	return list[0], nil
}

// xlsxValue converts one raw cell. Empty cells are null, text cells stay
// text, and numeric cells become numbers; date-formatted serials become
// epoch milliseconds.
func xlsxValue(f *excelize.File, dates *dateStyles, sheet string, col, row int, raw string, date1904 bool) (roster.Value, error) {
	if raw == "" {
		return roster.NullValue(), nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return roster.Value{}, errors.Wrap(err, "cell name")
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return roster.Value{}, errors.Wrapf(err, "cell %s type", cell)
	}

	switch typ {
	case excelize.CellTypeBool:
		return roster.BoolValue(raw == "1" || raw == "TRUE" || raw == "true"), nil
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return roster.NumberValue(float64(t.UnixMilli())), nil
		}
		return roster.StringValue(raw), nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return roster.StringValue(raw), nil
		}
		if math.IsInf(n, 0) || math.IsNaN(n) {
			return roster.NullValue(), nil
		}
		isDate, err := dates.cell(sheet, cell)
		if err != nil {
			return roster.Value{}, err
		}
		if isDate {
			if t, err := excelize.ExcelDateToTime(n, date1904); err == nil {
				return roster.NumberValue(float64(t.Round(time.Millisecond).UnixMilli())), nil
			}
		}
		return roster.NumberValue(n), nil
	default:
		return roster.StringValue(raw), nil
	}
}

// dateStyles remembers, per style index, whether the style's number format
// displays a date or time.
type dateStyles struct {
	f     *excelize.File
	known map[int]bool
}

func (d *dateStyles) cell(sheet, cell string) (bool, error) {
	idx, err := d.f.GetCellStyle(sheet, cell)
	if err != nil {
		return false, errors.Wrapf(err, "cell %s style", cell)
	}
	if isDate, ok := d.known[idx]; ok {
		return isDate, nil
	}
	isDate := false
	if style, err := d.f.GetStyle(idx); err == nil {
		if style.CustomNumFmt != nil {
			isDate = isDateFormat(*style.CustomNumFmt)
		} else {
			isDate = isDateNumFmt(style.NumFmt)
		}
	}
	d.known[idx] = isDate
	return isDate, nil
}

// isDateNumFmt reports whether a built-in number format id is a date or time
// format. 27-36 and 50-58 are the East Asian locale date formats.
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22, id >= 45 && id <= 47:
		return true
	case id >= 27 && id <= 36, id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormat reports whether a custom number format code contains date or
// time tokens outside quoted literals, escapes and bracketed sections.
func isDateFormat(code string) bool {
	var plain strings.Builder
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch c {
		case '"':
			end := strings.IndexByte(code[i+1:], '"')
			if end < 0 {
				i = len(code)
			} else {
				i += end + 1
			}
		case '\\', '_', '*':
			i++
		case '[':
			end := strings.IndexByte(code[i:], ']')
			if end < 0 {
				i = len(code)
				break
			}
			// elapsed time such as [h] or [mm]
			if inner := strings.ToLower(code[i+1 : i+end]); inner != "" && strings.Trim(inner, "hms") == "" {
				return true
			}
			i += end
		default:
			plain.WriteByte(c)
		}
	}
	return strings.ContainsAny(strings.ToLower(plain.String()), "dmyhs")
}
