package roster

import (
	"strings"
	"time"
)

// NotAvailable is shown in place of missing values.
const NotAvailable = "N/A"

// DateThreshold is the magnitude above which a number in a "Date" field is
// read as epoch milliseconds.
const DateThreshold = 1e12

// CoreFields are the fields of the default details view, in display order.
var CoreFields = []string{
	FieldGCCID,
	FieldFirstName,
	FieldLastName,
	FieldJobRole,
	FieldLevel,
	FieldSkills,
	FieldStatus,
	FieldSource,
	FieldReportingManager,
}

// DateFormat renders epoch-millisecond values as calendar dates.
type DateFormat struct {
	Layout   string
	Location *time.Location
}

// DefaultDateFormat renders M/D/YYYY in UTC.
func DefaultDateFormat() DateFormat {
	return DateFormat{Layout: "1/2/2006", Location: time.UTC}
}

// Format renders ms (epoch milliseconds) in the configured layout and location.
func (f DateFormat) Format(ms float64) string {
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	layout := f.Layout
	if layout == "" {
		layout = "1/2/2006"
	}
	return time.UnixMilli(int64(ms)).In(loc).Format(layout)
}

// IsDateValue reports whether v is rendered as a date under the name+magnitude
// heuristic: a number greater than DateThreshold in a field whose name contains "Date".
// It is not a type check; a large number in any other field stays a number.
func IsDateValue(name string, v Value) bool {
	f, ok := v.Float()
	return ok && f > DateThreshold && strings.Contains(name, "Date")
}

// DisplayValue renders a field value for the details view:
// null or empty as N/A, heuristic dates as calendar dates, anything else as its string form.
func DisplayValue(name string, v Value, df DateFormat) string {
	if v.IsEmpty() {
		return NotAvailable
	}
	if IsDateValue(name, v) {
		f, _ := v.Float()
		return df.Format(f)
	}
	return v.String()
}

// OrNA returns s, or N/A when s is empty.
func OrNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
