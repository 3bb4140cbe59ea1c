package engine

import (
	"sort"
	"strconv"
	"strings"

	"github.com/spektr-org/gccdash/roster"
)

// ============================================================================
// TABLE BUILDER: Produces TableData / DetailsView from views and results
// ============================================================================

// skillsPreview is the summary-table width of the skills column.
const skillsPreview = 30

// ============================================================================
// SUMMARY TABLE: Row per record
// ============================================================================

var summaryColumns = []Column{
	{Key: "gccId", Label: "GCC ID", Type: "text", Align: "left"},
	{Key: "name", Label: "Name", Type: "text", Align: "left"},
	{Key: "jobRole", Label: "Job Role", Type: "text", Align: "left"},
	{Key: "level", Label: "Level", Type: "text", Align: "left"},
	{Key: "skills", Label: "Skills", Type: "text", Align: "left"},
	{Key: "status", Label: "Status", Type: "text", Align: "left"},
}

// BuildSummaryTable produces one row per record of the view.
func BuildSummaryTable(view RecordView) *TableData {
	rows := make([][]string, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		rows = append(rows, SummaryRow(view.Record(i)))
	}
	return &TableData{
		Title:   "Search Results",
		Columns: summaryColumns,
		Rows:    rows,
		Empty:   emptySummaryText,
	}
}

// EmptySummaryTable is the summary table before any search.
func EmptySummaryTable() *TableData {
	return &TableData{
		Title:   "Search Results",
		Columns: summaryColumns,
		Rows:    [][]string{},
		Empty:   emptySummaryText,
	}
}

// SummaryRow renders the summary columns of one record.
func SummaryRow(r *roster.Record) []string {
	name := strings.TrimSpace(r.FirstName + " " + r.LastName)
	return []string{
		r.GCCID,
		roster.OrNA(name),
		roster.OrNA(r.JobRole),
		roster.OrNA(r.Level),
		Truncate(roster.OrNA(r.SkillRequirements), skillsPreview),
		roster.OrNA(r.Status),
	}
}

// ============================================================================
// DETAILS TABLE: Row per field of one record
// ============================================================================

// BuildDetails renders the selected record: the core fields, or every field
// sorted by name when all is set.
func BuildDetails(r *roster.Record, all bool, df roster.DateFormat) *DetailsView {
	fields := roster.CoreFields
	if all {
		fields = r.Names()
		sort.Strings(fields)
	}

	rows := make([]DetailRow, 0, len(fields))
	for _, name := range fields {
		v, _ := r.Get(name)
		if name == roster.FieldSkills && (v.IsEmpty() || v.String() == roster.NotAvailable) {
			v, _ = r.Get(roster.FieldSkillRequirements)
		}
		rows = append(rows, DetailRow{
			Field:     name,
			Value:     roster.DisplayValue(name, v, df),
			Missing:   v.IsEmpty(),
			Highlight: name == roster.FieldStatus,
		})
	}

	title := r.FirstName
	if title == "" {
		title = "GCC"
	}
	return &DetailsView{
		Title:      r.GCCID + " - " + title,
		GCCID:      r.GCCID,
		Rows:       rows,
		AllFields:  all,
		CanShowAll: !all,
	}
}

// ============================================================================
// PIVOT TABLE: Row per bucket
// ============================================================================

// BuildPivotTable renders bucket, count and percentage columns.
func BuildPivotTable(result *PivotResult) *TableData {
	if result == nil {
		return &TableData{
			Columns: pivotColumns("Status"),
			Rows:    [][]string{},
			Empty:   pivotNoDataText,
		}
	}

	rows := make([][]string, 0, len(result.Buckets))
	for _, g := range result.Buckets {
		rows = append(rows, []string{
			g.Key,
			strconv.Itoa(g.Count),
			FormatPercent(g.Percentage),
		})
	}
	return &TableData{
		Title:   result.Axis.Name,
		Columns: pivotColumns(result.Axis.Name),
		Rows:    rows,
		Empty:   pivotNoMatchText,
		Summary: &Summary{
			Label: "Total",
			Values: map[string]string{
				"count": strconv.Itoa(result.Total),
			},
		},
	}
}

func pivotColumns(axis string) []Column {
	return []Column{
		{Key: "key", Label: axis, Type: "text", Align: "left"},
		{Key: "count", Label: "Count", Type: "number", Align: "center"},
		{Key: "percentage", Label: "Percentage", Type: "percent", Align: "right"},
	}
}
