package engine

import (
	"strings"

	"github.com/spektr-org/gccdash/schema"
)

// ============================================================================
// ENGINE TYPES: query inputs and render-ready outputs
// ============================================================================

// ============================================================================
// CRITERIA: free-text search input
// ============================================================================

// Criteria are the five optional search fields. Empty fields do not restrict.
type Criteria struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	GCCID     string `json:"gccId"`
	Skill     string `json:"skill"`
	Source    string `json:"source"`
}

// Trim returns the criteria with surrounding whitespace removed.
func (c Criteria) Trim() Criteria {
	return Criteria{
		FirstName: strings.TrimSpace(c.FirstName),
		LastName:  strings.TrimSpace(c.LastName),
		GCCID:     strings.TrimSpace(c.GCCID),
		Skill:     strings.TrimSpace(c.Skill),
		Source:    strings.TrimSpace(c.Source),
	}
}

// IsEmpty reports whether no field carries a value after trimming.
func (c Criteria) IsEmpty() bool {
	return c.Trim() == Criteria{}
}

// Summary renders the supplied criteria, e.g. "ID: 7, Skill: go".
func (c Criteria) Summary() string {
	c = c.Trim()
	var parts []string
	if c.GCCID != "" {
		parts = append(parts, "ID: "+c.GCCID)
	}
	if c.FirstName != "" {
		parts = append(parts, "First Name: "+c.FirstName)
	}
	if c.LastName != "" {
		parts = append(parts, "Last Name: "+c.LastName)
	}
	if c.Skill != "" {
		parts = append(parts, "Skill: "+c.Skill)
	}
	if c.Source != "" {
		parts = append(parts, "Source: "+c.Source)
	}
	return strings.Join(parts, ", ")
}

// ============================================================================
// SELECTION: pivot input
// ============================================================================

// Selection is a grouping axis plus exact-match filters keyed by axis name.
// Empty grouping means the default axis; empty filter values do not restrict.
type Selection struct {
	Grouping string            `json:"grouping"`
	Filters  map[string]string `json:"filters,omitempty"`
}

// Filter returns the filter value for an axis, empty when unset.
func (s Selection) Filter(axis string) string {
	return s.Filters[axis]
}

// Active returns a copy of the filters without empty values.
func (s Selection) Active() map[string]string {
	out := make(map[string]string, len(s.Filters))
	for k, v := range s.Filters {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// ============================================================================
// GROUP / PIVOT RESULT
// ============================================================================

// Group is one pivot bucket.
type Group struct {
	Key        string     `json:"key"`
	Count      int        `json:"count"`
	Percentage float64    `json:"percentage"` // 0–100, one decimal
	View       RecordView `json:"-"`          // members of this bucket (zero-copy)
}

// PivotResult is a grouped count summary. Subset is the filtered,
// pre-grouping view that drill-down reads from.
type PivotResult struct {
	Axis    schema.Axis       `json:"axis"`
	Filters map[string]string `json:"filters,omitempty"`
	Buckets []Group           `json:"buckets"`
	Total   int               `json:"total"`
	Subset  RecordView        `json:"-"`
}

// ============================================================================
// MESSAGE
// ============================================================================

// Message levels.
const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// Message is the status line shown above the tables.
type Message struct {
	Text  string `json:"text"`
	Level string `json:"level"`
}

// ============================================================================
// OUTCOME: render-ready output of an engine operation
// ============================================================================

// Outcome is everything a front-end needs to redraw after one operation.
// Nil parts are unchanged by the operation.
type Outcome struct {
	Success      bool           `json:"success"`
	Code         string         `json:"code,omitempty"`
	Message      Message        `json:"message"`
	QuerySummary string         `json:"querySummary,omitempty"`
	Summary      *TableData     `json:"summary,omitempty"`
	Details      *DetailsView   `json:"details,omitempty"`
	Pivot        *TableData     `json:"pivot,omitempty"`
	Chart        *ChartConfig   `json:"chart,omitempty"`
	FilterOpts   []FilterOption `json:"filterOptions,omitempty"`
	PivotVisible *bool          `json:"pivotVisible,omitempty"`
	ClearDetails bool           `json:"clearDetails,omitempty"`

	Err error `json:"-"`
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType    string        `json:"chartType"`
	Title        string        `json:"title"`
	XAxis        string        `json:"xAxis,omitempty"`
	YAxis        string        `json:"yAxis,omitempty"`
	Series       []ChartSeries `json:"series"`
	Colors       []string      `json:"colors,omitempty"`       // one per point
	BorderColors []string      `json:"borderColors,omitempty"` // one per point
	ShowLegend   bool          `json:"showLegend"`
	ShowGrid     bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name string       `json:"name"`
	Data []ChartPoint `json:"data"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Empty   string     `json:"empty,omitempty"` // shown when Rows is empty
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "percent"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// ============================================================================
// DETAILS
// ============================================================================

// DetailsView is the two-column field/value table of the selected record.
type DetailsView struct {
	Title      string      `json:"title"`
	GCCID      string      `json:"gccId"`
	Rows       []DetailRow `json:"rows"`
	AllFields  bool        `json:"allFields"`
	CanShowAll bool        `json:"canShowAll"`
}

// DetailRow is one field of the details table.
type DetailRow struct {
	Field     string `json:"field"`
	Value     string `json:"value"`
	Missing   bool   `json:"missing,omitempty"`   // rendered italic
	Highlight bool   `json:"highlight,omitempty"` // the Status row
}

// ============================================================================
// FILTER OPTIONS
// ============================================================================

// FilterOption is the option list of one filter dropdown.
type FilterOption struct {
	Axis     string   `json:"axis"`
	AllLabel string   `json:"allLabel"`
	Values   []string `json:"values"`
}
