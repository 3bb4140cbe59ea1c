package engine

import (
	"github.com/spektr-org/gccdash/roster"
	"github.com/spektr-org/gccdash/schema"
)

// ViewState is everything one dashboard session has selected so far. Engine
// operations take a state and return the next one; nothing is kept globally.
type ViewState struct {
	PivotVisible bool      `json:"pivotVisible"`
	Selection    Selection `json:"selection"`

	// Pivot is the last computed pivot, whose retained subset drill-down reads.
	Pivot *PivotResult `json:"-"`

	// Listing holds the records of the summary table, in display order.
	Listing      []*roster.Record `json:"-"`
	QuerySummary string           `json:"querySummary"`

	Selected   *roster.Record `json:"-"`
	ShowAll    bool           `json:"showAll"`
	SelectedID string         `json:"selectedId,omitempty"`
}

// NewViewState returns the state of a fresh session: grouping by the default
// axis, pivot hidden, nothing listed or selected.
func NewViewState() ViewState {
	return ViewState{
		Selection:    Selection{Grouping: schema.DefaultAxis},
		QuerySummary: initialQuerySummary,
	}
}

// Grouping returns the current grouping axis name.
func (s ViewState) Grouping() string {
	if s.Selection.Grouping == "" {
		return schema.DefaultAxis
	}
	return s.Selection.Grouping
}

// clearSelection drops the selected record.
func (s ViewState) clearSelection() ViewState {
	s.Selected = nil
	s.SelectedID = ""
	s.ShowAll = false
	return s
}

// selectRecord makes r the selected record, showing core fields.
func (s ViewState) selectRecord(r *roster.Record) ViewState {
	s.Selected = r
	s.SelectedID = r.GCCID
	s.ShowAll = false
	return s
}

// reset returns the listing part of the state to its initial form.
func (s ViewState) reset() ViewState {
	s.Listing = nil
	s.QuerySummary = initialQuerySummary
	return s.clearSelection()
}
