package engine

import (
	"github.com/go-faster/errors"

	"github.com/spektr-org/gccdash/roster"
	"github.com/spektr-org/gccdash/schema"
)

// ============================================================================
// EXECUTOR: dashboard operations over an explicit ViewState
// ============================================================================
// Every operation takes the current dataset (nil when not loaded) and the
// session's ViewState, and returns the next state plus a render-ready Outcome.
//
// Errors never escape as Go errors: they are folded into the Outcome as a
// status message and a code, and the returned state is the one the session
// should keep.
// ============================================================================

// Engine runs dashboard operations with a fixed configuration.
type Engine struct {
	cfg  *config
	opts []Option
}

// New creates an Engine. Without options it uses the built-in axis table,
// English collation and UTC dates.
func New(opts ...Option) *Engine {
	return &Engine{cfg: applyOptions(opts), opts: opts}
}

// Axes returns the axis table the engine resolves names with.
func (e *Engine) Axes() *schema.AxisTable { return e.cfg.Axes }

// DateFormat returns the format used for heuristic date values.
func (e *Engine) DateFormat() roster.DateFormat { return e.cfg.DateFormat }

// ============================================================================
// SEARCH
// ============================================================================

// Search lists the records matching every criterion and selects the first.
//
// Criteria that are all empty reset the listing to its initial form. A search
// that matches nothing clears the listing and reports ErrNoMatch.
func (e *Engine) Search(ds *roster.Dataset, st ViewState, c Criteria) (ViewState, *Outcome) {
	c = c.Trim()
	view, err := Search(DatasetView(ds), c)
	switch {
	case err == nil:
	case errors.Is(err, ErrEmptyCriteria):
		st = st.reset()
		out := e.fail(err, ErrorMessage(err))
		out.QuerySummary = st.QuerySummary
		out.Summary = EmptySummaryTable()
		out.ClearDetails = true
		return st, out
	default:
		return st, e.fail(err, ErrorMessage(err))
	}

	if view.Len() == 0 {
		st = st.reset()
		st.QuerySummary = noResultsSummary(c)
		out := e.fail(ErrNoMatch, ErrorMessage(ErrNoMatch))
		out.QuerySummary = st.QuerySummary
		out.Summary = EmptySummaryTable()
		out.ClearDetails = true
		return st, out
	}

	st.Listing = Records(view)
	st.QuerySummary = searchSummary(c)
	st = st.selectRecord(st.Listing[0])

	e.cfg.Log.WithField("matches", view.Len()).Debug("search")

	return st, &Outcome{
		Success:      true,
		Message:      foundMessage(view.Len()),
		QuerySummary: st.QuerySummary,
		Summary:      BuildSummaryTable(view),
		Details:      BuildDetails(st.Selected, false, e.cfg.DateFormat),
	}
}

// ============================================================================
// PIVOT
// ============================================================================

// TogglePivot shows or hides the pivot section. Showing it computes the pivot
// for the current selection.
func (e *Engine) TogglePivot(ds *roster.Dataset, st ViewState) (ViewState, *Outcome) {
	if ds == nil || ds.Len() == 0 {
		return st, e.fail(ErrNoData, failure("Data not yet loaded. Please wait."))
	}

	st.PivotVisible = !st.PivotVisible
	if !st.PivotVisible {
		visible := false
		return st, &Outcome{Success: true, PivotVisible: &visible}
	}

	st, out := e.Pivot(ds, st, st.Selection)
	visible := true
	out.PivotVisible = &visible
	return st, out
}

// Pivot filters, groups and counts the dataset for sel and keeps the result
// for drill-down. An unresolvable selection leaves the state unchanged.
func (e *Engine) Pivot(ds *roster.Dataset, st ViewState, sel Selection) (ViewState, *Outcome) {
	if sel.Grouping == "" {
		sel.Grouping = schema.DefaultAxis
	}

	result, err := Pivot(DatasetView(ds), sel, e.opts...)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoData):
		st.Selection = sel
		st.Pivot = nil
		out := e.fail(err, failure(pivotNoDataText))
		out.Pivot = BuildPivotTable(nil)
		out.Chart = BuildChart(nil)
		return st, out
	default:
		return st, e.fail(err, ErrorMessage(err))
	}

	st.Selection = sel
	st.Pivot = result
	return st, &Outcome{
		Success: true,
		Message: pivotMessage(result),
		Pivot:   BuildPivotTable(result),
		Chart:   BuildChart(result),
	}
}

// SetGrouping re-pivots the current filters by another axis.
func (e *Engine) SetGrouping(ds *roster.Dataset, st ViewState, axis string) (ViewState, *Outcome) {
	sel := Selection{Grouping: axis, Filters: st.Selection.Active()}
	return e.Pivot(ds, st, sel)
}

// DrillDown lists the members of one bucket of the last pivot. Nothing is
// selected afterwards.
func (e *Engine) DrillDown(st ViewState, key string) (ViewState, *Outcome) {
	members, err := DrillDown(st.Pivot, key)
	if err != nil {
		axis := st.Grouping()
		if st.Pivot != nil {
			axis = st.Pivot.Axis.Name
		}
		return st, e.fail(err, staleMessage(axis, key))
	}

	st.Listing = Records(members)
	st.QuerySummary = drillSummary(e.cfg.Axes, st.Pivot, key)
	st = st.clearSelection()

	return st, &Outcome{
		Success:      true,
		Message:      drillMessage(members.Len(), st.Pivot.Axis.Name, key),
		QuerySummary: st.QuerySummary,
		Summary:      BuildSummaryTable(members),
		ClearDetails: true,
	}
}

// ============================================================================
// SELECTION / DETAILS
// ============================================================================

// Select makes row index of the current listing the selected record and shows
// its core fields.
func (e *Engine) Select(st ViewState, index int) (ViewState, *Outcome) {
	if index < 0 || index >= len(st.Listing) {
		return st, e.fail(ErrBadIndex, ErrorMessage(ErrBadIndex))
	}
	st = st.selectRecord(st.Listing[index])
	return st, &Outcome{
		Success: true,
		Message: coreDetailsMessage(st.SelectedID),
		Details: BuildDetails(st.Selected, false, e.cfg.DateFormat),
	}
}

// ShowAll expands the details of the selected record to every field.
func (e *Engine) ShowAll(st ViewState) (ViewState, *Outcome) {
	if st.Selected == nil {
		return st, e.fail(ErrNoSelection, ErrorMessage(ErrNoSelection))
	}
	st.ShowAll = true
	return st, &Outcome{
		Success: true,
		Message: allDetailsMessage(st.SelectedID),
		Details: BuildDetails(st.Selected, true, e.cfg.DateFormat),
	}
}

// Details re-renders the selected record, core fields or all of them.
func (e *Engine) Details(st ViewState, all bool) (ViewState, *Outcome) {
	if all {
		return e.ShowAll(st)
	}
	if st.Selected == nil {
		return st, e.fail(ErrNoSelection, ErrorMessage(ErrNoSelection))
	}
	st.ShowAll = false
	return st, &Outcome{
		Success: true,
		Message: coreDetailsMessage(st.SelectedID),
		Details: BuildDetails(st.Selected, false, e.cfg.DateFormat),
	}
}

// FilterOptions lists the values of every filterable axis of the dataset.
func (e *Engine) FilterOptions(ds *roster.Dataset) []FilterOption {
	return FilterOptions(DatasetView(ds), e.opts...)
}

func (e *Engine) fail(err error, msg Message) *Outcome {
	e.cfg.Log.WithError(err).Debug("operation failed")
	return &Outcome{
		Success: false,
		Code:    Code(err),
		Message: msg,
		Err:     err,
	}
}
