package engine

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/spektr-org/gccdash/roster"
	"github.com/spektr-org/gccdash/schema"
)

// ============================================================================
// TEXT BUILDER: status messages and query summaries
// ============================================================================

const (
	initialQuerySummary = "(No search performed)"
	emptySummaryText    = "Enter search criteria and click 'Search GCCs'."
	pivotNoDataText     = "Data not loaded."
	pivotNoMatchText    = "No data matches the selected filters."
)

func success(format string, args ...interface{}) Message {
	return Message{Text: fmt.Sprintf(format, args...), Level: LevelSuccess}
}

func failure(format string, args ...interface{}) Message {
	return Message{Text: fmt.Sprintf(format, args...), Level: LevelError}
}

// LoadMessage describes the last load attempt of a store.
func LoadMessage(st roster.Status) Message {
	switch {
	case st.LastError != "":
		return failure("Error loading %s. Check file path or local server. Error: %s", st.Source, st.LastError)
	case !st.Loaded:
		return failure("Data has not been loaded yet. Please wait or check data source.")
	case st.Records == 0:
		return failure("Data loaded, but the JSON file is empty.")
	default:
		return success("Data for %d GCCs loaded successfully.", st.Records)
	}
}

// ErrorMessage turns an engine error into the status line shown for it.
func ErrorMessage(err error) Message {
	switch {
	case err == nil:
		return Message{}
	case errors.Is(err, ErrNoData):
		return failure("Data has not been loaded yet. Please wait or check data source.")
	case errors.Is(err, ErrEmptyCriteria):
		return failure("Please enter at least one search criterion.")
	case errors.Is(err, ErrNoMatch):
		return failure("No GCCs found matching all criteria.")
	case errors.Is(err, ErrNoSelection):
		return failure("Please select a GCC ID result first.")
	case errors.Is(err, ErrBadIndex):
		return failure("That row is no longer in the results. Please search again.")
	case errors.Is(err, ErrUnknownAxis):
		return failure("Unknown grouping or filter: %v", err)
	default:
		return failure("%v", err)
	}
}

func foundMessage(n int) Message {
	return success("Found %d GCC(s) matching the criteria. Click a row for full details.", n)
}

func staleMessage(axis, key string) Message {
	return failure("No data found for %s: %s under current filters.", axis, key)
}

func drillMessage(n int, axis, key string) Message {
	return success("Displaying %d GCC(s) filtered by %s: %s. Click a row for full details.", n, axis, key)
}

func coreDetailsMessage(id string) Message {
	return success("GCC ID : %s details displayed (Core Fields). Click 'Show full details' below for all data.", id)
}

func allDetailsMessage(id string) Message {
	return success("GCC ID : %s - All details displayed.", id)
}

func pivotMessage(result *PivotResult) Message {
	if len(result.Buckets) == 0 {
		return failure(pivotNoMatchText)
	}
	return success("Summary of %d GCC(s) by %s.", result.Total, result.Axis.Name)
}

// ============================================================================
// QUERY SUMMARIES
// ============================================================================

func searchSummary(c Criteria) string {
	return "(Search: " + c.Summary() + ")"
}

func noResultsSummary(c Criteria) string {
	return "(No results for: " + c.Summary() + ")"
}

// drillSummary renders the bucket and every filter axis, set or not, e.g.
// "(Filtered by Status: Active | Pivot Filters: All Statuses, Source: Vendor, ...)".
func drillSummary(axes *schema.AxisTable, result *PivotResult, key string) string {
	filterable := axes.Filterable()
	parts := make([]string, 0, len(filterable))
	for _, a := range filterable {
		if v := result.Filters[a.Name]; v != "" {
			parts = append(parts, a.Name+": "+v)
		} else {
			parts = append(parts, a.AllLabel())
		}
	}
	return fmt.Sprintf("(Filtered by %s: %s | Pivot Filters: %s)", result.Axis.Name, key, strings.Join(parts, ", "))
}
