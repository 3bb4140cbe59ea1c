package engine

import (
	"sort"

	"github.com/spektr-org/gccdash/schema"
)

// FilterOptions lists the distinct non-empty values of every filterable axis.
// Numeric axes sort by leading number (values without one last); the rest sort
// in plain string order.
func FilterOptions(view RecordView, opts ...Option) []FilterOption {
	cfg := applyOptions(opts)

	axes := cfg.Axes.Filterable()
	out := make([]FilterOption, 0, len(axes))
	for _, a := range axes {
		values := UniqueValues(view, a.Field)
		if values == nil {
			values = []string{}
		}
		if a.Order == schema.OrderNumeric {
			SortNumeric(values)
		} else {
			sort.Strings(values)
		}
		out = append(out, FilterOption{
			Axis:     a.Name,
			AllLabel: a.AllLabel(),
			Values:   values,
		})
	}
	return out
}
