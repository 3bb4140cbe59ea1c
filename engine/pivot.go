package engine

import (
	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

// ============================================================================
// PIVOT: filter → group → count → sort
// ============================================================================

// Pivot filters a view by the selection's exact-match filters, groups the
// remaining records by the grouping axis and counts each bucket.
//
// An empty view reports ErrNoData. A grouping or filter name that is not in
// the axis table reports ErrUnknownAxis. Filters that exclude every record give
// a successful result with zero buckets.
func Pivot(view RecordView, sel Selection, opts ...Option) (*PivotResult, error) {
	cfg := applyOptions(opts)

	if view.Len() == 0 {
		return nil, ErrNoData
	}

	axis, err := cfg.Axes.Resolve(sel.Grouping)
	if err != nil {
		return nil, err
	}

	filters := make(Filters)
	active := sel.Active()
	for name, value := range active {
		a, ok := cfg.Axes.Get(name)
		if !ok || !a.Filterable {
			return nil, errors.Wrapf(ErrUnknownAxis, "filter %q", name)
		}
		filters[a.Field] = value
	}

	subset := ApplyFilters(view, filters)
	buckets := GroupAndCount(subset, axis.Field, cfg.Language)
	if buckets == nil {
		buckets = []Group{}
	}

	cfg.Log.WithFields(logrus.Fields{
		"axis":     axis.Name,
		"filtered": subset.Len(),
		"total":    view.Len(),
		"buckets":  len(buckets),
	}).Debug("pivot computed")

	return &PivotResult{
		Axis:    axis,
		Filters: active,
		Buckets: buckets,
		Total:   subset.Len(),
		Subset:  subset,
	}, nil
}

// DrillDown returns the members of one bucket of a pivot result, read from the
// result's retained subset with the same key function used for grouping, so
// the N/A bucket drills into records whose field is absent or empty.
//
// Every bucket key of a result drills into at least one record; an empty
// drill-down means the key does not belong to this result and reports
// ErrStaleSelection.
func DrillDown(result *PivotResult, key string) (RecordView, error) {
	if result == nil || result.Subset == nil {
		return nil, errors.Wrap(ErrStaleSelection, "no pivot computed")
	}
	field := result.Axis.Field
	members := ApplyPredicate(result.Subset, func(view RecordView, i int) bool {
		return BucketKey(view, i, field) == key
	})
	if members.Len() == 0 {
		return nil, errors.Wrapf(ErrStaleSelection, "%s: %s", result.Axis.Name, key)
	}
	return members, nil
}
