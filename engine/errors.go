package engine

import (
	"github.com/go-faster/errors"

	"github.com/spektr-org/gccdash/schema"
)

// Error kinds surfaced to the user as status messages. None are retried.
var (
	ErrNoData         = errors.New("data not loaded")
	ErrEmptyCriteria  = errors.New("no search criteria given")
	ErrNoMatch        = errors.New("no records match all criteria")
	ErrStaleSelection = errors.New("selection does not match the current filters")
	ErrNoSelection    = errors.New("no record selected")
	ErrBadIndex       = errors.New("row index out of range")
	ErrUnknownAxis    = schema.ErrUnknownAxis
)

// Code returns a stable machine-readable name for an engine error.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.Is(err, ErrEmptyCriteria):
		return "empty_criteria"
	case errors.Is(err, ErrNoMatch):
		return "no_match"
	case errors.Is(err, ErrStaleSelection):
		return "stale_selection"
	case errors.Is(err, ErrNoSelection):
		return "no_selection"
	case errors.Is(err, ErrBadIndex):
		return "bad_index"
	case errors.Is(err, ErrUnknownAxis):
		return "unknown_axis"
	default:
		return "internal"
	}
}
