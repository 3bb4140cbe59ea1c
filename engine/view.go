package engine

import (
	"github.com/spektr-org/gccdash/roster"
)

// ============================================================================
// RECORD VIEW: Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns the dataset. It reads through this interface.
//
// Implementations:
//   SliceView: wraps []*roster.Record (a dataset, or any listing)
//   SubView  : filtered subset (indices into parent, zero-copy)
//
// Filters, groups and drill-downs all produce SubViews over the same records.
// ============================================================================

// RecordView provides indexed access to a sequence of records.
// The engine calls Value in tight loops: keep implementations fast.
type RecordView interface {
	Len() int
	Record(index int) *roster.Record
	// Value returns the string form of a field, empty when absent or null.
	Value(index int, field string) string
}

// ============================================================================
// SLICE VIEW
// ============================================================================

// SliceView wraps a record slice as a RecordView.
type SliceView struct {
	records []*roster.Record
}

// NewSliceView creates a RecordView from a record slice.
func NewSliceView(records []*roster.Record) RecordView {
	return &SliceView{records: records}
}

// DatasetView returns a view over every record of d. A nil dataset is empty.
func DatasetView(d *roster.Dataset) RecordView {
	if d == nil {
		return &SliceView{}
	}
	return &SliceView{records: d.Records()}
}

func (v *SliceView) Len() int { return len(v.records) }

func (v *SliceView) Record(i int) *roster.Record {
	if i < 0 || i >= len(v.records) {
		return nil
	}
	return v.records[i]
}

func (v *SliceView) Value(i int, field string) string {
	if i < 0 || i >= len(v.records) {
		return ""
	}
	return fieldText(v.records[i], field)
}

// ============================================================================
// SUB VIEW: filtered subset (zero-copy)
// ============================================================================

// SubView is a filtered subset of a parent RecordView.
// Holds indices into the parent: no data copy.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Record(i int) *roster.Record {
	if i < 0 || i >= len(v.indices) {
		return nil
	}
	return v.parent.Record(v.indices[i])
}

func (v *SubView) Value(i int, field string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Value(v.indices[i], field)
}

// ============================================================================
// HELPERS
// ============================================================================

// Records copies the records of a view into a slice, in view order.
func Records(view RecordView) []*roster.Record {
	out := make([]*roster.Record, view.Len())
	for i := range out {
		out[i] = view.Record(i)
	}
	return out
}

// fieldText reads core fields from their typed slots and everything else by name.
func fieldText(r *roster.Record, field string) string {
	switch field {
	case roster.FieldGCCID:
		return r.GCCID
	case roster.FieldFirstName:
		return r.FirstName
	case roster.FieldLastName:
		return r.LastName
	case roster.FieldJobRole:
		return r.JobRole
	case roster.FieldLevel:
		return r.Level
	case roster.FieldSkills:
		return r.Skills
	case roster.FieldSkillRequirements:
		return r.SkillRequirements
	case roster.FieldStatus:
		return r.Status
	case roster.FieldSource:
		return r.Source
	case roster.FieldReportingManager:
		return r.ReportingManager
	case roster.FieldTSLTMember:
		return r.TSLTMember
	case roster.FieldOriginalQuarter:
		return r.OriginalQuarter
	default:
		return r.Text(field)
	}
}
