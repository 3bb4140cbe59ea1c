package engine

import (
	"strings"
)

// ============================================================================
// FILTERS: single-pass filtering via RecordView
// ============================================================================
// Every function checks ALL constraints per record in one loop and returns a
// SubView (index list into parent): zero data copy. Order is preserved.
// ============================================================================

// Filters map a record field to the exact value it must have.
type Filters map[string]string

// IsEmpty returns true if no filter restricts anything.
func (f Filters) IsEmpty() bool {
	for _, v := range f {
		if v != "" {
			return false
		}
	}
	return true
}

// ApplyFilters returns a view of records whose fields equal every non-empty
// filter value. Comparison is exact on the string form of the field value.
func ApplyFilters(view RecordView, filters Filters) RecordView {
	if filters.IsEmpty() {
		return view
	}

	type constraint struct{ field, want string }
	active := make([]constraint, 0, len(filters))
	for field, want := range filters {
		if want != "" {
			active = append(active, constraint{field, want})
		}
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pass := true
		for _, c := range active {
			if view.Value(i, c.field) != c.want {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}
	return newSubView(view, indices)
}

// ApplyPredicate returns a view of records for which keep returns true.
func ApplyPredicate(view RecordView, keep func(view RecordView, i int) bool) RecordView {
	n := view.Len()
	indices := make([]int, 0)
	for i := 0; i < n; i++ {
		if keep(view, i) {
			indices = append(indices, i)
		}
	}
	return newSubView(view, indices)
}

// ============================================================================
// SEARCH MATCHING
// ============================================================================

// matcher holds lowercased search terms.
type matcher struct {
	gccID, firstName, lastName, skill, source string
}

func newMatcher(c Criteria) matcher {
	c = c.Trim()
	return matcher{
		gccID:     strings.ToLower(c.GCCID),
		firstName: strings.ToLower(c.FirstName),
		lastName:  strings.ToLower(c.LastName),
		skill:     strings.ToLower(c.Skill),
		source:    strings.ToLower(c.Source),
	}
}

// match checks every supplied term: GCC ID by case-insensitive equality, the
// rest by case-insensitive containment. Skill is matched against
// "Specific Skill Requirements", not the abbreviated "Skills" field.
func (m matcher) match(view RecordView, i int) bool {
	r := view.Record(i)
	if m.gccID != "" && strings.ToLower(r.GCCID) != m.gccID {
		return false
	}
	if m.firstName != "" && !strings.Contains(strings.ToLower(r.FirstName), m.firstName) {
		return false
	}
	if m.lastName != "" && !strings.Contains(strings.ToLower(r.LastName), m.lastName) {
		return false
	}
	if m.skill != "" && !strings.Contains(strings.ToLower(r.SkillRequirements), m.skill) {
		return false
	}
	if m.source != "" && !strings.Contains(strings.ToLower(r.Source), m.source) {
		return false
	}
	return true
}
