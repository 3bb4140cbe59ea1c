package engine

// Search returns the records matching every supplied criterion, in view order.
//
// An empty view reports ErrNoData before the criteria are looked at; criteria
// that are all empty report ErrEmptyCriteria rather than returning everything.
// A search that matches nothing is a successful, empty result.
func Search(view RecordView, c Criteria) (RecordView, error) {
	if view.Len() == 0 {
		return nil, ErrNoData
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCriteria
	}
	m := newMatcher(c)
	return ApplyPredicate(view, m.match), nil
}
