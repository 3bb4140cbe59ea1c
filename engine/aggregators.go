package engine

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/spektr-org/gccdash/roster"
)

// ============================================================================
// AGGREGATORS: Grouping, Counting, and Sorting via RecordView
// ============================================================================
// Grouping produces SubViews (index lists into parent view).
// Pipeline: group → count → percentage → sort.
// ============================================================================

// GroupAndCount groups a view by a field and counts each bucket.
// Records whose field is absent, null or empty go under the N/A key.
func GroupAndCount(view RecordView, field string, lang language.Tag) []Group {
	if view.Len() == 0 {
		return nil
	}

	groups := groupBySingle(view, field)

	total := view.Len()
	for i := range groups {
		groups[i].Count = groups[i].View.Len()
		groups[i].Percentage = Percentage(groups[i].Count, total)
	}

	SortGroups(groups, lang)
	return groups
}

// ============================================================================
// GROUPING
// ============================================================================

// BucketKey is the key a record falls under when grouping by field.
func BucketKey(view RecordView, i int, field string) string {
	return roster.OrNA(view.Value(i, field))
}

func groupBySingle(view RecordView, field string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := BucketKey(view, i, field)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:  key,
			View: newSubView(view, grouped[key]),
		})
	}
	return groups
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups sorts buckets by key, ascending, with locale-aware collation.
// Keys the collator considers equal are ordered by bytes so the result is
// deterministic.
func SortGroups(groups []Group, lang language.Tag) {
	// Collators are not safe for concurrent use; build one per sort.
	c := collate.New(lang)
	sort.SliceStable(groups, func(i, j int) bool {
		return collateLess(c, groups[i].Key, groups[j].Key)
	})
}

func collateLess(c *collate.Collator, a, b string) bool {
	if r := c.CompareString(a, b); r != 0 {
		return r < 0
	}
	return a < b
}

var leadingNumber = regexp.MustCompile(`^\s*[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// LeadingNumber parses the numeric prefix of s ("3 - Senior" → 3).
// Zero and unparseable prefixes report false.
func LeadingNumber(s string) (float64, bool) {
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
	if err != nil || f == 0 || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// SortNumeric orders values by leading number; values without one sort last.
// Ties fall back to string order.
func SortNumeric(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		a, aok := LeadingNumber(values[i])
		b, bok := LeadingNumber(values[j])
		switch {
		case aok && bok && a != b:
			return a < b
		case aok != bok:
			return aok
		default:
			return values[i] < values[j]
		}
	})
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// Percentage returns 100 × part / total rounded to one decimal; 0 when total is 0.
func Percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return RoundTo1(float64(part) / float64(total) * 100)
}

// RoundTo1 rounds to 1 decimal place.
func RoundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

// FormatPercent renders 12.5 as "12.5%".
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}

// Truncate cuts s to n runes and appends "..." when it was longer.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// UniqueValues returns the distinct non-empty values of a field, in first-seen order.
func UniqueValues(view RecordView, field string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Value(i, field)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}
