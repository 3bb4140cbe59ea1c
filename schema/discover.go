package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/spektr-org/gccdash/roster"
)

// ============================================================================
// AUTO-DISCOVERY: Heuristic field classification
// ============================================================================
// Inspects a loaded dataset and reports the observed field set.
//
// Classification pipeline per field:
//   1. Collect values → presence, empties, distinct values
//   2. Detect type from value kinds (number, string, bool, epoch date)
//   3. Pattern matching → temporal strings (quarters, months)
//   4. Type + cardinality → groupable or skipped
// ============================================================================

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize int    // Max records to inspect (0 = all)
	Name       string // Dataset name override (otherwise the source location)
	MaxSamples int    // Sample values kept per field. Default: 10
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{MaxSamples: 10}
}

// Discover generates a Config by inspecting a dataset.
func Discover(d *roster.Dataset, opts ...DiscoverOptions) (*Config, error) {
	if d == nil {
		return nil, errors.New("no dataset to discover")
	}
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.MaxSamples <= 0 {
		opt.MaxSamples = 10
	}

	records := d.Records()
	if opt.SampleSize > 0 && len(records) > opt.SampleSize {
		records = records[:opt.SampleSize]
	}

	config := &Config{
		Name:           opt.Name,
		Records:        len(records),
		DiscoveredFrom: d.Source(),
		DiscoveredAt:   time.Now().Format(time.RFC3339),
	}
	if config.Name == "" {
		config.Name = d.Source()
	}

	for _, name := range d.FieldNames() {
		col := analyzeField(name, records, opt.MaxSamples)
		config.Fields = append(config.Fields, col.toMeta())
		if !col.groupable {
			config.SkippedFields = append(config.SkippedFields, SkippedField{
				Field:  name,
				Reason: col.skipReason,
			})
		}
	}
	return config, nil
}

// ============================================================================
// FIELD ANALYSIS
// ============================================================================

type fieldAnalysis struct {
	name       string
	fieldType  string
	groupable  bool
	skipReason string

	present    int
	empty      int
	unique     map[string]bool
	sampleVals []string

	isTemporal      bool
	temporalFormat  string
	cardinalityHint string
}

func analyzeField(name string, records []*roster.Record, maxSamples int) fieldAnalysis {
	col := fieldAnalysis{name: name, unique: make(map[string]bool)}

	kinds := make(map[string]int)
	var strValues []string
	for _, rec := range records {
		v, ok := rec.Get(name)
		if !ok {
			continue
		}
		col.present++
		if v.IsEmpty() {
			col.empty++
			continue
		}
		s := v.String()
		col.unique[s] = true
		kinds[kindOf(name, v)]++
		if v.Kind() == roster.KindString {
			strValues = append(strValues, s)
		}
	}

	col.fieldType = dominantType(kinds)
	col.sampleVals = collectSamples(col.unique, maxSamples)

	switch col.fieldType {
	case "date":
		col.isTemporal = true
		col.temporalFormat = "epoch-ms"
	case "string":
		col.isTemporal, col.temporalFormat = detectTemporalPattern(collectSamples(toSet(strValues), maxSamples))
	}

	col.classify(len(records))

	switch n := len(col.unique); {
	case n <= 10:
		col.cardinalityHint = "low"
	case n <= 100:
		col.cardinalityHint = "medium"
	default:
		col.cardinalityHint = "high"
	}
	return col
}

// classify decides whether the field is a sensible pivot axis.
func (col *fieldAnalysis) classify(total int) {
	distinct := len(col.unique)
	nonEmpty := col.present - col.empty

	switch {
	case nonEmpty == 0:
		col.skipReason = "All values are empty/null"
	case col.fieldType == "raw":
		col.skipReason = "Nested object or array values"
	case col.fieldType == "date":
		col.skipReason = "Timestamp values; one bucket per record"
	case distinct == nonEmpty && total > 10:
		col.skipReason = "Unique per record; likely an identifier or free text"
	case distinct > total/2 && distinct > 50:
		col.skipReason = fmt.Sprintf("High cardinality (%d unique values); not useful for grouping", distinct)
	default:
		col.groupable = true
	}
}

func (col *fieldAnalysis) toMeta() FieldMeta {
	return FieldMeta{
		Name:            col.name,
		Type:            col.fieldType,
		Core:            roster.IsCoreField(col.name),
		Present:         col.present,
		Empty:           col.empty,
		Distinct:        len(col.unique),
		SampleValues:    col.sampleVals,
		Groupable:       col.groupable,
		IsTemporal:      col.isTemporal,
		TemporalFormat:  col.temporalFormat,
		CardinalityHint: col.cardinalityHint,
	}
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

func kindOf(name string, v roster.Value) string {
	switch v.Kind() {
	case roster.KindNumber:
		if roster.IsDateValue(name, v) {
			return "date"
		}
		return "number"
	case roster.KindBool:
		return "bool"
	case roster.KindRaw:
		return "raw"
	case roster.KindString:
		if isNumeric(v.String()) {
			return "number"
		}
		return "string"
	default:
		return "string"
	}
}

// dominantType picks the kind held by 80%+ of non-empty values, else "mixed".
func dominantType(kinds map[string]int) string {
	total := 0
	for _, n := range kinds {
		total += n
	}
	if total == 0 {
		return "string"
	}
	threshold := int(float64(total) * 0.8)
	for _, k := range []string{"date", "number", "bool", "raw", "string"} {
		if kinds[k] > 0 && kinds[k] >= threshold {
			return k
		}
	}
	return "mixed"
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// ============================================================================
// SPECIAL PATTERN DETECTION
// ============================================================================

var temporalPatterns = []struct {
	re     *regexp.Regexp
	format string
}{
	{regexp.MustCompile(`^Q[1-4]-\d{4}$`), "QN-yyyy"},           // Q1-2026
	{regexp.MustCompile(`^Q[1-4]\s+\d{4}$`), "QN yyyy"},         // Q1 2026
	{regexp.MustCompile(`^\d{4}\s*-?\s*Q[1-4]$`), "yyyy QN"},    // 2026 Q1
	{regexp.MustCompile(`^[A-Z][a-z]{2}-\d{4}$`), "MMM-yyyy"},   // Jan-2026
	{regexp.MustCompile(`^\d{4}-\d{2}$`), "yyyy-MM"},            // 2026-01
	{regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`), "M/d/yyyy"}, // 1/15/2026
	{regexp.MustCompile(`^[A-Z][a-z]+ \d{4}$`), "MMMM yyyy"},    // January 2026
}

// detectTemporalPattern checks if values match known date/month/quarter patterns.
func detectTemporalPattern(samples []string) (bool, string) {
	if len(samples) == 0 {
		return false, ""
	}
	for _, pattern := range temporalPatterns {
		matches := 0
		for _, s := range samples {
			if pattern.re.MatchString(strings.TrimSpace(s)) {
				matches++
			}
		}
		if float64(matches)/float64(len(samples)) >= 0.8 {
			return true, pattern.format
		}
	}
	return false, ""
}

// ============================================================================
// HELPERS
// ============================================================================

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// collectSamples picks up to maxSamples values in sorted order.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}
	sort.Strings(samples)
	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
