package schema

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/gccdash/roster"
)

// ============================================================================
// DISCOVERY TESTS
// ============================================================================

// rosterJSON builds n records with a unique id, a low-cardinality status, an
// epoch-ms start date, a quarter string and a sparse comment.
func rosterJSON(n int) []byte {
	var b strings.Builder
	b.WriteString("[")
	statuses := []string{"Active", "Inactive", "On Hold"}
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"GCC ID":"G%03d","Status":%q,"Cognizant Level 1 - 5":%d,"Start Date":%d,"Citizens Original Quarter":"Q%d-2025","Skills":["go"]`,
			i, statuses[i%3], i%5+1, int64(1700000000000)+int64(i)*86400000, i%4+1)
		if i%2 == 0 {
			b.WriteString(`,"Comment":null`)
		}
		b.WriteString("}")
	}
	b.WriteString("]")
	return []byte(b.String())
}

func mustDataset(t *testing.T, data []byte) *roster.Dataset {
	t.Helper()
	records, err := roster.DecodeRecords(data)
	require.NoError(t, err)
	return roster.NewDataset(records, "test.json", time.Now())
}

func TestDiscoverRoster(t *testing.T) {
	config, err := Discover(mustDataset(t, rosterJSON(12)))
	require.NoError(t, err)

	assert.Equal(t, 12, config.Records)
	assert.Equal(t, "test.json", config.Name)
	assert.Equal(t,
		[]string{"GCC ID", "Status", "Cognizant Level 1 - 5", "Start Date", "Citizens Original Quarter", "Skills", "Comment"},
		config.FieldNames())

	status, ok := config.Field("Status")
	require.True(t, ok)
	assert.True(t, status.Groupable)
	assert.True(t, status.Core)
	assert.Equal(t, "string", status.Type)
	assert.Equal(t, 3, status.Distinct)
	assert.Equal(t, []string{"Active", "Inactive", "On Hold"}, status.SampleValues)
	assert.Equal(t, "low", status.CardinalityHint)

	level, _ := config.Field("Cognizant Level 1 - 5")
	assert.Equal(t, "number", level.Type)
	assert.True(t, level.Groupable)

	start, _ := config.Field("Start Date")
	assert.Equal(t, "date", start.Type)
	assert.True(t, start.IsTemporal)
	assert.False(t, start.Groupable)

	quarter, _ := config.Field("Citizens Original Quarter")
	assert.True(t, quarter.IsTemporal)
	assert.Equal(t, "QN-yyyy", quarter.TemporalFormat)

	id, _ := config.Field("GCC ID")
	assert.False(t, id.Groupable, "unique per record")

	comment, _ := config.Field("Comment")
	assert.Equal(t, 6, comment.Present)
	assert.Equal(t, 6, comment.Empty)
	assert.False(t, comment.Groupable)

	skills, _ := config.Field("Skills")
	assert.Equal(t, "raw", skills.Type)

	skipped := make(map[string]string)
	for _, s := range config.SkippedFields {
		skipped[s.Field] = s.Reason
	}
	assert.Contains(t, skipped, "GCC ID")
	assert.Contains(t, skipped, "Comment")
	assert.NotContains(t, skipped, "Status")
}

func TestDiscoverSampleSize(t *testing.T) {
	config, err := Discover(mustDataset(t, rosterJSON(30)), DiscoverOptions{SampleSize: 5, Name: "roster"})
	require.NoError(t, err)
	assert.Equal(t, 5, config.Records)
	assert.Equal(t, "roster", config.Name)
}

func TestDiscoverNilDataset(t *testing.T) {
	_, err := Discover(nil)
	require.Error(t, err)
}

func TestDetectTemporalPattern(t *testing.T) {
	tests := []struct {
		samples []string
		want    string
	}{
		{[]string{"Q1-2025", "Q2-2025"}, "QN-yyyy"},
		{[]string{"Q3 2024", "Q4 2024"}, "QN yyyy"},
		{[]string{"2024 Q3", "2024-Q4"}, "yyyy QN"},
		{[]string{"Jan-2026", "Feb-2026"}, "MMM-yyyy"},
		{[]string{"1/15/2026"}, "M/d/yyyy"},
	}
	for _, tt := range tests {
		ok, format := detectTemporalPattern(tt.samples)
		assert.True(t, ok, tt.samples)
		assert.Equal(t, tt.want, format)
	}

	ok, _ := detectTemporalPattern([]string{"Active", "Q1-2025"})
	assert.False(t, ok)
}
