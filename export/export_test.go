package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/gccdash/engine"
	"github.com/spektr-org/gccdash/roster"
	"github.com/spektr-org/gccdash/schema"
)

func record(t *testing.T, data string) *roster.Record {
	t.Helper()
	records, err := roster.DecodeRecords([]byte(data))
	require.NoError(t, err)
	require.Len(t, records, 1)
	return records[0]
}

func TestFormatRecordCSVStripsHeaderCommas(t *testing.T) {
	r := record(t, `[{"GCC ID": 7, "First, Name": "X"}]`)

	got := FormatRecordCSV(r, roster.DefaultDateFormat())
	assert.Equal(t, "\"GCC ID\",\"First Name\"\n\"7\",\"X\"", got)
	assert.Equal(t, "GCC_7_Details.csv", RecordFilename(r, ".csv"))
}

func TestRecordFilenameStripsSeparators(t *testing.T) {
	r := record(t, `[{"GCC ID": "../..\\x/y"}]`)
	name := RecordFilename(r, ".xlsx")
	assert.Equal(t, "GCC_.._.._x_y_Details.xlsx", name)
	assert.Equal(t, name, filepath.Base(filepath.Join("out", name)))
}

func TestFormatRecordCSVValues(t *testing.T) {
	r := record(t, `[{
		"GCC ID": "A1",
		"Say \"hi\"": "He said \"yes\", then left",
		"Manager": null,
		"Empty": "",
		"Start Date": 1704067200000,
		"Badge": 1704067200000,
		"Level": 3.5,
		"Active": true
	}]`)

	got := FormatRecordCSV(r, roster.DefaultDateFormat())
	assert.Equal(t,
		`"GCC ID","Say ""hi""","Manager","Empty","Start Date","Badge","Level","Active"`+"\n"+
			`"A1","He said ""yes"", then left","N/A","","1/1/2024","1704067200000","3.5","true"`,
		got)
}

func TestFormatRecordCSVDateLocation(t *testing.T) {
	r := record(t, `[{"Join Date": 1704070800000}]`)

	df := roster.DateFormat{Layout: "1/2/2006", Location: time.FixedZone("UTC-2", -2*3600)}
	assert.Equal(t, "\"Join Date\"\n\"12/31/2023\"", FormatRecordCSV(r, df))
}

func TestWriteRecordCSVRequiresSelection(t *testing.T) {
	var buf bytes.Buffer
	err := WriteRecordCSV(&buf, nil, roster.DefaultDateFormat())
	require.ErrorIs(t, err, engine.ErrNoSelection)
	assert.Zero(t, buf.Len())
}

func TestWriteRecordXLSX(t *testing.T) {
	r := record(t, `[{"GCC ID": "A1", "Level": 3, "Manager": null, "Start Date": 1704067200000}]`)

	var buf bytes.Buffer
	require.NoError(t, WriteRecordXLSX(&buf, r, roster.DefaultDateFormat()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Details"}, f.GetSheetList())
	rows, err := f.GetRows("Details")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"GCC ID", "Level", "Manager", "Start Date"},
		{"A1", "3", "N/A", "1/1/2024"},
	}, rows)
}

func TestWritePivotXLSX(t *testing.T) {
	records, err := roster.DecodeRecords([]byte(`[{"Status":"Active","Source":"A"},{"Status":"Inactive","Source":"A"},{"Status":"Active","Source":"B"}]`))
	require.NoError(t, err)
	view := engine.DatasetView(roster.NewDataset(records, "t", time.Time{}))

	result, err := engine.Pivot(view, engine.Selection{Grouping: "Status", Filters: map[string]string{"Source": "A"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePivotXLSX(&buf, result, schema.DefaultAxes()))
	assert.Equal(t, "GCC_Pivot_Status.xlsx", PivotFilename(result))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Pivot")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 10)
	assert.Equal(t, []string{"Status", "Count", "Percentage"}, rows[0])
	assert.Equal(t, []string{"Active", "1", "50.0%"}, rows[1])
	assert.Equal(t, []string{"Inactive", "1", "50.0%"}, rows[2])
	assert.Equal(t, []string{"Total", "2"}, rows[3])
	assert.Equal(t, []string{"Filter", "Value"}, rows[5])
	assert.Equal(t, []string{"Status", "All Statuses"}, rows[6])
	assert.Equal(t, []string{"Source", "A"}, rows[7])

	require.ErrorIs(t, WritePivotXLSX(&buf, nil, schema.DefaultAxes()), engine.ErrNoData)
}
