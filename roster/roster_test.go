package roster

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/gccdash/resource"
)

func TestDecodeRecordsPreservesOrderAndKinds(t *testing.T) {
	data := []byte(`[
		{"GCC ID": "1", "Associate First Name": "Ann", "Start Date": 1700000000000, "Level": 3, "Active": true, "Manager": null, "Tags": ["a","b"]},
		{"Status": "Inactive", "GCC ID": 2}
	]`)

	records, err := DecodeRecords(data)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, []string{"GCC ID", "Associate First Name", "Start Date", "Level", "Active", "Manager", "Tags"}, first.Names())
	assert.Equal(t, "1", first.GCCID)
	assert.Equal(t, "Ann", first.FirstName)

	v, ok := first.Get("Start Date")
	require.True(t, ok)
	assert.Equal(t, KindNumber, v.Kind())
	assert.Equal(t, "1700000000000", v.String())

	v, _ = first.Get("Active")
	assert.Equal(t, KindBool, v.Kind())
	v, ok = first.Get("Manager")
	require.True(t, ok)
	assert.True(t, v.IsNull())
	v, _ = first.Get("Tags")
	assert.Equal(t, KindRaw, v.Kind())
	assert.Equal(t, `["a","b"]`, v.String())

	assert.Equal(t, "2", records[1].GCCID)
	assert.Equal(t, "Inactive", records[1].Status)
	assert.Contains(t, first.Extra, "Start Date")
	assert.NotContains(t, first.Extra, FieldGCCID)
}

func TestDecodeRecordsUnescapesStrings(t *testing.T) {
	records, err := DecodeRecords([]byte(`[{"Skills": "Go \"and\" SQL\nplus é"}]`))
	require.NoError(t, err)
	assert.Equal(t, "Go \"and\" SQL\nplus é", records[0].Skills)
}

func TestDecodeRecordsDuplicateKeyKeepsFirstPosition(t *testing.T) {
	records, err := DecodeRecords([]byte(`[{"Status": "A", "GCC ID": "1", "Status": "B"}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Status", "GCC ID"}, records[0].Names())
	assert.Equal(t, "B", records[0].Status)
}

func TestDecodeRecordsEmptyArray(t *testing.T) {
	records, err := DecodeRecords([]byte(" [] "))
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)
}

func TestDecodeRecordsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"object", `{"GCC ID": "1"}`},
		{"malformed", `[{"GCC ID": "1"`},
		{"scalar element", `[{"GCC ID": "1"}, 5]`},
		{"string", `"[]"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecords([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestRecordMarshalJSONKeepsOrder(t *testing.T) {
	rec := NewRecord([]Field{
		{Name: "Z", Value: StringValue("last")},
		{Name: "A", Value: NumberValue(1.5)},
		{Name: "M", Value: NullValue()},
	})
	data, err := rec.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"Z":"last","A":1.5,"M":null}`, string(data))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "", NullValue().String())
	assert.Equal(t, "3", NumberValue(3).String())
	assert.Equal(t, "3.5", NumberValue(3.5).String())
	assert.Equal(t, "1e+21", NumberValue(1e21).String())
	assert.Equal(t, "1e-7", NumberValue(1e-7).String())
	assert.Equal(t, "-2.5e-8", NumberValue(-2.5e-8).String())
	assert.Equal(t, "1.5e+300", NumberValue(1.5e300).String())
	assert.Equal(t, "false", BoolValue(false).String())
	assert.True(t, StringValue("").IsEmpty())
	assert.False(t, NumberValue(0).IsEmpty())
}

func TestDisplayValue(t *testing.T) {
	df := DefaultDateFormat()
	// 2023-11-14T22:13:20Z
	assert.Equal(t, "11/14/2023", DisplayValue("Start Date", NumberValue(1700000000000), df))
	assert.Equal(t, "1700000000000", DisplayValue("Start", NumberValue(1700000000000), df))
	assert.Equal(t, "12", DisplayValue("Start Date", NumberValue(12), df))
	assert.Equal(t, NotAvailable, DisplayValue("Skills", StringValue(""), df))
	assert.Equal(t, NotAvailable, DisplayValue("Skills", NullValue(), df))
	assert.Equal(t, "0", DisplayValue("Level", NumberValue(0), df))

	tokyo := time.FixedZone("JST", 9*60*60)
	assert.Equal(t, "11/15/2023", DisplayValue("End Date", NumberValue(1700000000000), DateFormat{Location: tokyo}))
}

func TestDatasetFieldNamesAndLookup(t *testing.T) {
	records, err := DecodeRecords([]byte(`[{"GCC ID":"A1","Status":"x"},{"GCC ID":"b2","Source":"y"}]`))
	require.NoError(t, err)
	d := NewDataset(records, "mem", time.Unix(0, 0))

	assert.Equal(t, []string{"GCC ID", "Status", "Source"}, d.FieldNames())
	rec, ok := d.FindByGCCID(" B2 ")
	require.True(t, ok)
	assert.Equal(t, "y", rec.Source)
	_, ok = d.FindByGCCID("zz")
	assert.False(t, ok)

	var buf bytes.Buffer
	require.NoError(t, d.WriteJSON(&buf, ""))
	assert.Equal(t, `[{"GCC ID":"A1","Status":"x"},{"GCC ID":"b2","Source":"y"}]`, buf.String())
}

func TestLoadDistinguishesFailureFromEmpty(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(empty, []byte("[]"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte(`{"users":{}}`), 0o644))

	d, err := Load(context.Background(), resource.NewFile(empty), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, d.Len())

	_, err = Load(context.Background(), resource.NewFile(bad), time.Now())
	require.Error(t, err)
	assert.True(t, resource.IsLoadError(err))
	assert.ErrorIs(t, err, ErrNotArray)

	_, err = Load(context.Background(), resource.NewFile(filepath.Join(dir, "missing.json")), time.Now())
	assert.True(t, resource.IsLoadError(err))
}
