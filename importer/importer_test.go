package importer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/gccdash/roster"
)

var fixedNow = time.Date(2025, 10, 13, 10, 25, 0, 0, time.UTC)

// workbook builds an xlsx file with the given sheets, each a list of rows.
func workbook(t *testing.T, sheets map[string][][]interface{}, order ...string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func rosterSheets() map[string][][]interface{} {
	return map[string][][]interface{}{
		"Summary": {
			{"Nothing", "here"},
		},
		"Base Data": {
			{"GCC ID", "Associate First Name", "Level", "Start Date", "Active", "Notes"},
			{"G-1", "Ann", 3, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true, "first"},
			{"007", "Bob", 2.5, nil, false, nil},
			{nil, nil, nil, nil, nil, nil},
			{"G-3", "", "4 - Lead", "TBD", nil, "last"},
		},
	}
}

func texts(t *testing.T, records []*roster.Record, field string) []string {
	t.Helper()
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Text(field)
	}
	return out
}

func TestReadXLSX(t *testing.T) {
	data := workbook(t, rosterSheets(), "Summary", "Base Data")

	records, err := ReadXLSX(bytes.NewReader(data), DefaultSheet, false)
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, []string{"GCC ID", "Associate First Name", "Level", "Start Date", "Active", "Notes"}, first.Names())
	level, _ := first.Get("Level")
	assert.Equal(t, roster.KindNumber, level.Kind())
	start, _ := first.Get("Start Date")
	ms, ok := start.Float()
	require.True(t, ok)
	assert.Equal(t, float64(1704067200000), ms)
	active, _ := first.Get("Active")
	assert.Equal(t, roster.KindBool, active.Kind())
	assert.Equal(t, "true", active.String())

	// Text that looks numeric stays text.
	id, _ := records[1].Get("GCC ID")
	assert.Equal(t, roster.KindString, id.Kind())
	assert.Equal(t, "007", id.String())
	notes, _ := records[1].Get("Notes")
	assert.True(t, notes.IsNull())

	assert.Equal(t, []string{"3", "2.5", "4 - Lead"}, texts(t, records, "Level"))
	assert.Equal(t, []string{"1704067200000", "", "TBD"}, texts(t, records, "Start Date"))
	name, _ := records[2].Get("Associate First Name")
	assert.True(t, name.IsNull())
}

func TestReadXLSXDatesFollowNumberFormat(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", DefaultSheet))
	row := []interface{}{"Date Count", "Hired", "Review", "Score"}
	require.NoError(t, f.SetSheetRow(DefaultSheet, "A1", &row))
	row = []interface{}{5, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 45352, 45352}
	require.NoError(t, f.SetSheetRow(DefaultSheet, "A2", &row))

	code := `dd/mm/yyyy;@`
	custom, err := f.NewStyle(&excelize.Style{CustomNumFmt: &code})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(DefaultSheet, "C2", "C2", custom))
	decimals := 2
	plain, err := f.NewStyle(&excelize.Style{NumFmt: 2, DecimalPlaces: &decimals})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(DefaultSheet, "D2", "D2", plain))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	records, err := ReadXLSX(bytes.NewReader(buf.Bytes()), DefaultSheet, true)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "5", records[0].Text("Date Count"))
	assert.Equal(t, "1709251200000", records[0].Text("Hired"))
	assert.Equal(t, "1709251200000", records[0].Text("Review"))
	assert.Equal(t, "45352", records[0].Text("Score"))
}

func TestIsDateFormat(t *testing.T) {
	for code, want := range map[string]bool{
		"General":            false,
		"#,##0.00":           false,
		"0.00E+00":           false,
		`0 "days"`:           false,
		"[Red]#,##0":         false,
		"yyyy-mm-dd":         true,
		"[$-409]mmm d, yyyy": true,
		"h:mm AM/PM":         true,
		"[h]:mm":             true,
	} {
		assert.Equal(t, want, isDateFormat(code), code)
	}
	assert.True(t, isDateNumFmt(14))
	assert.True(t, isDateNumFmt(22))
	assert.False(t, isDateNumFmt(2))
}

func TestReadXLSXSheetSelection(t *testing.T) {
	data := workbook(t, map[string][][]interface{}{
		"Export": {{"GCC ID"}, {"X-1"}},
	}, "Export")

	records, err := ReadXLSX(bytes.NewReader(data), DefaultSheet, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"X-1"}, texts(t, records, "GCC ID"))

	_, err = ReadXLSX(bytes.NewReader(data), DefaultSheet, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Base Data"`)
}

func TestReadXLSXHeaders(t *testing.T) {
	data := workbook(t, map[string][][]interface{}{
		"Base Data": {{"Name", nil, "Name", " Name "}, {"a", "b", "c", "d"}},
	}, "Base Data")

	records, err := ReadXLSX(bytes.NewReader(data), DefaultSheet, false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"Name", "Unnamed: 1", "Name.1", "Name.2"}, records[0].Names())
}

func TestReadCSV(t *testing.T) {
	data := "\ufeffGCC ID,Associate First Name,Level,Score\n" +
		"007,\"Lee, Ann\",3,1.5\n" +
		",,,\n" +
		"G-2,Bob,Senior,\n"

	records, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"GCC ID", "Associate First Name", "Level", "Score"}, records[0].Names())
	assert.Equal(t, []string{"007", "G-2"}, texts(t, records, "GCC ID"))
	assert.Equal(t, "Lee, Ann", records[0].FirstName)

	// Level mixes numbers and text, so it stays text; Score is numeric.
	level, _ := records[0].Get("Level")
	assert.Equal(t, roster.KindString, level.Kind())
	score, _ := records[0].Get("Score")
	assert.Equal(t, roster.KindNumber, score.Kind())
	missing, _ := records[1].Get("Score")
	assert.True(t, missing.IsNull())
}

func TestReadCSVEmpty(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.json")

	archived, err := Archive(path, fixedNow)
	require.NoError(t, err)
	assert.Empty(t, archived)

	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))
	archived, err = Archive(path, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "db_20251013_102500.json"), archived)
	assert.NoFileExists(t, path)
	assert.FileExists(t, archived)
}

func newTestImporter(t *testing.T, downloads string, opts ...Option) *Importer {
	t.Helper()
	log, _ := test.NewNullLogger()
	base := []Option{WithDownloadsDir(downloads), WithClock(func() time.Time { return fixedNow }), WithLogger(log)}
	return New(append(base, opts...)...)
}

func TestImport(t *testing.T) {
	downloads := t.TempDir()
	work := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(downloads, "roster.xlsx"), workbook(t, rosterSheets(), "Summary", "Base Data"), 0o600))
	out := filepath.Join(work, "db.json")
	require.NoError(t, os.WriteFile(out, []byte(`[{"old": true}]`), 0o600))

	res, err := newTestImporter(t, downloads).Import("roster.xlsx", out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(downloads, "roster.xlsx"), res.Source)
	assert.Equal(t, filepath.Join(work, "db_20251013_102500.json"), res.Archived)
	assert.Equal(t, 3, res.Records)

	old, err := os.ReadFile(res.Archived)
	require.NoError(t, err)
	assert.Equal(t, `[{"old": true}]`, string(old))

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(written), "[\n    {\n        \"GCC ID\": \"G-1\",\n        \"Associate First Name\": \"Ann\",\n        \"Level\": 3,\n        \"Start Date\": 1704067200000,"))

	records, err := roster.DecodeRecords(written)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "G-1", records[0].GCCID)
	assert.Equal(t, "4 - Lead", records[2].Level)
}

func TestImportFailureKeepsExistingOutput(t *testing.T) {
	work := t.TempDir()
	src := filepath.Join(work, "roster.xlsx")
	require.NoError(t, os.WriteFile(src, workbook(t, rosterSheets(), "Summary", "Base Data"), 0o600))
	out := filepath.Join(work, "db.json")
	require.NoError(t, os.WriteFile(out, []byte(`[]`), 0o600))

	_, err := newTestImporter(t, "", WithSheet("Missing")).Import(src, out)
	require.Error(t, err)
	assert.FileExists(t, out)

	_, err = newTestImporter(t, "").Import("nope.xlsx", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "was not found")
}

func TestImportUnsupportedFormat(t *testing.T) {
	work := t.TempDir()
	src := filepath.Join(work, "roster.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o600))

	_, err := newTestImporter(t, "").Read(src)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
