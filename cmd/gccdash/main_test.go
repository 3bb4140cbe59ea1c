package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/gccdash/auth"
	"github.com/spektr-org/gccdash/engine"
)

const testRoster = `[
	{"GCC ID": "G-1", "Associate First Name": "Ann", "Associate Last Name": "Lee", "Status": "Active", "Source": "Vendor A", "Level": "3 - Senior"},
	{"GCC ID": "G-2", "Associate First Name": "Bob", "Associate Last Name": "Ray", "Status": "Inactive", "Source": "Vendor B", "Level": "10 - Lead"},
	{"GCC ID": "G-3", "Associate First Name": "Cy", "Status": "Active", "Source": "Vendor A", "Level": "3 - Senior"}
]`

// run executes the CLI against a temporary dataset and returns its output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "db.json")
	require.NoError(t, os.WriteFile(data, []byte(testRoster), 0o600))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(dir, "none.env"), "--data", data}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSearchText(t *testing.T) {
	out, err := run(t, "", "search", "--source", "vendor a")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 GCC(s) matching the criteria.")
	assert.Contains(t, out, "(Search: Source: vendor a)")
	assert.Contains(t, out, "G-3")
	assert.NotContains(t, out, "G-2")
	assert.Contains(t, out, "G-1 - Ann")
}

func TestSearchNoMatchIsReported(t *testing.T) {
	out, err := run(t, "", "search", "--first-name", "zed", "--format", "json")
	require.ErrorIs(t, err, errReported)

	var got engine.Outcome
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "no_match", got.Code)
}

func TestSearchGCCIDIsExact(t *testing.T) {
	out, err := run(t, "", "search", "--gcc-id", "g-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 GCC(s) matching the criteria.")

	_, err = run(t, "", "search", "--gcc-id", "G")
	require.ErrorIs(t, err, errReported)

	search, _, err := newRootCmd().Find([]string{"search"})
	require.NoError(t, err)
	assert.Equal(t, "GCC ID (exact, case-insensitive)", search.Flags().Lookup("gcc-id").Usage)
	assert.Equal(t, "Specific skill requirements contain", search.Flags().Lookup("skill").Usage)
}

func TestPivotCSV(t *testing.T) {
	out, err := run(t, "", "pivot", "--group-by", "Level", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "Level,Count,Percentage\n10 - Lead,1,33.3%\n3 - Senior,2,66.7%\n", out)
}

func TestPivotFiltersAndDrill(t *testing.T) {
	out, err := run(t, "", "pivot", "--group-by", "Source", "--status", "Active", "--drill", "Vendor A", "--format", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "G-1,Ann Lee"))

	_, err = run(t, "", "pivot", "--group-by", "Manager")
	require.ErrorIs(t, err, errReported)
}

func TestPivotWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pivot.xlsx")
	_, err := run(t, "", "pivot", "--filter", "Source=Vendor A", "--xlsx", path)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "", "export", "--gcc-id", "G-2", "--out-dir", dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "GCC_G-2_Details.csv")
	assert.Equal(t, path+"\n", out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `"GCC ID","Associate First Name"`))

	_, err = run(t, "", "export", "--gcc-id", "G-9", "--out-dir", dir)
	require.Error(t, err)
}

func TestImportCSV(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "roster.csv")
	dst := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(src, []byte("GCC ID,Level\nG-1,3\n"), 0o600))

	out, err := run(t, "", "import", src, "--out", dst)
	require.NoError(t, err)
	assert.Contains(t, out, "Conversion complete. 1 records")

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "[\n    {\n        \"GCC ID\": \"G-1\",\n        \"Level\": 3\n    }\n]", string(data))
}

func TestDiscover(t *testing.T) {
	out, err := run(t, "", "discover", "--format", "json")
	require.NoError(t, err)

	var got discoverOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3, got.Schema.Records)
	assert.Len(t, got.Axes, 5)
	// TSLT and Quarter fields are absent from the fixture.
	assert.Len(t, got.Problems, 2)
}

func TestHashPassword(t *testing.T) {
	out, err := run(t, "hunter2\n", "hash-password")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	require.True(t, auth.IsHash(hash))
	assert.True(t, auth.Credentials{"alice": hash}.Verify("alice", "hunter2"))

	_, err = run(t, "\n", "hash-password")
	require.Error(t, err)
}
