package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAxesResolve(t *testing.T) {
	axes := DefaultAxes()

	a, err := axes.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "Status", a.Field)

	a, err = axes.Resolve("Level")
	require.NoError(t, err)
	assert.Equal(t, "Cognizant Level 1 - 5", a.Field)
	assert.Equal(t, OrderNumeric, a.Order)

	a, err = axes.Resolve("Quarter")
	require.NoError(t, err)
	assert.Equal(t, "Citizens Original Quarter", a.Field)

	_, err = axes.Resolve("Region")
	assert.True(t, errors.Is(err, ErrUnknownAxis))

	// TSLT filters but does not group.
	_, err = axes.Resolve("TSLT")
	assert.ErrorIs(t, err, ErrUnknownAxis)

	names := make([]string, 0)
	for _, g := range axes.Groupable() {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"Status", "Source", "Level", "Quarter"}, names)
	assert.Len(t, axes.Filterable(), 5)
	assert.Equal(t, "All Levels", mustAxis(t, axes, "Level").AllLabel())
}

func mustAxis(t *testing.T, axes *AxisTable, name string) Axis {
	t.Helper()
	a, ok := axes.Get(name)
	require.True(t, ok)
	return a
}

func TestReadAxes(t *testing.T) {
	doc := `
axes:
  - name: Status
    field: Status
    groupable: true
    filterable: true
  - name: Region
    field: Work Location
    groupable: true
    order: alpha
`
	axes, err := ReadAxes(strings.NewReader(doc))
	require.NoError(t, err)
	a, err := axes.Resolve("Region")
	require.NoError(t, err)
	assert.Equal(t, "Work Location", a.Field)
	assert.Equal(t, OrderAlpha, mustAxis(t, axes, "Status").Order)
	assert.Equal(t, "All Region", a.AllLabel())
}

func TestReadAxesRejectsBadTables(t *testing.T) {
	tests := map[string]string{
		"empty":         "axes: []\n",
		"no default":    "axes:\n  - {name: Source, field: Source, groupable: true}\n",
		"duplicate":     "axes:\n  - {name: Status, field: Status}\n  - {name: Status, field: Other}\n",
		"missing field": "axes:\n  - {name: Status}\n",
		"bad order":     "axes:\n  - {name: Status, field: Status, order: random}\n",
		"unknown key":   "axes:\n  - {name: Status, field: Status, colour: red}\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadAxes(strings.NewReader(doc))
			require.Error(t, err)
		})
	}
}

func TestLoadAxesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "axes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("axes:\n  - {name: Status, field: Status, groupable: true}\n"), 0o644))
	axes, err := LoadAxes(path)
	require.NoError(t, err)
	assert.Len(t, axes.Axes, 1)

	_, err = LoadAxes(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidateAgainstObservedFields(t *testing.T) {
	config, err := Discover(mustDataset(t, []byte(`[{"Status":"A","Source":"V","Cognizant Level 1 - 5":"3"}]`)))
	require.NoError(t, err)

	err = DefaultAxes().Validate(config)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []AxisProblem{
		{Axis: "TSLT", Field: "TSLT Member"},
		{Axis: "Quarter", Field: "Citizens Original Quarter"},
	}, verr.Problems)
	assert.Contains(t, err.Error(), "Quarter -> Citizens Original Quarter")

	empty, err := Discover(mustDataset(t, []byte(`[]`)))
	require.NoError(t, err)
	assert.NoError(t, DefaultAxes().Validate(empty))
}
