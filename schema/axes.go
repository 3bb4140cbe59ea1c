package schema

import (
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/gccdash/roster"
)

// ============================================================================
// AXES: logical axis name → record field
// ============================================================================
// The pivot offers a small, fixed set of named axes ("Level", "Quarter", ...)
// that map onto spreadsheet column names. The mapping is an explicit table,
// loadable from YAML and checked against the fields a dataset actually has.
// ============================================================================

// ErrUnknownAxis is returned when an axis name is not in the table.
var ErrUnknownAxis = errors.New("unknown axis")

// DefaultAxis is the grouping axis used when none is given.
const DefaultAxis = "Status"

// Axis orderings for filter option lists.
const (
	OrderAlpha   = "alpha"   // plain string order
	OrderNumeric = "numeric" // by leading number, unparseable values last
)

// Axis maps one logical name onto a record field.
type Axis struct {
	Name       string `yaml:"name" json:"name"`
	Field      string `yaml:"field" json:"field"`
	Groupable  bool   `yaml:"groupable" json:"groupable"`
	Filterable bool   `yaml:"filterable" json:"filterable"`
	Order      string `yaml:"order,omitempty" json:"order,omitempty"`
	Label      string `yaml:"label,omitempty" json:"label,omitempty"` // "All <label>" option text
}

// AllLabel is the text of the "no filter" option, e.g. "All Levels".
func (a Axis) AllLabel() string {
	if a.Label != "" {
		return "All " + a.Label
	}
	return "All " + a.Name
}

// AxisTable is the ordered set of configured axes.
type AxisTable struct {
	Axes []Axis `yaml:"axes" json:"axes"`
}

// DefaultAxes returns the built-in table.
func DefaultAxes() *AxisTable {
	return &AxisTable{Axes: []Axis{
		{Name: "Status", Field: roster.FieldStatus, Groupable: true, Filterable: true, Order: OrderAlpha, Label: "Statuses"},
		{Name: "Source", Field: roster.FieldSource, Groupable: true, Filterable: true, Order: OrderAlpha, Label: "Sources"},
		{Name: "Level", Field: roster.FieldLevel, Groupable: true, Filterable: true, Order: OrderNumeric, Label: "Levels"},
		{Name: "TSLT", Field: roster.FieldTSLTMember, Groupable: false, Filterable: true, Order: OrderAlpha, Label: "TSLT"},
		{Name: "Quarter", Field: roster.FieldOriginalQuarter, Groupable: true, Filterable: true, Order: OrderAlpha, Label: "Quarters"},
	}}
}

// LoadAxes reads an axis table from a YAML file.
func LoadAxes(path string) (*AxisTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open axes file")
	}
	defer f.Close()
	return ReadAxes(f)
}

// ReadAxes decodes an axis table from YAML and checks it for internal consistency.
func ReadAxes(r io.Reader) (*AxisTable, error) {
	var t AxisTable
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, errors.Wrap(err, "decode axes")
	}
	for i := range t.Axes {
		if t.Axes[i].Order == "" {
			t.Axes[i].Order = OrderAlpha
		}
	}
	if err := t.check(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *AxisTable) check() error {
	if len(t.Axes) == 0 {
		return errors.New("axis table is empty")
	}
	seen := make(map[string]bool)
	for _, a := range t.Axes {
		if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Field) == "" {
			return errors.Errorf("axis %q: name and field are required", a.Name)
		}
		if seen[a.Name] {
			return errors.Errorf("axis %q defined twice", a.Name)
		}
		seen[a.Name] = true
		if a.Order != OrderAlpha && a.Order != OrderNumeric {
			return errors.Errorf("axis %q: unknown order %q", a.Name, a.Order)
		}
	}
	if _, ok := t.Get(DefaultAxis); !ok {
		return errors.Errorf("axis table must define %q", DefaultAxis)
	}
	return nil
}

// Get returns the axis with the given name.
func (t *AxisTable) Get(name string) (Axis, bool) {
	for _, a := range t.Axes {
		if a.Name == name {
			return a, true
		}
	}
	return Axis{}, false
}

// Resolve maps a grouping name to its axis. An empty name means DefaultAxis;
// any other name must be a groupable axis of the table.
func (t *AxisTable) Resolve(name string) (Axis, error) {
	if name == "" {
		name = DefaultAxis
	}
	a, ok := t.Get(name)
	if !ok || !a.Groupable {
		return Axis{}, errors.Wrapf(ErrUnknownAxis, "%q", name)
	}
	return a, nil
}

// Groupable returns the axes offered for grouping, in table order.
func (t *AxisTable) Groupable() []Axis {
	var out []Axis
	for _, a := range t.Axes {
		if a.Groupable {
			out = append(out, a)
		}
	}
	return out
}

// Filterable returns the axes offered as filters, in table order.
func (t *AxisTable) Filterable() []Axis {
	var out []Axis
	for _, a := range t.Axes {
		if a.Filterable {
			out = append(out, a)
		}
	}
	return out
}

// AxisProblem is one axis whose field the dataset does not carry.
type AxisProblem struct {
	Axis  string `json:"axis"`
	Field string `json:"field"`
}

// ValidationError lists every axis mapped to an unobserved field.
type ValidationError struct {
	Problems []AxisProblem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.Axis + " -> " + p.Field
	}
	return "axes mapped to fields not present in the dataset: " + strings.Join(parts, ", ")
}

// Validate checks every axis against the observed field set.
// An empty dataset observes no fields and is not validated.
func (t *AxisTable) Validate(c *Config) error {
	if c == nil || c.Records == 0 {
		return nil
	}
	var problems []AxisProblem
	for _, a := range t.Axes {
		if !c.Has(a.Field) {
			problems = append(problems, AxisProblem{Axis: a.Name, Field: a.Field})
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
