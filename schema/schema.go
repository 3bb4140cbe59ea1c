package schema

// ============================================================================
// SCHEMA: Describes the observed shape of a roster dataset
// ============================================================================
// Records are not schema-fixed: beyond the core fields a spreadsheet export can
// carry any number of extra columns. Discovery walks the dataset once and
// reports every field it saw, how often, and whether it is a sensible pivot
// axis. The axis table (axes.go) is validated against this field set.
// ============================================================================

// Config describes the complete observed shape of a dataset.
type Config struct {
	Name           string      `json:"name"`
	Records        int         `json:"records"`
	Fields         []FieldMeta `json:"fields"`
	DiscoveredFrom string      `json:"discoveredFrom,omitempty"`
	DiscoveredAt   string      `json:"discoveredAt,omitempty"`

	// Fields that are not useful pivot axes
	SkippedFields []SkippedField `json:"skippedFields,omitempty"`
}

// FieldMeta describes one field as observed across the dataset.
type FieldMeta struct {
	Name            string   `json:"name"`
	Type            string   `json:"type"` // "string", "number", "date", "bool", "mixed", "raw"
	Core            bool     `json:"core"`
	Present         int      `json:"present"` // records that carry the field at all
	Empty           int      `json:"empty"`   // of those, null or ""
	Distinct        int      `json:"distinct"`
	SampleValues    []string `json:"sampleValues"`
	Groupable       bool     `json:"groupable"`
	IsTemporal      bool     `json:"isTemporal,omitempty"`
	TemporalFormat  string   `json:"temporalFormat,omitempty"`
	CardinalityHint string   `json:"cardinalityHint,omitempty"` // "low", "medium", "high"
}

// SkippedField records why a field was not offered as an axis.
type SkippedField struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Has reports whether the field was observed in any record.
func (c Config) Has(name string) bool {
	_, ok := c.Field(name)
	return ok
}

// Field returns the metadata of a field.
func (c Config) Field(name string) (FieldMeta, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldMeta{}, false
}

// FieldNames returns all observed field names in first-seen order.
func (c Config) FieldNames() []string {
	names := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		names[i] = f.Name
	}
	return names
}

// GroupableFields returns the names of fields suitable as pivot axes.
func (c Config) GroupableFields() []string {
	var names []string
	for _, f := range c.Fields {
		if f.Groupable {
			names = append(names, f.Name)
		}
	}
	return names
}
