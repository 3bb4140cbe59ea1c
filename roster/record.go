package roster

import (
	"bytes"
	"encoding/json"
)

// Field names of the core schema as they appear in the source spreadsheet.
const (
	FieldGCCID             = "GCC ID"
	FieldFirstName         = "Associate First Name"
	FieldLastName          = "Associate Last Name"
	FieldJobRole           = "Citizens Job Role"
	FieldLevel             = "Cognizant Level 1 - 5"
	FieldSkills            = "Skills"
	FieldSkillRequirements = "Specific Skill Requirements"
	FieldStatus            = "Status"
	FieldSource            = "Source"
	FieldReportingManager  = "Reporting Manager"
	FieldTSLTMember        = "TSLT Member"
	FieldOriginalQuarter   = "Citizens Original Quarter"
)

var coreFieldNames = map[string]bool{
	FieldGCCID:             true,
	FieldFirstName:         true,
	FieldLastName:          true,
	FieldJobRole:           true,
	FieldLevel:             true,
	FieldSkills:            true,
	FieldSkillRequirements: true,
	FieldStatus:            true,
	FieldSource:            true,
	FieldReportingManager:  true,
	FieldTSLTMember:        true,
	FieldOriginalQuarter:   true,
}

// IsCoreField reports whether name belongs to the typed core schema.
func IsCoreField(name string) bool { return coreFieldNames[name] }

// Field is one named value of a record.
type Field struct {
	Name  string
	Value Value
}

// Record is one employee row.
//
// The core fields used by search, filters and grouping are typed strings (the
// String() form of the source value, empty when absent or null). Every other
// attribute lives in Extra. The full field list in source order is kept for
// display and export.
type Record struct {
	GCCID             string
	FirstName         string
	LastName          string
	JobRole           string
	Level             string
	Skills            string
	SkillRequirements string
	Status            string
	Source            string
	ReportingManager  string
	TSLTMember        string
	OriginalQuarter   string

	Extra map[string]Value

	fields []Field
	index  map[string]int
}

// NewRecord builds a record from fields in source order.
// A repeated name keeps its first position and takes the last value.
func NewRecord(fields []Field) *Record {
	r := &Record{
		Extra:  make(map[string]Value),
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if i, ok := r.index[f.Name]; ok {
			r.fields[i].Value = f.Value
			continue
		}
		r.index[f.Name] = len(r.fields)
		r.fields = append(r.fields, f)
	}
	for _, f := range r.fields {
		r.assign(f)
	}
	return r
}

func (r *Record) assign(f Field) {
	text := f.Value.String()
	switch f.Name {
	case FieldGCCID:
		r.GCCID = text
	case FieldFirstName:
		r.FirstName = text
	case FieldLastName:
		r.LastName = text
	case FieldJobRole:
		r.JobRole = text
	case FieldLevel:
		r.Level = text
	case FieldSkills:
		r.Skills = text
	case FieldSkillRequirements:
		r.SkillRequirements = text
	case FieldStatus:
		r.Status = text
	case FieldSource:
		r.Source = text
	case FieldReportingManager:
		r.ReportingManager = text
	case FieldTSLTMember:
		r.TSLTMember = text
	case FieldOriginalQuarter:
		r.OriginalQuarter = text
	default:
		r.Extra[f.Name] = f.Value
	}
}

// Get returns the value of a field and whether the record has it at all.
func (r *Record) Get(name string) (Value, bool) {
	i, ok := r.index[name]
	if !ok {
		return NullValue(), false
	}
	return r.fields[i].Value, true
}

// Text returns the string form of a field, empty when absent or null.
func (r *Record) Text(name string) string {
	v, _ := r.Get(name)
	return v.String()
}

// Fields returns all fields in source order. Callers must not modify the slice.
func (r *Record) Fields() []Field { return r.fields }

// Names returns the field names in source order.
func (r *Record) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.fields) }

// MarshalJSON writes the record as an object with fields in source order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
