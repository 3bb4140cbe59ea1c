package roster

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/spektr-org/gccdash/resource"
)

// Dataset is the employee roster loaded at start-up. It is never modified after
// construction; a reload builds a new Dataset.
type Dataset struct {
	records  []*Record
	names    []string
	source   string
	loadedAt time.Time
}

// NewDataset wraps records in source order.
func NewDataset(records []*Record, source string, loadedAt time.Time) *Dataset {
	d := &Dataset{
		records:  records,
		source:   source,
		loadedAt: loadedAt,
	}
	seen := make(map[string]bool)
	for _, r := range records {
		for _, f := range r.Fields() {
			if !seen[f.Name] {
				seen[f.Name] = true
				d.names = append(d.names, f.Name)
			}
		}
	}
	return d
}

func (d *Dataset) Len() int { return len(d.records) }
func (d *Dataset) Record(i int) *Record { return d.records[i] }
func (d *Dataset) Source() string { return d.source }
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Records returns the records in source order. Callers must not modify the slice.
func (d *Dataset) Records() []*Record { return d.records }

// FieldNames returns every field name seen in the dataset, in first-seen order.
func (d *Dataset) FieldNames() []string { return d.names }

// FindByGCCID returns the first record whose GCC ID equals id, ignoring case.
func (d *Dataset) FindByGCCID(id string) (*Record, bool) {
	id = strings.TrimSpace(id)
	for _, r := range d.records {
		if strings.EqualFold(r.GCCID, id) {
			return r, true
		}
	}
	return nil, false
}

// WriteJSON writes the dataset as a JSON array, one record per element,
// indented with indent (empty for compact output).
func (d *Dataset) WriteJSON(w io.Writer, indent string) error {
	var (
		data []byte
		err  error
	)
	if indent == "" {
		data, err = json.Marshal(d.records)
	} else {
		data, err = json.MarshalIndent(d.records, "", indent)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Load fetches and decodes a dataset. Any failure is a *resource.LoadError, so a
// failed load is always distinguishable from a successful load of zero records.
func Load(ctx context.Context, f resource.Fetcher, now time.Time) (*Dataset, error) {
	data, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	records, err := DecodeRecords(data)
	if err != nil {
		return nil, &resource.LoadError{Location: f.Location(), Err: err}
	}
	return NewDataset(records, f.Location(), now), nil
}
