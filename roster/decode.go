package roster

import (
	"bytes"
	"encoding/json"

	"github.com/buger/jsonparser"
	"github.com/go-faster/errors"
)

// ============================================================================
// DECODE: JSON array of objects → []*Record
// ============================================================================
// encoding/json into map[string]any loses field order, and the export and the
// "show all" view both depend on it. jsonparser walks the document in order and
// tells us the kind of every value.
// ============================================================================

// ErrNotArray is returned when the document is not a JSON array.
var ErrNotArray = errors.New("dataset is not a JSON array")

// DecodeRecords parses a JSON array of objects.
func DecodeRecords(data []byte) ([]*Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, ErrNotArray
	}
	if !json.Valid(data) {
		return nil, errors.New("dataset is not valid JSON")
	}

	records := make([]*Record, 0)
	var decodeErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if decodeErr != nil {
			return
		}
		if err != nil {
			decodeErr = err
			return
		}
		if dataType != jsonparser.Object {
			decodeErr = errors.Errorf("element %d is not an object", len(records))
			return
		}
		rec, err := decodeObject(value)
		if err != nil {
			decodeErr = errors.Wrapf(err, "element %d", len(records))
			return
		}
		records = append(records, rec)
	})
	if err != nil {
		return nil, errors.Wrap(err, "walk array")
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return records, nil
}

func decodeObject(data []byte) (*Record, error) {
	var fields []Field
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		v, err := decodeValue(value, dataType)
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		fields = append(fields, Field{Name: string(key), Value: v})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewRecord(fields), nil
}

func decodeValue(value []byte, dataType jsonparser.ValueType) (Value, error) {
	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return Value{}, err
		}
		return StringValue(s), nil
	case jsonparser.Number:
		f, err := jsonparser.ParseFloat(value)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(f), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(value)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	case jsonparser.Null:
		return NullValue(), nil
	case jsonparser.Object, jsonparser.Array:
		return RawValue(value), nil
	default:
		return Value{}, errors.New("unknown value type")
	}
}
