package entity

import (
	"encoding/json"
	"fmt"
)

const (
	FieldID          = "id"
	FieldCreatedDate = "created_date"
	FieldCreatedBy   = "created_by"
)

// Record is one stored entity as decoded by encoding/json: numbers are
// float64, nested objects are map[string]any.
type Record map[string]any

func (r Record) ID() string {
	return r.String(FieldID)
}

func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Int reads a numeric field, truncating fractions. Missing or non-numeric
// values read as 0.
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}

// Decode converts the record into a typed value through its JSON form.
func (r Record) Decode(out any) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}

// normalize deep-copies v through JSON so the result shares nothing with the
// caller and compares equal to what a later read decodes.
func normalize(v any) (Record, error) {
	if v == nil {
		return Record{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out Record
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = Record{}
	}
	return out, nil
}

// merge applies patch over base, ignoring keys that are fixed at creation.
func merge(base, patch Record) Record {
	out := make(Record, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		if k == FieldID || k == FieldCreatedDate {
			continue
		}
		out[k] = v
	}
	return out
}
