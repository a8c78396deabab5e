package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Document is a record payload or a field config: a JSON object keyed by slug.
// Numbers decode as json.Number so integer ids and decimals keep their literal form.
type Document map[string]interface{}

// UnmarshalJSON decodes with UseNumber. A JSON null yields a nil Document.
func (d *Document) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var m map[string]interface{}
	if err := dec.Decode(&m); err != nil {
		return err
	}
	*d = m
	return nil
}

// Scan implements sql.Scanner for JSON columns
func (d *Document) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = nil
		return nil
	case []byte:
		return d.UnmarshalJSON(v)
	case string:
		return d.UnmarshalJSON([]byte(v))
	}
	return fmt.Errorf("cannot scan %T into Document", src)
}

// Value implements driver.Valuer; a nil Document is stored as an empty object
func (d Document) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]interface{}(d))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Plain returns a copy whose numbers are int64 or float64, for expression evaluation
func (d Document) Plain() map[string]interface{} {
	out := make(map[string]interface{}, len(d))
	for k, v := range d {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v interface{}) interface{} {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]interface{}:
		return Document(val).Plain()
	case Document:
		return val.Plain()
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = plainValue(item)
		}
		return out
	}
	return v
}
