package models

import (
	"encoding/json"
	"math"
	"math/big"
	"reflect"
	"time"
)

// ValueKind classifies a document value
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindNested
	// KindTime is a native timestamp; it never comes out of JSON decoding
	KindTime
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	}
	return "nested"
}

// KindOf classifies v. Booleans are never numbers.
func KindOf(v interface{}) ValueKind {
	switch v.(type) {
	case nil:
		return KindNull
	case string:
		return KindString
	case bool:
		return KindBool
	case json.Number, float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return KindNumber
	case time.Time:
		return KindTime
	}
	return KindNested
}

// IntegerID returns v as an integer id. Only integer literals qualify: 5.0, 1e3 and
// booleans are rejected.
func IntegerID(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case json.Number:
		i, err := val.Int64()
		return i, err == nil
	case int:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	}
	return 0, false
}

// numberRat converts a numeric value to an exact rational, or nil
func numberRat(v interface{}) *big.Rat {
	r := new(big.Rat)
	switch val := v.(type) {
	case json.Number:
		if _, ok := r.SetString(val.String()); !ok {
			return nil
		}
		return r
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return r.SetFloat64(val)
	case float32:
		return numberRat(float64(val))
	case int:
		return r.SetInt64(int64(val))
	case int8:
		return r.SetInt64(int64(val))
	case int16:
		return r.SetInt64(int64(val))
	case int32:
		return r.SetInt64(int64(val))
	case int64:
		return r.SetInt64(val)
	case uint:
		return r.SetUint64(uint64(val))
	case uint8:
		return r.SetUint64(uint64(val))
	case uint16:
		return r.SetUint64(uint64(val))
	case uint32:
		return r.SetUint64(uint64(val))
	case uint64:
		return r.SetUint64(val)
	}
	return nil
}

// ValuesEqual compares two document values the way uniqueness and enum membership need:
// numbers numerically (1 == 1.0), strings and booleans exactly, nested values structurally.
// Values of different kinds are never equal.
func ValuesEqual(a, b interface{}) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}

	switch ka {
	case KindNull:
		return true
	case KindString:
		return a.(string) == b.(string)
	case KindBool:
		return a.(bool) == b.(bool)
	case KindNumber:
		ra, rb := numberRat(a), numberRat(b)
		if ra == nil || rb == nil {
			return false
		}
		return ra.Cmp(rb) == 0
	case KindTime:
		return a.(time.Time).Equal(b.(time.Time))
	}
	return reflect.DeepEqual(normalize(a), normalize(b))
}

// normalize rewrites numbers to canonical rational strings so nested values compare
// independently of their numeric representation
func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case Document:
		return normalize(map[string]interface{}(val))
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	}
	if KindOf(v) == KindNumber {
		if r := numberRat(v); r != nil {
			return numberKey{r.RatString()}
		}
	}
	return v
}

type numberKey struct{ s string }
