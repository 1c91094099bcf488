package models

import (
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// RawRecord is a document exactly as persisted, in whatever mix of current
// and legacy field names it happens to carry. The Normalize* functions are
// the only way to turn one into a canonical model.
type RawRecord map[string]any

// Keys shared by every persisted record.
const (
	KeyID         = "id"
	KeyInternalID = "_id"
	KeyProjectID  = "projectId"
	KeyCreatedAt  = "createdAt"
	KeyUpdatedAt  = "updatedAt"
)

// Aliases lists every key a single logical field has been stored under,
// in precedence order. The first entry is the key written for new data.
type Aliases []string

func (a Aliases) Canonical() string { return a[0] }

func (a Aliases) Legacy() []string { return a[1:] }

// Has reports whether any of keys is set on r, even to nil.
func (r RawRecord) Has(keys ...string) bool {
	for _, key := range keys {
		if _, ok := r[key]; ok {
			return true
		}
	}
	return false
}

// Clone returns a shallow copy of r.
func (r RawRecord) Clone() RawRecord {
	c := make(RawRecord, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Without returns a shallow copy of r minus keys.
func (r RawRecord) Without(keys ...string) RawRecord {
	c := r.Clone()
	for _, key := range keys {
		delete(c, key)
	}
	return c
}

func (r RawRecord) text(keys Aliases) (string, bool) {
	for _, key := range keys {
		if s, ok := ToText(r[key]); ok {
			return s, true
		}
	}
	return "", false
}

func (r RawRecord) number(keys Aliases) (float64, bool) {
	for _, key := range keys {
		if n, ok := ToNumber(r[key]); ok {
			return n, true
		}
	}
	return 0, false
}

// flag returns the truthiness of the first alias that is set at all: an
// explicit false on the canonical key beats a true on a legacy key.
func (r RawRecord) flag(keys Aliases) (bool, bool) {
	for _, key := range keys {
		if v, ok := r[key]; ok && v != nil {
			return Truthy(v), true
		}
	}
	return false, false
}

func (r RawRecord) list(keys Aliases) ([]any, bool) {
	for _, key := range keys {
		if l, ok := ToList(r[key]); ok {
			return l, true
		}
	}
	return nil, false
}

func (r RawRecord) timestamp(key string) time.Time {
	switch v := r[key].(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ToText coerces scalars to a string; blank strings, nil and composite
// values are reported as absent.
func ToText(v any) (string, bool) {
	if v == nil || isComposite(v) {
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// ToNumber coerces numbers, numeric strings and json.Number to a finite
// float64. Anything else is absent.
func ToNumber(v any) (float64, bool) {
	if v == nil || isComposite(v) {
		return 0, false
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return 0, false
	}
	n, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// Truthy mirrors loose truthiness: false, 0, NaN, "" and nil are false,
// everything else is true.
func Truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != ""
	}
	if isComposite(v) {
		return true
	}
	if n, err := cast.ToFloat64E(v); err == nil {
		return n != 0 && !math.IsNaN(n)
	}
	return true
}

// ToList accepts any slice or array value.
func ToList(v any) ([]any, bool) {
	switch l := v.(type) {
	case nil:
		return nil, false
	case []any:
		return l, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		// []byte is a scalar blob, not a list
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// ToRecord accepts map-shaped values with string keys.
func ToRecord(v any) (RawRecord, bool) {
	switch m := v.(type) {
	case RawRecord:
		return m, true
	case map[string]any:
		return RawRecord(m), true
	case map[string]string:
		r := make(RawRecord, len(m))
		for k, s := range m {
			r[k] = s
		}
		return r, true
	}
	return nil, false
}

func isComposite(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Func, reflect.Chan:
		_, isTime := v.(time.Time)
		_, isBytes := v.([]byte)
		return !isTime && !isBytes
	}
	return false
}
