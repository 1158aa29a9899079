package dashboard

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// envelopeFields lists the wrapper fields that may carry the payload of an
// upstream response, in lookup order.
var envelopeFields = []string{"data", "items", "results", "rows"}

const maxEnvelopeDepth = 3

// Row is a single decoded record of an upstream payload.
type Row map[string]any

// Rows normalises a raw payload into a sequence of records. Arrays are used
// directly, envelopes are unwrapped through their known payload field and any
// other shape yields an empty sequence.
func Rows(raw any) []Row {
	return rowsAt(raw, 0)
}

func rowsAt(raw any, depth int) []Row {
	switch v := raw.(type) {
	case nil:
		return nil
	case []Row:
		return v
	case []map[string]any:
		rows := make([]Row, 0, len(v))
		for _, item := range v {
			if item != nil {
				rows = append(rows, Row(item))
			}
		}
		return rows
	case []any:
		rows := make([]Row, 0, len(v))
		for _, item := range v {
			if row := asRow(item); row != nil {
				rows = append(rows, row)
			}
		}
		return rows
	case json.RawMessage:
		return rowsAt(decodeRaw(v), depth)
	case []byte:
		return rowsAt(decodeRaw(v), depth)
	default:
		row := asRow(raw)
		if row == nil || depth >= maxEnvelopeDepth {
			return nil
		}
		inner, ok := row.envelope()
		if !ok {
			return nil
		}
		return rowsAt(inner, depth+1)
	}
}

// Object normalises a raw payload expected to carry a single record, such as
// the profile of the signed-in user.
func Object(raw any) Row {
	return objectAt(raw, 0)
}

func objectAt(raw any, depth int) Row {
	switch v := raw.(type) {
	case json.RawMessage:
		return objectAt(decodeRaw(v), depth)
	case []byte:
		return objectAt(decodeRaw(v), depth)
	}
	row := asRow(raw)
	if row == nil {
		return Row{}
	}
	inner, ok := row.envelope()
	if !ok {
		return row
	}
	if depth >= maxEnvelopeDepth {
		return Row{}
	}
	return objectAt(inner, depth+1)
}

func asRow(v any) Row {
	switch m := v.(type) {
	case Row:
		return m
	case map[string]any:
		return Row(m)
	default:
		return nil
	}
}

func decodeRaw(data []byte) any {
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

func (r Row) envelope() (any, bool) {
	for _, field := range envelopeFields {
		if value, ok := r[field]; ok {
			return value, true
		}
	}
	return nil, false
}

func (r Row) lookup(keys ...string) (any, bool) {
	for _, key := range keys {
		if value, ok := r[key]; ok && value != nil {
			return value, true
		}
	}
	return nil, false
}

// Has reports whether any of the keys carries a non-null value.
func (r Row) Has(keys ...string) bool {
	_, ok := r.lookup(keys...)
	return ok
}

// Float returns the first present key as a float. Missing or malformed values
// are zero.
func (r Row) Float(keys ...string) float64 {
	value, ok := r.lookup(keys...)
	if !ok {
		return 0
	}
	f, err := cast.ToFloat64E(value)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Amount is Float clamped to non-negative values.
func (r Row) Amount(keys ...string) float64 {
	return math.Max(0, r.Float(keys...))
}

// Int returns the first present key rounded to an integer. Missing or
// malformed values are zero and out of range values saturate.
func (r Row) Int(keys ...string) int {
	f := math.Round(r.Float(keys...))
	switch {
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

// Count is Int clamped to non-negative values.
func (r Row) Count(keys ...string) int {
	if n := r.Int(keys...); n > 0 {
		return n
	}
	return 0
}

// String returns the first present key as trimmed text.
func (r Row) String(keys ...string) string {
	value, ok := r.lookup(keys...)
	if !ok {
		return ""
	}
	switch value.(type) {
	case map[string]any, []any:
		return ""
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// Nested returns the object stored under key, or an empty row.
func (r Row) Nested(key string) Row {
	if row := asRow(r[key]); row != nil {
		return row
	}
	return Row{}
}
