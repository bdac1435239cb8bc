// Package domain defines core types and errors for the analytics service.
package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// WireTimeLayout is the fixed format used for timestamps in serialized records.
const WireTimeLayout = "2006-01-02T15:04:05"

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindTime
)

// Value is a tagged scalar cell. The zero Value is the explicit "no value"
// marker, distinct from empty-string, 0, and false supplied intentionally.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	t    time.Time
}

// Null returns the explicit "no value" marker.
func Null() Value { return Value{} }

// String wraps a string cell.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a numeric cell.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool wraps a boolean cell.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Time wraps a parsed timestamp cell.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Kind reports which variant the value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is the "no value" marker.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Time returns the parsed timestamp, if the value holds one.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindTime {
		return time.Time{}, false
	}
	return v.t, true
}

// Text returns the stable wire string of the value. Null renders as "",
// timestamps in WireTimeLayout, numbers without a trailing ".0" when integral.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(WireTimeLayout)
	default:
		return ""
	}
}

// MarshalJSON renders null markers as JSON null and timestamps in the fixed
// wire layout.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindTime:
		return json.Marshal(v.t.Format(WireTimeLayout))
	default:
		return []byte("null"), nil
	}
}

// Record is an ordered mapping from column name to a scalar cell. Column
// order follows the source header row; records in a dataset need not share
// identical column sets.
type Record struct {
	columns []string
	fields  map[string]Value
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{fields: make(map[string]Value)}
}

// Set stores a cell, appending the column on first sight.
func (r *Record) Set(column string, v Value) {
	if r.fields == nil {
		r.fields = make(map[string]Value)
	}
	if _, ok := r.fields[column]; !ok {
		r.columns = append(r.columns, column)
	}
	r.fields[column] = v
}

// Get returns the cell for column. The second return is false when the
// column is absent from this record.
func (r Record) Get(column string) (Value, bool) {
	v, ok := r.fields[column]
	return v, ok
}

// Columns returns the column names in source order. The returned slice must
// not be mutated.
func (r Record) Columns() []string { return r.columns }

// Len returns the number of cells.
func (r Record) Len() int { return len(r.columns) }

// MarshalJSON emits an object with keys in source column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.fields[col])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RawRow is a loosely-typed row as returned by a record source: the observed
// header order plus cell values that may be strings, numbers, or booleans.
type RawRow struct {
	Columns []string
	Fields  map[string]any
}
