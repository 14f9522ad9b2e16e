// Package model provides domain model for tabimport
package model

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// ValueKind identifies the variant held by a Value.
type ValueKind int

const (
	// KindNull is an empty cell
	KindNull ValueKind = iota
	// KindString is textual data
	KindString
	// KindInt is a native integer (e.g. from a Parquet INT column)
	KindInt
	// KindFloat is a native floating point number
	KindFloat
	// KindBool is a native boolean
	KindBool
	// KindDate is a parsed date/time
	KindDate
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	default:
		return "invalid"
	}
}

// Value is a single cell. It is a closed union: exactly one of the typed
// payloads is meaningful, selected by Kind.
type Value struct {
	kind ValueKind
	// raw is the text the value was read from, if any.
	raw string
	i   int64
	f   float64
	b   bool
	t   time.Time
}

// NullValue returns an empty cell.
func NullValue() Value {
	return Value{kind: KindNull}
}

// StringValue returns a textual cell.
func StringValue(s string) Value {
	return Value{kind: KindString, raw: s}
}

// IntValue returns a native integer cell.
func IntValue(i int64) Value {
	return Value{kind: KindInt, i: i}
}

// FloatValue returns a native floating point cell.
func FloatValue(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

// BoolValue returns a native boolean cell.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// DateValue returns a parsed date/time cell.
func DateValue(t time.Time) Value {
	return Value{kind: KindDate, t: t}
}

// withRaw keeps the original text of a converted value.
func (v Value) withRaw(raw string) Value {
	v.raw = raw
	return v
}

// Kind returns the variant held by v.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNull reports whether v is an empty cell.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// String returns the text form of v. Values read from text keep their
// original spelling.
func (v Value) String() string {
	if v.raw != "" {
		return v.raw
	}
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDate:
		return v.t.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// Bool returns the boolean payload.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Time returns the date/time payload.
func (v Value) Time() (time.Time, bool) {
	return v.t, v.kind == KindDate
}

// Number returns v as a float64 when it is numeric. Text is parsed;
// NaN and infinities are not considered numbers.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, !math.IsNaN(v.f) && !math.IsInf(v.f, 0)
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.raw), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Integer returns v as an int64 when it is a whole number.
func (v Value) Integer() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindString:
		i, err := strconv.ParseInt(strings.TrimSpace(v.raw), 10, 64)
		if err == nil {
			return i, true
		}
		if errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit
	f, ok := v.Number()
	if !ok || f != math.Trunc(f) || f >= 1<<63 || f < -(1<<63) {
		return 0, false
	}
	return int64(f), true
}

// IsWhole reports whether v is a number without a fractional part.
func (v Value) IsWhole() bool {
	_, ok := v.Integer()
	return ok
}

// HasFraction reports whether v is a number with a fractional part.
func (v Value) HasFraction() bool {
	f, ok := v.Number()
	return ok && f != math.Trunc(f)
}

// Native converts v to the Go value persisted for a column of type tag:
// nil, int64, float64, bool, time.Time or string. Values that do not fit
// the tag are persisted as text.
func (v Value) Native(tag TypeTag) any {
	if v.kind == KindNull {
		return nil
	}
	switch tag {
	case TypeInteger:
		if i, ok := v.Integer(); ok {
			return i
		}
	case TypeFloat, TypeDouble:
		if f, ok := v.Number(); ok {
			return f
		}
	case TypeBoolean:
		if b, ok := v.Bool(); ok {
			return b
		}
	case TypeDate:
		if t, ok := v.Time(); ok {
			return t
		}
	}
	return v.String()
}

// RawRow is one row as produced by a reader, aligned by position with the
// header it was read under.
type RawRow []Value

// Strings returns the text form of every cell.
func (r RawRow) Strings() []string {
	out := make([]string, len(r))
	for i, v := range r {
		out[i] = v.String()
	}
	return out
}
