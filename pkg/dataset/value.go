package dataset

import (
	"strconv"
	"strings"
)

// MissingSentinel is the placeholder string that source documents use for absent values.
const MissingSentinel = "na"

// ValueKind discriminates the contents of a Value.
type ValueKind uint8

const (
	KindMissing ValueKind = iota
	KindNumber
	KindString
)

// Value is a single cell. The zero Value is Missing.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

// Missing is the uniform missing-value marker.
var Missing = Value{}

// Number returns a numeric Value.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// String returns a string Value. The sentinel "na" becomes Missing.
func String(s string) Value {
	if s == MissingSentinel {
		return Missing
	}
	return Value{Kind: KindString, Str: s}
}

// Parse interprets a flat-file cell: empty and "na" are Missing,
// anything that parses as a float is a Number, the rest are strings.
func Parse(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" || s == MissingSentinel {
		return Missing
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(f)
	}
	return Value{Kind: KindString, Str: s}
}

func (v Value) IsMissing() bool {
	return v.Kind == KindMissing
}

func (v Value) IsNumber() bool {
	return v.Kind == KindNumber
}

func (v Value) IsString() bool {
	return v.Kind == KindString
}

// Float returns the numeric content and whether the value is a number.
func (v Value) Float() (float64, bool) {
	return v.Num, v.Kind == KindNumber
}

// String renders the value for flat-file output. Missing renders empty.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindString:
		return v.Str
	default:
		return ""
	}
}
