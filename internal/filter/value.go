// Package filter implements the JSON S-expression DSL: operator table, AST,
// compiler, executor, and the compiled filter collection with its spatial
// index.
package filter

import (
	"strconv"
	"strings"
)

// Kind tags the variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindFloat
	KindBoolean
	KindArray
)

// Value is the sum type String | Number(i64) | Float(decimal string) |
// Boolean | Null | Array that every expression evaluates to.
type Value struct {
	Kind Kind
	str  string // String payload; also Float's canonical decimal rendering
	num  int64
	b    bool
	arr  []Value
}

func Null() Value           { return Value{Kind: KindNull} }
func String(s string) Value { return Value{Kind: KindString, str: s} }
func Number(n int64) Value  { return Value{Kind: KindNumber, num: n} }
func Float(s string) Value  { return Value{Kind: KindFloat, str: s} }
func Boolean(b bool) Value  { return Value{Kind: KindBoolean, b: b} }
func Array(vs []Value) Value {
	return Value{Kind: KindArray, arr: vs}
}

// Str returns the String or Float payload.
func (v Value) Str() string { return v.str }

// Num returns the Number payload.
func (v Value) Num() int64 { return v.num }

// Bool returns the Boolean payload verbatim (not coerced).
func (v Value) Bool() bool { return v.b }

// Elems returns the Array payload.
func (v Value) Elems() []Value { return v.arr }

// CanonicalFloat renders a float64 as the shortest decimal string that
// round-trips, per the canonical-decimal-string representation the spec
// requires for Float values.
func CanonicalFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// CoerceBool applies the boolean coercion rules: Boolean passes through;
// non-empty String is true; Number is true iff nonzero; Float is true unless
// its parsed value is zero; Null is always false; Array is true iff non-empty.
func (v Value) CoerceBool() bool {
	switch v.Kind {
	case KindBoolean:
		return v.b
	case KindString:
		return v.str != ""
	case KindNumber:
		return v.num != 0
	case KindFloat:
		f, err := strconv.ParseFloat(v.str, 64)
		if err != nil {
			return v.str != "" && v.str != "0" && v.str != "0.0"
		}
		return f != 0
	case KindArray:
		return len(v.arr) > 0
	default: // Null
		return false
	}
}

// Render renders a Value to its string form, used by string operators and
// by cross-kind comparison fallback.
func (v Value) Render() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBoolean:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return v.str
	case KindString:
		return v.str
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.Render()
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return ""
	}
}

func (v Value) asFloat() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return float64(v.num), true
	case KindFloat:
		f, err := strconv.ParseFloat(v.str, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Compare implements the total ordering used by comparison operators: Null
// is strictly less than any non-null value; Number vs Float compares
// numerically; every other cross-kind pairing falls back to comparing the
// string renderings of both sides.
func Compare(a, b Value) int {
	if a.Kind == KindNull || b.Kind == KindNull {
		switch {
		case a.Kind == KindNull && b.Kind == KindNull:
			return 0
		case a.Kind == KindNull:
			return -1
		default:
			return 1
		}
	}
	af, aok := a.asFloat()
	bf, bok := b.asFloat()
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a.Render(), b.Render())
}

// Equal reports whether two values are equal under expression-value
// equality: same Kind and payload for Array (deep, elementwise), otherwise
// the induced outcome of Compare.
func Equal(a, b Value) bool {
	if a.Kind == KindArray || b.Kind == KindArray {
		if a.Kind != KindArray || b.Kind != KindArray {
			return false
		}
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	}
	return Compare(a, b) == 0
}

// setKey produces a unique string key for a scalar Value suitable for use
// as a hash-set member in In-sets.
func setKey(v Value) string {
	switch v.Kind {
	case KindNull:
		return "n:"
	case KindString:
		return "s:" + v.str
	case KindNumber:
		return "i:" + strconv.FormatInt(v.num, 10)
	case KindFloat:
		return "f:" + v.str
	case KindBoolean:
		if v.b {
			return "b:1"
		}
		return "b:0"
	default: // Array: join member keys, nested arrays as set elements are rare
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = setKey(e)
		}
		return "a:[" + strings.Join(parts, ",") + "]"
	}
}
