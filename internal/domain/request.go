package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// Request is a decoded validator input. Numbers are json.Number so
// integer amounts compare exactly.
type Request map[string]any

// JSON type names used by field specs and type-mismatch messages.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
	TypeNull    = "null"
)

var integerText = regexp.MustCompile(`^-?(0|[1-9][0-9]*)$`)

// MaxExactInteger is the largest magnitude an IEEE double, and so the
// canonical envelope, holds exactly.
const MaxExactInteger = 1<<53 - 1

var maxExactInteger = big.NewInt(MaxExactInteger)

// SplitPath splits a dotted path. An empty path or empty segment is a
// defect in the caller's static field table and panics.
func SplitPath(path string) []string {
	if path == "" {
		panic("domain: empty field path")
	}
	parts := strings.Split(path, ".")
	for _, p := range parts {
		if p == "" {
			panic(fmt.Sprintf("domain: malformed field path %q", path))
		}
	}
	return parts
}

// Lookup resolves a dotted path. The second result is false when any
// segment is absent or crosses a non-object value.
func (r Request) Lookup(path string) (any, bool) {
	var cur any = map[string]any(r)
	for _, seg := range SplitPath(path) {
		obj, ok := AsObject(cur)
		if !ok {
			return nil, false
		}
		cur, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String returns the value at path when it is a string.
func (r Request) String(path string) (string, bool) {
	v, ok := r.Lookup(path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Object returns the object at path.
func (r Request) Object(path string) (map[string]any, bool) {
	v, ok := r.Lookup(path)
	if !ok {
		return nil, false
	}
	return AsObject(v)
}

// Has reports whether path resolves, including to null.
func (r Request) Has(path string) bool {
	_, ok := r.Lookup(path)
	return ok
}

// AsObject accepts both map[string]any and Request.
func AsObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Request:
		return m, true
	}
	return nil, false
}

// TypeOf names the JSON type of a decoded value.
func TypeOf(v any) string {
	switch x := v.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBoolean
	case string:
		return TypeString
	case json.Number:
		if integerText.MatchString(x.String()) {
			return TypeInteger
		}
		return TypeNumber
	case int, int32, int64:
		return TypeInteger
	case float64:
		if x == float64(int64(x)) {
			return TypeInteger
		}
		return TypeNumber
	case []any:
		return TypeArray
	}
	if _, ok := AsObject(v); ok {
		return TypeObject
	}
	return fmt.Sprintf("%T", v)
}

// IsType reports whether v has JSON type want. Integers satisfy "number".
func IsType(v any, want string) bool {
	got := TypeOf(v)
	if got == want {
		return true
	}
	return want == TypeNumber && got == TypeInteger
}

// InExactRange reports whether a number survives canonical encoding
// unchanged: integers within ±MaxExactInteger, other numbers finite as
// float64. Non-numbers are always in range.
func InExactRange(v any) bool {
	switch x := v.(type) {
	case json.Number:
		s := x.String()
		if integerText.MatchString(s) {
			n, ok := new(big.Int).SetString(s, 10)
			return ok && n.CmpAbs(maxExactInteger) <= 0
		}
		_, err := strconv.ParseFloat(s, 64)
		return err == nil
	case int:
		return inExactInt64(int64(x))
	case int64:
		return inExactInt64(x)
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return false
		}
		return x != math.Trunc(x) || math.Abs(x) <= MaxExactInteger
	}
	return true
}

func inExactInt64(n int64) bool {
	return n >= -MaxExactInteger && n <= MaxExactInteger
}

// ValuesEqual compares two decoded JSON values. Numbers compare as exact
// rationals, never as floats.
func ValuesEqual(a, b any) bool {
	ra, aNum := exactNumber(a)
	rb, bNum := exactNumber(b)
	if aNum || bNum {
		return aNum && bNum && ra.Cmp(rb) == 0
	}
	switch x := a.(type) {
	case nil:
		return b == nil
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !ValuesEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	xo, ok := AsObject(a)
	if !ok {
		return false
	}
	yo, ok := AsObject(b)
	if !ok || len(xo) != len(yo) {
		return false
	}
	for k, xv := range xo {
		yv, ok := yo[k]
		if !ok || !ValuesEqual(xv, yv) {
			return false
		}
	}
	return true
}

func exactNumber(v any) (*big.Rat, bool) {
	var text string
	switch x := v.(type) {
	case json.Number:
		text = x.String()
	case int:
		return new(big.Rat).SetInt64(int64(x)), true
	case int64:
		return new(big.Rat).SetInt64(x), true
	case float64:
		r := new(big.Rat)
		if r.SetFloat64(x) == nil {
			return nil, false
		}
		return r, true
	default:
		return nil, false
	}
	r, ok := new(big.Rat).SetString(text)
	return r, ok
}

// Render formats a decoded value for messages.
func Render(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", x)
	case json.Number:
		return x.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
