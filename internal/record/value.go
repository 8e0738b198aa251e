package record

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Value is a sealed interface over the field value variants.
// Only Null, String, Int, Float, Bool, List and Record implement it.
type Value interface {
	value() // Sealed - only these types implement it
}

// Null represents an absent value or JSON null.
type Null struct{}

func (Null) value() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String represents a text value.
type String string

func (String) value() {}

// Int represents a whole number.
type Int int64

func (Int) value() {}

// Float represents a number with a fractional part or exponent.
type Float float64

func (Float) value() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) value() {}

// List represents an ordered sequence of values.
type List []Value

func (List) value() {}

// Record maps field names to values. A Record is also a Value so links to
// other tables can nest.
type Record map[string]Value

func (Record) value() {}

// Text returns the string form of a value.
//
// Numbers use their shortest decimal form, booleans render as "true" or
// "false", lists join element forms with ", ", nested records render as
// compact JSON and Null renders as "".
func Text(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return ""
	case String:
		return string(val)
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'f', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(val))
	case List:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = Text(elem)
		}
		return strings.Join(parts, ", ")
	case Record:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return ""
	}
}

// Truthy reports whether a value counts as "set".
// Null, "", whitespace-only strings, 0, false and empty lists or records are
// not truthy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, Null:
		return false
	case String:
		return strings.TrimSpace(string(val)) != ""
	case Int:
		return val != 0
	case Float:
		return val != 0
	case Bool:
		return bool(val)
	case List:
		return len(val) > 0
	case Record:
		return len(val) > 0
	default:
		return false
	}
}

// IsBlank reports whether a value carries no content for inference
// purposes: Null or the empty string.
func IsBlank(v Value) bool {
	switch val := v.(type) {
	case nil, Null:
		return true
	case String:
		return val == ""
	default:
		return false
	}
}

// Equal reports whether two values are the same variant with the same
// content. Ints and Floats compare numerically across variants so ids
// decoded either way still match.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case nil, Null:
		return IsNull(b)
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Int:
		switch y := b.(type) {
		case Int:
			return x == y
		case Float:
			return Float(x) == y
		}
		return false
	case Float:
		switch y := b.(type) {
		case Float:
			return x == y
		case Int:
			return x == Float(y)
		}
		return false
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Record:
		y, ok := b.(Record)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, exists := y[k]
			if !exists || !Equal(xv, yv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsNull reports whether v is nil or Null.
func IsNull(v Value) bool {
	switch v.(type) {
	case nil, Null:
		return true
	default:
		return false
	}
}
