package query

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/shelf/internal/record"
)

// Logic governs how the values of a single criterion combine.
type Logic string

const (
	// LogicAnd requires every value to match.
	LogicAnd Logic = "AND"

	// LogicOr requires at least one value to match.
	LogicOr Logic = "OR"
)

// Criterion is one parsed filter clause.
//
// Field and Values are lower-cased. Values always has at least one element;
// an empty element (e.g. from a trailing comma) is kept and never matches.
type Criterion struct {
	Field  string
	Values []string
	Logic  Logic
	Negate bool
}

// String renders the criterion back into filter syntax.
func (c Criterion) String() string {
	var prefix string
	switch {
	case c.Negate:
		prefix = "NOT:"
	case c.Logic == LogicOr:
		prefix = "OR:"
	}
	return prefix + c.Field + "=" + strings.Join(c.Values, ",")
}

// Type is the semantic type inferred for a field.
type Type int

const (
	TypeUnknown Type = iota
	TypeString
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeList
	TypeRecord
)

var typeNames = map[Type]string{
	TypeUnknown: "unknown",
	TypeString:  "string",
	TypeInteger: "integer",
	TypeFloat:   "float",
	TypeBoolean: "boolean",
	TypeList:    "list",
	TypeRecord:  "record",
}

// String returns the canonical type name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType parses a type name as accepted by the --type flag.
// "unknown" is not accepted: it cannot be requested, only inferred.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "string", "str", "text":
		return TypeString, nil
	case "integer", "int":
		return TypeInteger, nil
	case "float", "number", "decimal":
		return TypeFloat, nil
	case "boolean", "bool":
		return TypeBoolean, nil
	case "list", "array":
		return TypeList, nil
	case "record", "object":
		return TypeRecord, nil
	default:
		return TypeUnknown, fmt.Errorf("unknown field type %q (want string, integer, float, boolean, list or record)", name)
	}
}

// ParseTypes parses a field-to-type-name map, such as repeated --type
// flags, into field types. Fields are reported in sorted order so the
// first error is stable.
func ParseTypes(raw map[string]string) (map[string]Type, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	types := make(map[string]Type, len(raw))
	for _, field := range slices.Sorted(maps.Keys(raw)) {
		if strings.TrimSpace(field) == "" {
			return nil, fmt.Errorf("type %q: empty field name", raw[field])
		}
		t, err := ParseType(raw[field])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field, err)
		}
		types[field] = t
	}
	return types, nil
}

// Predicate is a criterion whose values have been coerced into the
// field's type. Build one with Compile.
type Predicate struct {
	Criterion

	// Type is the field type the targets were coerced to.
	Type Type

	// Targets holds one coerced value per entry in Criterion.Values.
	Targets []record.Value
}
