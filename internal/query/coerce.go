package query

import (
	"strconv"
	"strings"

	"github.com/roach88/shelf/internal/record"
)

// Coerce converts a raw filter value into the given type.
//
//   - TypeBoolean: "true", "yes", "1" and "false", "no", "0" (any case).
//   - TypeInteger, TypeFloat: numeric parse.
//   - TypeString, TypeList, TypeRecord and TypeUnknown: the input is
//     returned unchanged as a record.String.
//
// Failures are returned as *CoercionError with Field left empty; Compile
// fills it in.
func Coerce(raw string, t Type) (record.Value, error) {
	switch t {
	case TypeBoolean:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "yes", "1":
			return record.Bool(true), nil
		case "false", "no", "0":
			return record.Bool(false), nil
		}
		return nil, &CoercionError{Value: raw, Type: t}

	case TypeInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, &CoercionError{Value: raw, Type: t, Err: err}
		}
		return record.Int(n), nil

	case TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, &CoercionError{Value: raw, Type: t, Err: err}
		}
		return record.Float(f), nil

	default:
		return record.String(raw), nil
	}
}

// Compile coerces every value of c into t and returns the resulting
// predicate. The first value that fails coercion aborts with a
// *CoercionError naming the field, the value and the type.
func Compile(c Criterion, t Type) (Predicate, error) {
	targets := make([]record.Value, len(c.Values))
	for i, raw := range c.Values {
		v, err := Coerce(raw, t)
		if err != nil {
			ce := err.(*CoercionError)
			ce.Field = c.Field
			return Predicate{}, ce
		}
		targets[i] = v
	}
	return Predicate{Criterion: c, Type: t, Targets: targets}, nil
}

// CompileAll compiles criteria using the per-field types in types.
// Fields missing from types compile as TypeUnknown.
func CompileAll(criteria []Criterion, types map[string]Type) ([]Predicate, error) {
	preds := make([]Predicate, 0, len(criteria))
	for _, c := range criteria {
		p, err := Compile(c, types[c.Field])
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}
