package query

import (
	"github.com/roach88/shelf/internal/record"
)

// InferType classifies field by scanning records in order.
//
// Records where the field is missing, null or "" are skipped. The first
// string, float, list, nested record or boolean decides the type at once.
// Integers do not: the data source stores booleans as 0/1, so integer
// values are collected across the whole scan and the field is a boolean
// only if every observed integer is 0 or 1. A field with no concrete value
// anywhere is TypeUnknown.
func InferType(records []record.Record, field string) Type {
	ints := make(map[int64]struct{})

	for _, rec := range records {
		_, v, ok := rec.Lookup(field)
		if !ok || record.IsBlank(v) {
			continue
		}

		switch val := v.(type) {
		case record.String:
			return TypeString
		case record.Float:
			return TypeFloat
		case record.List:
			return TypeList
		case record.Record:
			return TypeRecord
		case record.Bool:
			return TypeBoolean
		case record.Int:
			ints[int64(val)] = struct{}{}
		}
	}

	if len(ints) == 0 {
		return TypeUnknown
	}
	for n := range ints {
		if n != 0 && n != 1 {
			return TypeInteger
		}
	}
	return TypeBoolean
}
