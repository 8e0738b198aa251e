package query

import (
	"github.com/roach88/shelf/internal/record"
)

// ValidateFields checks that every requested field exists on sample,
// compared case-insensitively. sample stands in for the table schema.
// Returns a *SchemaError for the first unrecognized field.
func ValidateFields(table string, sample record.Record, fields []string) error {
	for _, f := range fields {
		if !sample.Has(f) {
			return &SchemaError{Table: table, Field: f, Available: sample.Keys()}
		}
	}
	return nil
}
