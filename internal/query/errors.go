package query

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError reports a malformed criterion string.
type ParseError struct {
	// Input is the raw criterion as supplied by the user.
	Input string

	// Reason describes what is wrong (e.g. "missing separator").
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid criterion %q: %s", e.Input, e.Reason)
}

// SchemaError reports a requested field the table does not have.
type SchemaError struct {
	Table string
	Field string

	// Available lists the table's field names, for the error message.
	Available []string
}

func (e *SchemaError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unknown field %q in table %s", e.Field, e.Table)
	}
	return fmt.Sprintf("unknown field %q in table %s (available: %s)",
		e.Field, e.Table, strings.Join(e.Available, ", "))
}

// EmptyTableError reports that a table has no records, so its schema
// cannot be determined.
type EmptyTableError struct {
	Table string
}

func (e *EmptyTableError) Error() string {
	return fmt.Sprintf("table %s has no records", e.Table)
}

// CoercionError reports a filter value that cannot be converted to the
// field's type.
type CoercionError struct {
	Field string
	Value string
	Type  Type

	// Err is the underlying conversion error, if any.
	Err error
}

func (e *CoercionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("cannot convert %q to %s", e.Value, e.Type)
	}
	return fmt.Sprintf("field %q: cannot convert %q to %s", e.Field, e.Value, e.Type)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// IsParseError returns true if err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsSchemaError returns true if err is or wraps a *SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// IsEmptyTableError returns true if err is or wraps an *EmptyTableError.
func IsEmptyTableError(err error) bool {
	var ee *EmptyTableError
	return errors.As(err, &ee)
}

// IsCoercionError returns true if err is or wraps a *CoercionError.
func IsCoercionError(err error) bool {
	var ce *CoercionError
	return errors.As(err, &ce)
}
