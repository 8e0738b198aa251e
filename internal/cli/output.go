package cli

import (
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/roach88/shelf/internal/client"
	"github.com/roach88/shelf/internal/config"
	"github.com/roach88/shelf/internal/library"
	"github.com/roach88/shelf/internal/query"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution, including "no matching records"
	ExitFailure      = 1 // The request ran but failed (fetch failure, empty table, not found)
	ExitCommandError = 2 // The request itself is wrong (bad criteria, unknown table or field, bad config)
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeConfig       = "E002" // Configuration missing or invalid
	ErrCodeUnknownTable = "E003" // Table name not configured
	ErrCodeUsage        = "E004" // Invalid flag value

	// Filter errors
	ErrCodeParse      = "E201" // Malformed criterion
	ErrCodeSchema     = "E202" // Field not present in table
	ErrCodeEmptyTable = "E203" // Table has no records
	ErrCodeCoercion   = "E204" // Value cannot be converted to the field type
	ErrCodeFetch      = "E205" // Record fetch failed
	ErrCodeNotFound   = "E206" // Author or book not found

	// Harness errors
	ErrCodeTestFailed = "E301" // One or more scenarios failed
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E201", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// JSON reports whether output is machine-readable.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.JSON() {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}

	// Human-readable text output
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.JSON() {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Println writes a line of text output. It is a no-op in JSON mode so
// commands can interleave headings with a single JSON document.
func (f *OutputFormatter) Println(args ...any) {
	if f.JSON() {
		return
	}
	fmt.Fprintln(f.Writer, args...)
}

// Printf is the formatted form of Println.
func (f *OutputFormatter) Printf(format string, args ...any) {
	if f.JSON() {
		return
	}
	fmt.Fprintf(f.Writer, format, args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// classify maps an error to its error code, exit code, user-facing message
// and optional details.
func classify(err error) (code string, exit int, message string, details any) {
	var (
		tableErr    *config.UnknownTableError
		parseErr    *query.ParseError
		schemaErr   *query.SchemaError
		emptyErr    *query.EmptyTableError
		coercionErr *query.CoercionError
		fetchErr    *client.FetchError
	)

	switch {
	case errors.As(err, &tableErr):
		return ErrCodeUnknownTable, ExitCommandError, tableErr.Error(), map[string]any{"available": tableErr.Valid}
	case errors.As(err, &parseErr):
		return ErrCodeParse, ExitCommandError, parseErr.Error(), nil
	case errors.As(err, &schemaErr):
		return ErrCodeSchema, ExitCommandError, schemaErr.Error(), map[string]any{"available": schemaErr.Available}
	case errors.As(err, &emptyErr):
		return ErrCodeEmptyTable, ExitFailure, emptyErr.Error(), nil
	case errors.As(err, &coercionErr):
		return ErrCodeCoercion, ExitCommandError, coercionErr.Error(), map[string]any{"type": coercionErr.Type.String()}
	case errors.As(err, &fetchErr):
		var details any
		if fetchErr.Status != 0 {
			details = map[string]any{"status": fetchErr.Status}
		}
		return ErrCodeFetch, ExitFailure, fetchErr.Error(), details
	case errors.Is(err, library.ErrAuthorNotFound), errors.Is(err, library.ErrBookNotFound):
		return ErrCodeNotFound, ExitFailure, err.Error(), nil
	default:
		return ErrCodeGeneric, ExitFailure, err.Error(), nil
	}
}

// fail reports err through the formatter and returns the ExitError the
// command should return.
func fail(f *OutputFormatter, err error) error {
	code, exit, message, details := classify(err)
	_ = f.Error(code, message, details)
	return WrapExitError(exit, code, err)
}
