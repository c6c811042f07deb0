package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/roach88/specbench/internal/catalog"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // a check failed: paths disagree, catalog invalid, scenario failed
	ExitCommandError = 2 // the command could not run: bad path, unreadable config
)

// ExitError carries the process exit code out of a command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError creates an ExitError with no cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError creates an ExitError around err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the code of the first ExitError in err's chain, or
// ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Error codes shared by all commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeConfig      = "E002" // Config file or flag error
	ErrCodeLoadFailed  = "E004" // Catalog or fixture load failed
	ErrCodeNotFound    = "E005" // Path or filter not found
	ErrCodeStore       = "E006" // Database open/seed failed
	ErrCodeWriteFailed = "E007" // File write error

	// Catalog definition errors
	ErrCodeDefinition     = "E101" // Filter does not bind to its entity
	ErrCodeUntranslatable = "E102" // Filter has no SQL form
	ErrCodeMismatch       = "E201" // In-memory and SQL results differ
)

// Issue is one reportable problem, flattened out of a (possibly joined) error.
type Issue struct {
	Code    string `json:"code"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// issuesFrom flattens err into issues. Definition errors keep their catalog
// code and position; anything else becomes a single generic issue.
func issuesFrom(err error) []Issue {
	var issues []Issue
	for _, e := range flattenErrors(err) {
		var de *catalog.DefinitionError
		if errors.As(e, &de) {
			issues = append(issues, Issue{
				Code:    de.Code,
				Path:    de.Path,
				Message: de.Message,
				Line:    lineOf(de.Pos),
			})
			continue
		}
		issues = append(issues, Issue{Code: ErrCodeGeneric, Message: e.Error()})
	}
	return issues
}

// flattenErrors expands errors.Join trees into their leaves. A wrapped join
// ("run: " + joined) is flattened too; the wrapping context is dropped.
func flattenErrors(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flattenErrors(e)...)
		}
		return out
	}
	for inner := errors.Unwrap(err); inner != nil; inner = errors.Unwrap(inner) {
		if _, ok := inner.(interface{ Unwrap() []error }); ok {
			return flattenErrors(inner)
		}
	}
	return []error{err}
}

// loadErrorCode maps a catalog or fixture load error to a CLI code.
func loadErrorCode(err error) string {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrCodeNotFound
	}
	return ErrCodeLoadFailed
}

// lineOf extracts line number from a cue token.Pos.
func lineOf(pos interface {
	IsValid() bool
	Line() int
}) int {
	if pos != nil && pos.IsValid() {
		return pos.Line()
	}
	return 0
}
