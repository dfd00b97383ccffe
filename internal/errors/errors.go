package errors

import (
	"errors"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrCollect = "COLLECT" // external tool missing, failed, or printed nothing
	ErrTimeout = "TIMEOUT" // external tool did not finish within the bound
	ErrParse   = "PARSE"   // no recognizable device in the report
	ErrConfig  = "CONFIG"  // invalid flag, env override, or threshold
	ErrRender  = "RENDER"
	ErrRelease = "RELEASE"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitToolFailed = 1
	ExitNoData     = 2
	ExitUsage      = 3
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// The CLI prints it as a single line:
//
//	✗ <What failed>: <why>. <how to fix>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface. Only the first line of the cause is
// kept so tool stderr never spills across lines.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if e.Cause != nil {
		if cause := firstLine(e.Cause.Error()); cause != "" {
			b.WriteString(": ")
			b.WriteString(cause)
		}
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var smiErr *Error
	if errors.As(err, &smiErr) {
		return smiErr.Code == code
	}
	return false
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsCode(err, ErrParse):
		return ExitNoData
	case IsCode(err, ErrConfig):
		return ExitUsage
	default:
		return ExitToolFailed
	}
}

// Line renders err as the one-line diagnostic printed to stderr.
func Line(err error) string {
	if err == nil {
		return ""
	}

	line := "✗ " + firstLine(err.Error())

	var smiErr *Error
	if errors.As(err, &smiErr) && smiErr.Suggestion != "" {
		line = strings.TrimRight(line, ". ") + ". " + smiErr.Suggestion
	}

	return line
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}
