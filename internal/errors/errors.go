package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorType represents the category of error
type ErrorType int

const (
	// Repository errors - the analysis root is not a usable git working copy
	ErrorTypeRepository ErrorType = iota
	// Query errors - a single history query failed
	ErrorTypeQuery
	// Parse errors - malformed manifest diff line or unrecognized path
	ErrorTypeParse
	// Phase generation errors - tooling categorization/naming failed for a bucket
	ErrorTypePhaseGeneration
	// Configuration errors - missing or invalid configuration
	ErrorTypeConfig
	// External errors - optional collaborators (package registry) failed
	ErrorTypeExternal
	// Storage errors - run history persistence failed
	ErrorTypeStorage
	// Internal errors - unexpected internal state
	ErrorTypeInternal
)

// Severity represents how critical an error is
type Severity int

const (
	// SeverityLow - recovered locally, output for other items unaffected
	SeverityLow Severity = iota
	// SeverityMedium - should be addressed but not fatal
	SeverityMedium
	// SeverityHigh - significant issue, may impact functionality
	SeverityHigh
	// SeverityCritical - must be addressed, stops execution
	SeverityCritical
)

// Error represents a structured error with context
type Error struct {
	Type       ErrorType
	Severity   Severity
	Message    string
	Cause      error
	Context    map[string]interface{}
	StackTrace string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Is checks if this error matches the target error type
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsFatal returns true if this error should stop execution
func (e *Error) IsFatal() bool {
	return e.Severity == SeverityCritical
}

// DetailedString returns a detailed error message with context
func (e *Error) DetailedString() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] [%s] %s\n",
		severityString(e.Severity),
		e.Type.String(),
		e.Message))

	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf("Caused by: %v\n", e.Cause))
	}

	if len(e.Context) > 0 {
		sb.WriteString("Context:\n")
		for k, v := range e.Context {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", k, v))
		}
	}

	if e.StackTrace != "" {
		sb.WriteString(fmt.Sprintf("Stack trace:\n%s\n", e.StackTrace))
	}

	return sb.String()
}

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeRepository:
		return "REPOSITORY"
	case ErrorTypeQuery:
		return "QUERY"
	case ErrorTypeParse:
		return "PARSE"
	case ErrorTypePhaseGeneration:
		return "PHASE_GENERATION"
	case ErrorTypeConfig:
		return "CONFIG"
	case ErrorTypeExternal:
		return "EXTERNAL"
	case ErrorTypeStorage:
		return "STORAGE"
	case ErrorTypeInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

func severityString(s Severity) string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// captureStackTrace captures the current stack trace
func captureStackTrace(skip int) string {
	var sb strings.Builder
	for i := skip; i < skip+10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			break
		}
		sb.WriteString(fmt.Sprintf("  %s:%d %s\n", file, line, fn.Name()))
	}
	return sb.String()
}

// New creates a new error with the given type, severity, and message
func New(errType ErrorType, severity Severity, message string) *Error {
	return &Error{
		Type:       errType,
		Severity:   severity,
		Message:    message,
		Context:    make(map[string]interface{}),
		StackTrace: captureStackTrace(2),
	}
}

// Wrap wraps an existing error with additional context.
// A nil err still yields an error so callers can report typed failures
// that have no underlying cause.
func Wrap(err error, errType ErrorType, severity Severity, message string) *Error {
	return &Error{
		Type:       errType,
		Severity:   severity,
		Message:    message,
		Cause:      err,
		Context:    make(map[string]interface{}),
		StackTrace: captureStackTrace(2),
	}
}

// RepositoryErrorf wraps a failure to open the analysis root. It is the
// only error that aborts a run.
func RepositoryErrorf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, ErrorTypeRepository, SeverityCritical, fmt.Sprintf(format, args...))
}

// QueryErrorf wraps a failed per-commit history query
func QueryErrorf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, ErrorTypeQuery, SeverityLow, fmt.Sprintf(format, args...))
}

// ParseErrorf wraps a malformed manifest diff or path
func ParseErrorf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, ErrorTypeParse, SeverityLow, fmt.Sprintf(format, args...))
}

// PhaseGenerationErrorf reports a tooling phase that could not be named
func PhaseGenerationErrorf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, ErrorTypePhaseGeneration, SeverityLow, fmt.Sprintf(format, args...))
}

// ConfigError creates a configuration error
func ConfigError(message string) *Error {
	return New(ErrorTypeConfig, SeverityCritical, message)
}

// ConfigErrorf creates a configuration error with formatting
func ConfigErrorf(format string, args ...interface{}) *Error {
	return New(ErrorTypeConfig, SeverityCritical, fmt.Sprintf(format, args...))
}

// ExternalErrorf wraps an external service error with formatting
func ExternalErrorf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, ErrorTypeExternal, SeverityMedium, fmt.Sprintf(format, args...))
}

// StorageErrorf wraps a persistence error with formatting
func StorageErrorf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, ErrorTypeStorage, SeverityHigh, fmt.Sprintf(format, args...))
}

// InternalErrorf creates an internal error with formatting
func InternalErrorf(format string, args ...interface{}) *Error {
	return New(ErrorTypeInternal, SeverityCritical, fmt.Sprintf(format, args...))
}

// IsFatal checks if an error is fatal (should stop execution)
func IsFatal(err error) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.IsFatal()
	}
	return false
}

// IsType reports whether err, or anything it wraps, is an *Error of type t
func IsType(err error, t ErrorType) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// GetType returns the type of an error
func GetType(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeInternal
}
