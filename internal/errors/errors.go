// Package errors provides a lightweight structured error type (PagecropError)
// for category-based classification, retry semantics and CLI exit codes.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a pagecrop error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// External service errors
	CategoryExtraction ErrorCategory = "extraction"
	CategoryMerge      ErrorCategory = "merge"

	// Runtime and infrastructure errors
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryCanceled   ErrorCategory = "canceled"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// Sentinels shared by the extractor, merger and backend locator.
var (
	// ErrExtractionFailed indicates the rendering service exited non-zero or timed out.
	ErrExtractionFailed = stdErrors.New("page extraction failed")
	// ErrMergeFailed indicates the composition service exited non-zero or timed out.
	ErrMergeFailed = stdErrors.New("merge failed")
	// ErrBinaryNotFound indicates no rendering backend executable could be located.
	ErrBinaryNotFound = stdErrors.New("rendering backend binary not found")
	// ErrTimeout indicates a subprocess exceeded its deadline.
	ErrTimeout = stdErrors.New("process timed out")
)

// PagecropError is a structured error with category, retryability, and context
type PagecropError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for PagecropError
type ContextFields map[string]any

// Error implements the error interface
func (e *PagecropError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *PagecropError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *PagecropError) WithContext(key string, value any) *PagecropError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new PagecropError
func New(category ErrorCategory, severity ErrorSeverity, message string) *PagecropError {
	return &PagecropError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new PagecropError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *PagecropError {
	return &PagecropError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// WrapRetryable creates a new retryable PagecropError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *PagecropError {
	return &PagecropError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// As returns the outermost PagecropError in err's chain.
func As(err error) (*PagecropError, bool) {
	var pe *PagecropError
	if stdErrors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if pe, ok := As(err); ok {
		return pe.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if pe, ok := As(err); ok {
		return pe.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a PagecropError
func GetCategory(err error) ErrorCategory {
	if pe, ok := As(err); ok {
		return pe.Category
	}
	return CategoryInternal
}
