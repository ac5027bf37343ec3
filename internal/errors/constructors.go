package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *PagecropError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func SourceNotFound(path string, cause error) *PagecropError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "source document not found").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *PagecropError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

func BackendNotFound(cause error) *PagecropError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "ghostscript not available")
}

// Pipeline errors

// ExtractionAttemptFailed marks a single failed rendering attempt; the page task may retry it.
func ExtractionAttemptFailed(page int, cause error) *PagecropError {
	return WrapRetryable(cause, CategoryExtraction, SeverityWarning, "page extraction attempt failed").
		WithContext("page", page)
}

// PageFatal marks a page whose retries are exhausted.
func PageFatal(page, attempts int, cause error) *PagecropError {
	return Wrap(cause, CategoryExtraction, SeverityFatal, "page extraction failed after retries").
		WithContext("page", page).
		WithContext("attempts", attempts)
}

func MergeFailed(destination string, cause error) *PagecropError {
	return Wrap(cause, CategoryMerge, SeverityFatal, "merge failed").
		WithContext("destination", destination)
}

func WorkspaceError(operation string, cause error) *PagecropError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "workspace operation failed").
		WithContext("operation", operation)
}

func Canceled(cause error) *PagecropError {
	return Wrap(cause, CategoryCanceled, SeverityFatal, "run canceled")
}

// Internal errors

func InternalError(message string, cause error) *PagecropError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
