package config

import "strings"

// PageNumbering selects the convention used for user-facing page numbers.
type PageNumbering string

const (
	NumberingOneBased  PageNumbering = "one"
	NumberingZeroBased PageNumbering = "zero"
)

// NormalizePageNumbering converts user input into a typed convention, returning empty string for unknown.
func NormalizePageNumbering(raw string) PageNumbering {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "one", "1", "one-based":
		return NumberingOneBased
	case "zero", "0", "zero-based":
		return NumberingZeroBased
	default:
		return ""
	}
}

// Base returns the lowest valid page number under this convention.
func (n PageNumbering) Base() int {
	if n == NumberingZeroBased {
		return 0
	}
	return 1
}

// RetryBackoffMode enumerates supported backoff strategies for retries.
type RetryBackoffMode string

const (
	RetryBackoffNone        RetryBackoffMode = "none"
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// NormalizeRetryBackoff converts arbitrary user input (case-insensitive) into a typed mode, returning empty string for unknown.
func NormalizeRetryBackoff(raw string) RetryBackoffMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(RetryBackoffNone):
		return RetryBackoffNone
	case string(RetryBackoffFixed):
		return RetryBackoffFixed
	case string(RetryBackoffLinear):
		return RetryBackoffLinear
	case string(RetryBackoffExponential):
		return RetryBackoffExponential
	default:
		return ""
	}
}

// ProgressMode selects how page completion is displayed.
type ProgressMode string

const (
	ProgressLines ProgressMode = "lines"
	ProgressBar   ProgressMode = "bar"
	ProgressNone  ProgressMode = "none"
)

func NormalizeProgressMode(raw string) ProgressMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "lines", "line":
		return ProgressLines
	case "bar":
		return ProgressBar
	case "none", "off", "quiet":
		return ProgressNone
	default:
		return ""
	}
}

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func NormalizeLogLevel(raw string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

func NormalizeLogFormat(raw string) LogFormat {
	if strings.ToLower(strings.TrimSpace(raw)) == "json" {
		return LogFormatJSON
	}
	return LogFormatText
}
