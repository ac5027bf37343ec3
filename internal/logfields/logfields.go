package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyPage       = "page"
	KeyAttempt    = "attempt"
	KeyMaxAttempt = "max_attempts"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyBinary     = "binary"
	KeyWorkers    = "workers"
	KeyPages      = "pages"
	KeyExitCode   = "exit_code"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Page(p int) slog.Attr            { return slog.Int(KeyPage, p) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func MaxAttempts(n int) slog.Attr     { return slog.Int(KeyMaxAttempt, n) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Binary(b string) slog.Attr       { return slog.String(KeyBinary, b) }
func Workers(n int) slog.Attr         { return slog.Int(KeyWorkers, n) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }
func ExitCode(code int) slog.Attr     { return slog.Int(KeyExitCode, code) }
func Duration(d time.Duration) slog.Attr {
	return DurationMS(float64(d.Microseconds()) / 1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
