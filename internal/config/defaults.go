package config

import (
	"os"
	"strings"
	"time"

	"git.home.luguber.info/inful/pagecrop/internal/geometry"
)

const (
	DefaultMaxAttempts    = 5
	DefaultExtractTimeout = 60 * time.Second
	DefaultMergeTimeout   = 600 * time.Second
	DefaultNATSSubject    = "pagecrop.events"
)

// EnvGhostscript overrides ghostscript.binary when the file leaves it empty.
const EnvGhostscript = "PAGECROP_GS"

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// ApplyDefaults runs every domain applier in order.
func ApplyDefaults(cfg *Config) error {
	appliers := []DefaultApplier{
		&JobDefaultApplier{},
		&RetryDefaultApplier{},
		&TimeoutDefaultApplier{},
		&GhostscriptDefaultApplier{},
		&OutputDefaultApplier{},
	}
	for _, a := range appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

// JobDefaultApplier handles page numbering and crop form defaults.
type JobDefaultApplier struct{}

func (JobDefaultApplier) Domain() string { return "job" }

func (JobDefaultApplier) ApplyDefaults(cfg *Config) error {
	if n := NormalizePageNumbering(string(cfg.Job.Numbering)); n != "" {
		cfg.Job.Numbering = n
	} else {
		cfg.Job.Numbering = NumberingOneBased
	}
	if cfg.Job.Crop != nil {
		switch geometry.RectForm(strings.ToLower(string(cfg.Job.Crop.Form))) {
		case geometry.RectFormCorners:
			cfg.Job.Crop.Form = geometry.RectFormCorners
		default:
			cfg.Job.Crop.Form = geometry.RectFormExtent
		}
	}
	return nil
}

// RetryDefaultApplier handles retry defaults.
type RetryDefaultApplier struct{}

func (RetryDefaultApplier) Domain() string { return "retry" }

func (RetryDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = DefaultMaxAttempts
	}
	if m := NormalizeRetryBackoff(string(cfg.Retry.Backoff)); m != "" {
		cfg.Retry.Backoff = m
	} else {
		cfg.Retry.Backoff = RetryBackoffNone
	}
	return nil
}

// TimeoutDefaultApplier handles subprocess timeouts.
type TimeoutDefaultApplier struct{}

func (TimeoutDefaultApplier) Domain() string { return "timeouts" }

func (TimeoutDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Timeouts.Extract <= 0 {
		cfg.Timeouts.Extract = DefaultExtractTimeout
	}
	if cfg.Timeouts.Merge <= 0 {
		cfg.Timeouts.Merge = DefaultMergeTimeout
	}
	return nil
}

// GhostscriptDefaultApplier resolves the binary override from the environment.
type GhostscriptDefaultApplier struct{}

func (GhostscriptDefaultApplier) Domain() string { return "ghostscript" }

func (GhostscriptDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Ghostscript.Binary == "" {
		cfg.Ghostscript.Binary = os.Getenv(EnvGhostscript)
	}
	if cfg.Ghostscript.Resolution < 0 {
		cfg.Ghostscript.Resolution = 0
	}
	return nil
}

// OutputDefaultApplier handles output, logging and event defaults.
type OutputDefaultApplier struct{}

func (OutputDefaultApplier) Domain() string { return "output" }

func (OutputDefaultApplier) ApplyDefaults(cfg *Config) error {
	if m := NormalizeProgressMode(string(cfg.Output.Progress)); m != "" {
		cfg.Output.Progress = m
	} else {
		cfg.Output.Progress = ProgressLines
	}
	if cfg.Output.Locale == "" {
		cfg.Output.Locale = localeFromEnv()
	}
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	if cfg.Events.NATSURL != "" && cfg.Events.NATSSubject == "" {
		cfg.Events.NATSSubject = DefaultNATSSubject
	}
	if cfg.Workers < 0 {
		cfg.Workers = 0
	}
	return nil
}

// localeFromEnv derives a BCP 47 tag from LC_ALL/LC_NUMERIC/LANG (e.g. de_DE.UTF-8 -> de-DE).
func localeFromEnv() string {
	for _, key := range []string{"LC_ALL", "LC_NUMERIC", "LANG"} {
		v := os.Getenv(key)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		return strings.ReplaceAll(v, "_", "-")
	}
	return "en"
}
