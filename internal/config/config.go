package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pagecrop/internal/geometry"
)

// Config represents a single pagecrop job and its runtime settings.
type Config struct {
	Job         Job               `yaml:"job"`
	Ghostscript GhostscriptConfig `yaml:"ghostscript"`
	Retry       RetryConfig       `yaml:"retry"`
	Timeouts    TimeoutConfig     `yaml:"timeouts"`
	Workers     int               `yaml:"workers,omitempty"` // 0 = number of CPUs
	Workspace   WorkspaceConfig   `yaml:"workspace"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Events      EventsConfig      `yaml:"events"`
}

// Job describes what to transform.
type Job struct {
	Source      string        `yaml:"source"`
	Destination string        `yaml:"destination"`
	FirstPage   *int          `yaml:"first_page,omitempty"` // nil = first page of the numbering convention
	LastPage    *int          `yaml:"last_page,omitempty"`  // nil = detect from document
	Numbering   PageNumbering `yaml:"numbering,omitempty"`
	Crop        *CropConfig   `yaml:"crop,omitempty"`
	NoCrop      string        `yaml:"no_crop,omitempty"` // e.g. "1,2,5-7"
}

// CropConfig is the crop rectangle in points. Width/Height are read for the
// extent form, Right/Bottom for the corners form.
type CropConfig struct {
	Form   geometry.RectForm `yaml:"form,omitempty"`
	Left   int               `yaml:"left"`
	Top    int               `yaml:"top"`
	Width  int               `yaml:"width,omitempty"`
	Height int               `yaml:"height,omitempty"`
	Right  int               `yaml:"right,omitempty"`
	Bottom int               `yaml:"bottom,omitempty"`
}

// Rect converts the crop configuration into a geometry rectangle.
func (c *CropConfig) Rect() *geometry.Rect {
	if c == nil {
		return nil
	}
	r := &geometry.Rect{Left: c.Left, Top: c.Top, Form: c.Form}
	if c.Form == geometry.RectFormCorners {
		r.A, r.B = c.Right, c.Bottom
	} else {
		r.A, r.B = c.Width, c.Height
	}
	return r
}

// GhostscriptConfig locates and tunes the rendering backend.
type GhostscriptConfig struct {
	Binary     string `yaml:"binary,omitempty"`     // explicit path; falls back to PAGECROP_GS then PATH
	Resolution int    `yaml:"resolution,omitempty"` // -r<dpi>, 0 = device default
}

// RetryConfig controls per-page extraction retries.
type RetryConfig struct {
	MaxAttempts int              `yaml:"max_attempts,omitempty"`
	Backoff     RetryBackoffMode `yaml:"backoff,omitempty"`
	Initial     time.Duration    `yaml:"initial,omitempty"`
	Max         time.Duration    `yaml:"max,omitempty"`
}

// TimeoutConfig bounds each external invocation.
type TimeoutConfig struct {
	Extract time.Duration `yaml:"extract,omitempty"`
	Merge   time.Duration `yaml:"merge,omitempty"`
}

// WorkspaceConfig controls the private working area.
type WorkspaceConfig struct {
	BaseDir string `yaml:"base_dir,omitempty"`
	Clean   bool   `yaml:"clean,omitempty"` // remove the working area when the run ends
}

// OutputConfig controls user-visible output and post-merge checks.
type OutputConfig struct {
	Progress     ProgressMode `yaml:"progress,omitempty"`
	Locale       string       `yaml:"locale,omitempty"`
	VerifyOutput bool         `yaml:"verify_output,omitempty"`
}

// LoggingConfig controls slog setup and subprocess tracing.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
	Trace  bool      `yaml:"trace,omitempty"`
}

// MetricsConfig enables the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// EventsConfig enables machine-readable progress events.
type EventsConfig struct {
	File        string `yaml:"file,omitempty"`
	NATSURL     string `yaml:"nats_url,omitempty"`
	NATSSubject string `yaml:"nats_subject,omitempty"`
}

// Load loads configuration from the specified file and applies defaults.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := ApplyDefaults(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied and no job set.
func Default() *Config {
	cfg := &Config{}
	_ = ApplyDefaults(cfg)
	return cfg
}

// Init creates a new job file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	first, last := 1, 12
	example := Config{
		Job: Job{
			Source:      "input.pdf",
			Destination: "cropped.pdf",
			FirstPage:   &first,
			LastPage:    &last,
			Numbering:   NumberingOneBased,
			Crop: &CropConfig{
				Form:   geometry.RectFormCorners,
				Left:   36,
				Top:    36,
				Right:  576,
				Bottom: 756,
			},
			NoCrop: "1,12",
		},
		Retry:    RetryConfig{MaxAttempts: DefaultMaxAttempts, Backoff: RetryBackoffNone},
		Timeouts: TimeoutConfig{Extract: DefaultExtractTimeout, Merge: DefaultMergeTimeout},
		Output:   OutputConfig{Progress: ProgressLines, Locale: "en"},
		Logging:  LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
