package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/pagecrop/internal/config"
	perrors "git.home.luguber.info/inful/pagecrop/internal/errors"
	"git.home.luguber.info/inful/pagecrop/internal/pipeline"
)

// Global carries process-wide state into every command's Run method.
type Global struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	// Options are appended to every orchestrator; tests use them to swap
	// in a fake backend.
	Options []pipeline.Option
}

func (g *Global) context() context.Context {
	if g.Ctx == nil {
		return context.Background()
	}
	return g.Ctx
}

func (g *Global) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Global) stderr() io.Writer {
	if g.Stderr == nil {
		return os.Stderr
	}
	return g.Stderr
}

// CLI definition & global flags.
type CLI struct {
	Config    string `short:"c" help:"Job file (YAML). Flags override its values." type:"path"`
	Verbose   bool   `short:"v" help:"Enable verbose logging"`
	LogFormat string `name:"log-format" help:"Log output format (text|json)" enum:"text,json" default:"text"`

	Run     RunCmd     `cmd:"" help:"Extract, crop and merge a page range into a new PDF"`
	Extract ExtractCmd `cmd:"" help:"Extract a single page with the job's crop settings"`
	Init    InitCmd    `cmd:"" help:"Write an example job file"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(c.newLogger(os.Stderr, nil))
	return nil
}

// newLogger builds the process logger. Command-line flags win over the job
// file's logging section.
func (c *CLI) newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	format := config.NormalizeLogFormat(c.LogFormat)
	if cfg != nil {
		switch cfg.Logging.Level {
		case config.LogLevelDebug:
			level = slog.LevelDebug
		case config.LogLevelWarn:
			level = slog.LevelWarn
		case config.LogLevelError:
			level = slog.LevelError
		}
		if format == config.LogFormatText && cfg.Logging.Format == config.LogFormatJSON {
			format = config.LogFormatJSON
		}
	}
	if c.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loadConfig reads the job file when one was given, otherwise starts from
// defaults so a job can be described entirely by flags.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.Config == "" {
		return config.Default(), nil
	}
	if _, err := os.Stat(c.Config); err != nil {
		return nil, perrors.ConfigNotFound(c.Config)
	}
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, perrors.Wrap(err, perrors.CategoryConfig, perrors.SeverityFatal, "failed to load job file").
			WithContext("path", c.Config)
	}
	return cfg, nil
}
