package pipeline

import (
	"log/slog"

	"git.home.luguber.info/inful/pagecrop/internal/backend"
	"git.home.luguber.info/inful/pagecrop/internal/metrics"
	"git.home.luguber.info/inful/pagecrop/internal/pdfinfo"
	"git.home.luguber.info/inful/pagecrop/internal/procexec"
	"git.home.luguber.info/inful/pagecrop/internal/progress"
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRunner replaces the subprocess runner used for every backend call.
func WithRunner(r procexec.Runner) Option {
	return func(o *Orchestrator) { o.runner = r }
}

// WithLocator replaces the Ghostscript locator.
func WithLocator(l backend.Locator) Option {
	return func(o *Orchestrator) { o.locator = l }
}

// WithReporter sets the progress reporter.
func WithReporter(r progress.Reporter) Option {
	return func(o *Orchestrator) { o.reporter = r }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithProber sets the document inspector used for page counts.
func WithProber(p pdfinfo.Prober) Option {
	return func(o *Orchestrator) { o.prober = p }
}

// WithLogger sets the logger; the run id is attached to every record.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(o *Orchestrator) { o.runID = id }
}
