package commands

import (
	"log/slog"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pagecrop/internal/config"
	perrors "git.home.luguber.info/inful/pagecrop/internal/errors"
	"git.home.luguber.info/inful/pagecrop/internal/logfields"
	"git.home.luguber.info/inful/pagecrop/internal/metrics"
	"git.home.luguber.info/inful/pagecrop/internal/pipeline"
	"git.home.luguber.info/inful/pagecrop/internal/progress"
)

// RunCmd implements the 'run' command.
type RunCmd struct {
	Source      string `arg:"" optional:"" help:"Source PDF (overrides job.source)" type:"path"`
	Destination string `arg:"" optional:"" help:"Destination PDF (overrides job.destination)" type:"path"`

	First *int `help:"First page of the range"`
	Last  *int `help:"Last page of the range (default: last page of the document)"`

	CropFlags `embed:""`

	Workers     int    `short:"j" help:"Parallel page workers (default: number of CPUs)"`
	Resolution  int    `help:"Ghostscript output resolution in dpi"`
	Trace       bool   `help:"Log every Ghostscript invocation with its output"`
	Clean       bool   `help:"Remove the working area after the run"`
	Verify      bool   `help:"Check the destination page count after merging"`
	Progress    string `help:"Progress display (lines|bar|none)"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this textfile when the run ends" type:"path"`
	EventsFile  string `name:"events-file" help:"Write JSON-lines progress events to this file" type:"path"`
	NATSURL     string `name:"nats-url" help:"Publish progress events to this NATS server"`
	NATSSubject string `name:"nats-subject" help:"NATS subject for progress events"`
}

func (r *RunCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if err := r.apply(cfg); err != nil {
		return err
	}
	logger := root.newLogger(g.stderr(), cfg)
	slog.SetDefault(logger)

	runID := uuid.NewString()
	reporters := progress.Multi{}
	switch cfg.Output.Progress {
	case config.ProgressBar:
		reporters = append(reporters, progress.NewBarReporter(g.stderr()))
	case config.ProgressNone:
	default:
		reporters = append(reporters, progress.NewLineReporter(g.stdout(), cfg.Output.Locale))
	}

	events, err := openEventReporter(runID, cfg.Events)
	if err != nil {
		return err
	}
	if events != nil {
		reporters = append(reporters, events)
		defer func() {
			if cerr := events.Close(); cerr != nil {
				logger.Warn("Failed to close event sinks", logfields.Error(cerr))
			}
		}()
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var registry *prom.Registry
	if cfg.Metrics.Textfile != "" {
		registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	opts := []pipeline.Option{
		pipeline.WithRunID(runID),
		pipeline.WithLogger(logger),
		pipeline.WithReporter(reporters),
		pipeline.WithRecorder(recorder),
	}
	o, err := pipeline.New(cfg, append(opts, g.Options...)...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := o.Close(); cerr != nil {
			logger.Warn("Failed to clean working area", logfields.Error(cerr))
		}
	}()

	runErr := o.Run(g.context())
	if registry != nil {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile, registry); err != nil {
			logger.Warn("Failed to write metrics", logfields.Path(cfg.Metrics.Textfile), logfields.Error(err))
		}
	}
	if runErr != nil && !cfg.Workspace.Clean {
		logger.Info("Working area kept for inspection", logfields.Path(o.Workspace().GetPath()))
	}
	return runErr
}

// apply overlays command-line flags on the loaded job.
func (r *RunCmd) apply(cfg *config.Config) error {
	if r.Source != "" {
		cfg.Job.Source = r.Source
	}
	if r.Destination != "" {
		cfg.Job.Destination = r.Destination
	}
	if r.First != nil {
		cfg.Job.FirstPage = r.First
	}
	if r.Last != nil {
		cfg.Job.LastPage = r.Last
	}
	if err := r.CropFlags.apply(&cfg.Job); err != nil {
		return err
	}
	if r.Workers > 0 {
		cfg.Workers = r.Workers
	}
	if r.Resolution > 0 {
		cfg.Ghostscript.Resolution = r.Resolution
	}
	if r.Trace {
		cfg.Logging.Trace = true
	}
	if r.Clean {
		cfg.Workspace.Clean = true
	}
	if r.Verify {
		cfg.Output.VerifyOutput = true
	}
	if r.Progress != "" {
		mode := config.NormalizeProgressMode(r.Progress)
		if mode == "" {
			return perrors.ValidationFailed("progress", "expected lines, bar or none")
		}
		cfg.Output.Progress = mode
	}
	if r.MetricsFile != "" {
		cfg.Metrics.Textfile = r.MetricsFile
	}
	if r.EventsFile != "" {
		cfg.Events.File = r.EventsFile
	}
	if r.NATSURL != "" {
		cfg.Events.NATSURL = r.NATSURL
	}
	if r.NATSSubject != "" {
		cfg.Events.NATSSubject = r.NATSSubject
	}
	if cfg.Events.NATSURL != "" && cfg.Events.NATSSubject == "" {
		cfg.Events.NATSSubject = config.DefaultNATSSubject
	}
	return nil
}

// openEventReporter returns nil when no event sink is configured.
func openEventReporter(runID string, ec config.EventsConfig) (*progress.EventReporter, error) {
	var sinks []progress.Sink
	if ec.File != "" {
		s, err := progress.OpenJSONLinesFile(ec.File)
		if err != nil {
			return nil, perrors.WorkspaceError("open events file", err).WithContext("path", ec.File)
		}
		sinks = append(sinks, s)
	}
	if ec.NATSURL != "" {
		s, err := progress.NewNATSSink(ec.NATSURL, ec.NATSSubject)
		if err != nil {
			for _, open := range sinks {
				_ = open.Close()
			}
			return nil, perrors.Wrap(err, perrors.CategoryConfig, perrors.SeverityFatal, "cannot publish events").
				WithContext("nats_url", ec.NATSURL)
		}
		sinks = append(sinks, s)
	}
	if len(sinks) == 0 {
		return nil, nil
	}
	return progress.NewEventReporter(runID, sinks...), nil
}
