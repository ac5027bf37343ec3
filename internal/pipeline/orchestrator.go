// Package pipeline wires extraction, dispatch and merge into a single run:
// validate, extract every page in parallel, then compose the destination.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pagecrop/internal/backend"
	"git.home.luguber.info/inful/pagecrop/internal/config"
	"git.home.luguber.info/inful/pagecrop/internal/dispatch"
	perrors "git.home.luguber.info/inful/pagecrop/internal/errors"
	"git.home.luguber.info/inful/pagecrop/internal/extract"
	"git.home.luguber.info/inful/pagecrop/internal/geometry"
	"git.home.luguber.info/inful/pagecrop/internal/logfields"
	"git.home.luguber.info/inful/pagecrop/internal/merge"
	"git.home.luguber.info/inful/pagecrop/internal/metrics"
	"git.home.luguber.info/inful/pagecrop/internal/pdfinfo"
	"git.home.luguber.info/inful/pagecrop/internal/procexec"
	"git.home.luguber.info/inful/pagecrop/internal/progress"
	"git.home.luguber.info/inful/pagecrop/internal/retry"
	"git.home.luguber.info/inful/pagecrop/internal/workspace"
)

// Orchestrator owns one job: its page range, working area and collaborators.
type Orchestrator struct {
	cfg   *config.Config
	runID string

	runner   procexec.Runner
	locator  backend.Locator
	reporter progress.Reporter
	recorder metrics.Recorder
	prober   pdfinfo.Prober
	logger   *slog.Logger

	policy    retry.Policy
	pages     geometry.PageRange
	resolver  *geometry.Resolver
	extractor *extract.Extractor
	merger    *merge.Merger
	ws        *workspace.Manager
}

// New validates cfg, resolves the page range, locates Ghostscript and
// creates the working area. Nothing is extracted yet.
func New(cfg *config.Config, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{cfg: cfg}
	for _, opt := range opts {
		opt(o)
	}
	o.applyDefaults()

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	o.policy = retry.FromConfig(cfg.Retry)
	if err := o.policy.Validate(); err != nil {
		return nil, perrors.ValidationFailed("retry", err.Error())
	}
	pages, err := o.resolvePages()
	if err != nil {
		return nil, err
	}
	o.pages = pages

	bin, err := o.locator.Locate()
	if err != nil {
		return nil, err
	}
	o.logger.Debug("Using Ghostscript", logfields.Binary(bin))

	o.resolver = geometry.NewResolver(cfg.Job.Crop.Rect(), cfg.Job.NoCropPages(o.pages))
	o.extractor = extract.New(o.locator, o.runner, extract.Options{
		Source:      cfg.Job.Source,
		Resolution:  cfg.Ghostscript.Resolution,
		Timeout:     cfg.Timeouts.Extract,
		BackendPage: cfg.Job.BackendPage,
	})
	mopts := merge.Options{Timeout: cfg.Timeouts.Merge}
	if cfg.Output.VerifyOutput {
		mopts.Verifier = o.prober
	}
	o.merger = merge.New(o.locator, o.runner, mopts)

	o.ws = workspace.NewManager(cfg.Workspace.BaseDir)
	if err := o.ws.Create(); err != nil {
		return nil, perrors.WorkspaceError("create", err)
	}
	return o, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}
	o.logger = o.logger.With(logfields.RunID(o.runID))
	if o.runner == nil {
		o.runner = procexec.NewExecRunner(o.cfg.Logging.Trace, o.logger)
	}
	if o.locator == nil {
		o.locator = backend.NewGhostscriptLocator(o.cfg.Ghostscript.Binary)
	}
	if o.reporter == nil {
		o.reporter = progress.Nop{}
	}
	if o.recorder == nil {
		o.recorder = metrics.NoopRecorder{}
	}
	if o.prober == nil {
		o.prober = pdfinfo.PDFCPU{}
	}
}

func (o *Orchestrator) resolvePages() (geometry.PageRange, error) {
	count := 0
	if o.cfg.Job.LastPage == nil {
		n, err := o.prober.PageCount(o.cfg.Job.Source)
		if err != nil {
			return geometry.PageRange{}, perrors.Wrap(err, perrors.CategoryValidation, perrors.SeverityFatal,
				"cannot determine page count, set last_page").WithContext("path", o.cfg.Job.Source)
		}
		count = n
	}
	return config.ResolvePageRange(o.cfg.Job, count)
}

// RunID identifies this run in logs, events and metrics.
func (o *Orchestrator) RunID() string { return o.runID }

// Pages returns the resolved page range.
func (o *Orchestrator) Pages() geometry.PageRange { return o.pages }

// Workspace returns the working area holding the page artifacts.
func (o *Orchestrator) Workspace() *workspace.Manager { return o.ws }

// Run extracts every page of the range and merges the artifacts into the
// destination. The merge only runs after every page succeeded; on any error
// the destination is left untouched.
func (o *Orchestrator) Run(ctx context.Context) (err error) {
	start := time.Now()
	outcome := metrics.OutcomeSplitFailed
	defer func() {
		switch {
		case err == nil:
			outcome = metrics.OutcomeSuccess
		case perrors.IsCategory(err, perrors.CategoryCanceled):
			outcome = metrics.OutcomeCanceled
		}
		o.recorder.ObserveRunDuration(time.Since(start))
		o.recorder.IncRunOutcome(outcome)
		o.reporter.RunFinished(err)
		if err != nil {
			o.logger.Error("Run failed", slog.String("outcome", string(outcome)), logfields.Error(err))
			return
		}
		o.logger.Info("Run finished",
			logfields.Path(o.cfg.Job.Destination),
			logfields.Pages(o.pages.Len()),
			logfields.Duration(time.Since(start)))
	}()

	o.logger.Info("Run started",
		slog.String("source", o.cfg.Job.Source),
		slog.String("destination", o.cfg.Job.Destination),
		slog.String("range", o.pages.String()),
		logfields.Path(o.ws.GetPath()))

	counter := progress.NewCounter(o.pages.Len())
	d := dispatch.NewDispatcher(o.newTask(counter, o.extractToWorkspace), o.cfg.Workers)
	o.recorder.SetWorkers(d.Workers(o.pages.Len()))
	if err := d.RunAll(ctx, o.pages); err != nil {
		if missing := o.ws.Missing(o.pages); len(missing) > 0 {
			o.logger.Debug("Pages without artifact", logfields.Stage("extract"), slog.Any("pages", missing))
		}
		return err
	}

	outcome = metrics.OutcomeMergeFailed
	o.reporter.MergeStarted(o.pages.Len())
	mergeStart := time.Now()
	err = o.merger.Merge(ctx, o.pages, o.ws.ArtifactPath, o.cfg.Job.Destination)
	o.recorder.ObserveMergeDuration(time.Since(mergeStart), err == nil)
	return err
}

// ExtractSingle extracts one page, with retries, straight to out. The page
// goes through the same crop resolution as a full run.
func (o *Orchestrator) ExtractSingle(ctx context.Context, page int, out string) error {
	if !o.pages.Contains(page) {
		return perrors.ValidationFailed("page", fmt.Sprintf("page %d is outside %s", page, o.pages))
	}
	task := o.newTask(progress.NewCounter(1), func(ctx context.Context, p int) error {
		return o.extractor.Extract(ctx, p, out, o.geometryFor(p))
	})
	return task.RunPage(ctx, page)
}

// Close removes the working area when workspace.clean is set.
func (o *Orchestrator) Close() error {
	if o.ws == nil || !o.cfg.Workspace.Clean {
		return nil
	}
	if err := o.ws.Cleanup(); err != nil {
		return perrors.WorkspaceError("cleanup", err)
	}
	return nil
}

func (o *Orchestrator) newTask(counter *progress.Counter, attempt dispatch.PageFunc) *dispatch.Task {
	return dispatch.NewTask(attempt, counter, dispatch.TaskOptions{
		Policy:   o.policy,
		Reporter: o.reporter,
		Recorder: o.recorder,
		Logger:   o.logger,
		Cropped:  func(p int) bool { return o.geometryFor(p) != nil },
	})
}

func (o *Orchestrator) extractToWorkspace(ctx context.Context, page int) error {
	return o.extractor.Extract(ctx, page, o.ws.ArtifactPath(page), o.geometryFor(page))
}

func (o *Orchestrator) geometryFor(page int) *geometry.Geometry {
	g, ok := o.resolver.Resolve(page)
	if !ok {
		return nil
	}
	return &g
}
