package dispatch

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	perrors "git.home.luguber.info/inful/pagecrop/internal/errors"
	"git.home.luguber.info/inful/pagecrop/internal/geometry"
	"git.home.luguber.info/inful/pagecrop/internal/logfields"
)

// Dispatcher runs a Task for every page of a range with bounded parallelism.
type Dispatcher struct {
	task    *Task
	workers int
}

// NewDispatcher creates a dispatcher. workers <= 0 uses the number of CPUs.
func NewDispatcher(task *Task, workers int) *Dispatcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Dispatcher{task: task, workers: workers}
}

// Workers returns the pool size used for a range of n pages.
func (d *Dispatcher) Workers(n int) int {
	w := d.workers
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

// RunAll extracts every page of r. After the first fatal page error no new
// pages are started; pages already in flight finish their attempts. The
// first fatal error is returned.
func (d *Dispatcher) RunAll(ctx context.Context, r geometry.PageRange) error {
	workers := d.Workers(r.Len())
	d.task.logger.Info("Extracting pages",
		logfields.Stage("extract"),
		slog.String("range", r.String()),
		logfields.Pages(r.Len()),
		logfields.Workers(workers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, page := range r.Pages() {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			// In-flight pages use the parent context so a sibling's failure
			// does not kill their backend process.
			return d.task.RunPage(ctx, page)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return perrors.Canceled(ctx.Err())
	}
	return nil
}
