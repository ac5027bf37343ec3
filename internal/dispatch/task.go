// Package dispatch runs per-page extraction with bounded retries and fans the
// pages of a range out over a fixed-size worker pool.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	perrors "git.home.luguber.info/inful/pagecrop/internal/errors"
	"git.home.luguber.info/inful/pagecrop/internal/logfields"
	"git.home.luguber.info/inful/pagecrop/internal/metrics"
	"git.home.luguber.info/inful/pagecrop/internal/progress"
	"git.home.luguber.info/inful/pagecrop/internal/retry"
)

// PageFunc makes one attempt at producing the artifact for page.
type PageFunc func(ctx context.Context, page int) error

// Outcome classifies the result of a single attempt.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeRetryable Outcome = "retryable"
	OutcomeFatal     Outcome = "fatal"
)

// Classify maps an attempt error to the next state of the page task.
// Cancellation is never retried.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSucceeded
	case perrors.IsCategory(err, perrors.CategoryCanceled):
		return OutcomeFatal
	case perrors.IsRetryable(err):
		return OutcomeRetryable
	default:
		return OutcomeFatal
	}
}

// TaskOptions configures a Task. Zero values select defaults.
type TaskOptions struct {
	Policy   retry.Policy
	Reporter progress.Reporter
	Recorder metrics.Recorder
	Logger   *slog.Logger
	// Cropped reports whether page is transformed; used for metric labels only.
	Cropped func(page int) bool
}

// Task drives one page through Attempt(n) -> Done | Attempt(n+1) | Fatal.
type Task struct {
	attempt  PageFunc
	counter  *progress.Counter
	policy   retry.Policy
	reporter progress.Reporter
	recorder metrics.Recorder
	logger   *slog.Logger
	cropped  func(int) bool
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewTask wraps attempt with the retry state machine. counter is shared by
// every page of the run.
func NewTask(attempt PageFunc, counter *progress.Counter, opts TaskOptions) *Task {
	t := &Task{
		attempt:  attempt,
		counter:  counter,
		policy:   opts.Policy,
		reporter: opts.Reporter,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		cropped:  opts.Cropped,
		sleep:    sleepContext,
	}
	if t.policy.MaxAttempts < 1 {
		t.policy = retry.DefaultPolicy()
	}
	if t.reporter == nil {
		t.reporter = progress.Nop{}
	}
	if t.recorder == nil {
		t.recorder = metrics.NoopRecorder{}
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.cropped == nil {
		t.cropped = func(int) bool { return false }
	}
	return t
}

// MaxAttempts returns the attempt bound of the task's policy.
func (t *Task) MaxAttempts() int { return t.policy.MaxAttempts }

// RunPage produces the artifact for page, retrying retryable failures. On
// success the shared counter is incremented exactly once and one progress
// notification is emitted. On exhaustion it returns a fatal page error that
// names the page and the number of attempts.
func (t *Task) RunPage(ctx context.Context, page int) error {
	for attempt := 1; ; attempt++ {
		start := time.Now()
		err := t.attempt(ctx, page)

		switch Classify(err) {
		case OutcomeSucceeded:
			t.recorder.ObservePageDuration(time.Since(start), t.cropped(page))
			t.recorder.IncPageResult(metrics.ResultSuccess)
			t.counter.Advance(func(done, total int) {
				t.reporter.PageDone(done, total, page)
			})
			return nil

		case OutcomeRetryable:
			if t.policy.ShouldRetry(attempt) {
				t.logger.Warn("Page extraction failed, retrying",
					logfields.Page(page),
					logfields.Attempt(attempt),
					logfields.MaxAttempts(t.policy.MaxAttempts),
					logfields.Error(err))
				t.recorder.IncPageRetry()
				t.reporter.PageRetry(page, attempt, err)
				if serr := t.sleep(ctx, t.policy.Delay(attempt)); serr != nil {
					t.recorder.IncPageResult(metrics.ResultCanceled)
					return perrors.Canceled(serr).WithContext("page", page)
				}
				continue
			}
			t.recorder.IncPageRetryExhausted()
			return t.fail(page, attempt, perrors.PageFatal(page, attempt, err))

		default:
			if perrors.IsCategory(err, perrors.CategoryCanceled) {
				t.recorder.IncPageResult(metrics.ResultCanceled)
				return err
			}
			return t.fail(page, attempt, err)
		}
	}
}

func (t *Task) fail(page, attempts int, err error) error {
	t.recorder.IncPageResult(metrics.ResultFatal)
	t.logger.Error("Page extraction failed",
		logfields.Page(page),
		logfields.Attempt(attempts),
		logfields.Error(err))
	t.reporter.PageFailed(page, attempts, err)
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
