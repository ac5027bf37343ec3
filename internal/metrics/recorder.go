package metrics

import "time"

// ResultLabel enumerates page result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// OutcomeLabel enumerates final run outcomes.
type OutcomeLabel string

const (
	OutcomeSuccess     OutcomeLabel = "success"
	OutcomeSplitFailed OutcomeLabel = "split_failed"
	OutcomeMergeFailed OutcomeLabel = "merge_failed"
	OutcomeCanceled    OutcomeLabel = "canceled"
)

// Recorder defines observability hooks for page extraction, merge and run
// outcome. Implementations must be safe for concurrent use by page workers.
type Recorder interface {
	ObservePageDuration(d time.Duration, cropped bool)
	IncPageResult(result ResultLabel)
	IncPageRetry()
	IncPageRetryExhausted()
	ObserveMergeDuration(d time.Duration, success bool)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome OutcomeLabel)
	SetWorkers(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePageDuration(time.Duration, bool)  {}
func (NoopRecorder) IncPageResult(ResultLabel)                {}
func (NoopRecorder) IncPageRetry()                            {}
func (NoopRecorder) IncPageRetryExhausted()                   {}
func (NoopRecorder) ObserveMergeDuration(time.Duration, bool) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)         {}
func (NoopRecorder) IncRunOutcome(OutcomeLabel)               {}
func (NoopRecorder) SetWorkers(int)                           {}
