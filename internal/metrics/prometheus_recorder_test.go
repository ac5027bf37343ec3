package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObservePageDuration(150*time.Millisecond, true)
	pr.IncPageResult(ResultSuccess)
	pr.IncPageResult(ResultSuccess)
	pr.IncPageRetry()
	pr.IncPageRetryExhausted()
	pr.ObserveMergeDuration(2*time.Second, true)
	pr.ObserveRunDuration(3 * time.Second)
	pr.IncRunOutcome(OutcomeSuccess)
	pr.SetWorkers(8)

	if got := testutil.ToFloat64(pr.pageResults.WithLabelValues("success")); got != 2 {
		t.Fatalf("expected 2 successful pages, got %v", got)
	}
	if got := testutil.ToFloat64(pr.workers); got != 8 {
		t.Fatalf("expected workers gauge 8, got %v", got)
	}
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncRunOutcome(OutcomeMergeFailed)

	path := filepath.Join(t.TempDir(), "pagecrop.prom")
	if err := WriteTextfile(path, reg); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `pagecrop_run_outcomes_total{outcome="merge_failed"} 1`) {
		t.Fatalf("unexpected textfile contents:\n%s", data)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObservePageDuration(time.Second, false)
	r.IncPageResult(ResultFatal)
	r.IncPageRetry()
	r.IncPageRetryExhausted()
	r.ObserveMergeDuration(time.Second, false)
	r.ObserveRunDuration(time.Second)
	r.IncRunOutcome(OutcomeCanceled)
	r.SetWorkers(1)
}
