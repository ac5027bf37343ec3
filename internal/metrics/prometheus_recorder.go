package metrics

import (
	"fmt"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "pagecrop"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	pageDuration   *prom.HistogramVec
	pageResults    *prom.CounterVec
	retries        prom.Counter
	retryExhausted prom.Counter
	mergeDuration  *prom.HistogramVec
	runDuration    prom.Histogram
	runOutcome     *prom.CounterVec
	workers        prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		pageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "page_extract_duration_seconds",
			Help:      "Duration of successful single-page extractions",
			Buckets:   prom.DefBuckets,
		}, []string{"cropped"}),
		pageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "page_results_total",
			Help:      "Page results by final outcome",
		}, []string{"result"}),
		retries: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "page_retries_total",
			Help:      "Extraction attempts that failed and were retried",
		}),
		retryExhausted: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "page_retry_exhausted_total",
			Help:      "Pages whose retries were exhausted",
		}),
		mergeDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "merge_duration_seconds",
			Help:      "Duration of the composition step",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"result"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total run duration",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Run outcomes by final status",
		}, []string{"outcome"}),
		workers: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "workers",
			Help:      "Worker pool size used for page extraction",
		}),
	}
	reg.MustRegister(pr.pageDuration, pr.pageResults, pr.retries, pr.retryExhausted,
		pr.mergeDuration, pr.runDuration, pr.runOutcome, pr.workers)
	return pr
}

func (p *PrometheusRecorder) ObservePageDuration(d time.Duration, cropped bool) {
	p.pageDuration.WithLabelValues(strconv.FormatBool(cropped)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageResult(result ResultLabel) {
	p.pageResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncPageRetry() { p.retries.Inc() }

func (p *PrometheusRecorder) IncPageRetryExhausted() { p.retryExhausted.Inc() }

func (p *PrometheusRecorder) ObserveMergeDuration(d time.Duration, success bool) {
	res := "failed"
	if success {
		res = "success"
	}
	p.mergeDuration.WithLabelValues(res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome OutcomeLabel) {
	p.runOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetWorkers(n int) { p.workers.Set(float64(n)) }

// WriteTextfile writes every metric gathered from g to path in the text
// exposition format. The file is replaced atomically.
func WriteTextfile(path string, g prom.Gatherer) error {
	if err := prom.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
