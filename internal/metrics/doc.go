// Package metrics provides observability hooks for pagecrop runs.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default and does nothing; PrometheusRecorder registers collectors on a
// caller-supplied registry. pagecrop is a one-shot batch tool, so the registry
// is exported once at the end of a run with WriteTextfile, in the format read
// by node_exporter's textfile collector:
//
//	reg := prom.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	// ... run ...
//	_ = metrics.WriteTextfile("/var/lib/node_exporter/pagecrop.prom", reg)
package metrics
