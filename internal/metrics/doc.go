// Package metrics records generation, formula and HTTP metrics.
//
// Components receive a Recorder and default to NoopRecorder, so metrics are
// optional everywhere. PrometheusRecorder is the real implementation; the
// server exposes its registry through HTTPHandler.
package metrics
