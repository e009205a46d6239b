package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/physiomath/go-physiomath/internal/mathseg"
)

const namespace = "physiomath"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry           *prom.Registry
	formulas           *prom.CounterVec
	completionDuration *prom.HistogramVec
	completions        *prom.CounterVec
	reportDuration     *prom.HistogramVec
	reports            *prom.CounterVec
	httpDuration       *prom.HistogramVec
	busyRejections     prom.Counter
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh registry with the Go and process collectors.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
		reg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.formulas = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "formulas_total",
		Help:      "Rendered formulas by kind and result",
	}, []string{"kind", "result"})
	pr.completionDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "completion_duration_seconds",
		Help:      "Duration of completion requests",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
	}, []string{"model"})
	pr.completions = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "completions_total",
		Help:      "Completion requests by model and outcome",
	}, []string{"model", "outcome"})
	pr.reportDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "report_duration_seconds",
		Help:      "End-to-end report generation duration",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
	}, []string{"mode", "language"})
	pr.reports = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "reports_total",
		Help:      "Reports by mode, language and outcome",
	}, []string{"mode", "language", "outcome"})
	pr.httpDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration by route and status",
		Buckets:   prom.DefBuckets,
	}, []string{"route", "status"})
	pr.busyRejections = prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "busy_rejections_total",
		Help:      "Submissions rejected because a generation was in flight",
	})
	reg.MustRegister(pr.formulas, pr.completionDuration, pr.completions,
		pr.reportDuration, pr.reports, pr.httpDuration, pr.busyRejections)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return HTTPHandler(p.registry)
}

func (p *PrometheusRecorder) ObserveFormula(kind mathseg.Kind, ok bool) {
	if p == nil {
		return
	}
	p.formulas.WithLabelValues(kind.String(), result(ok)).Inc()
}

func (p *PrometheusRecorder) ObserveCompletion(model, outcome string, d time.Duration) {
	if p == nil {
		return
	}
	p.completionDuration.WithLabelValues(model).Observe(d.Seconds())
	p.completions.WithLabelValues(model, outcome).Inc()
}

func (p *PrometheusRecorder) ObserveReport(mode, language, outcome string, d time.Duration) {
	if p == nil {
		return
	}
	p.reportDuration.WithLabelValues(mode, language).Observe(d.Seconds())
	p.reports.WithLabelValues(mode, language, outcome).Inc()
}

func (p *PrometheusRecorder) ObserveHTTP(route string, status int, d time.Duration) {
	if p == nil {
		return
	}
	p.httpDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBusyRejection() {
	if p == nil {
		return
	}
	p.busyRejections.Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failed"
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
