package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gitsync"

// Metrics tracks reconciliation activity. All methods are safe on a nil
// receiver so components can run without metrics.
type Metrics struct {
	passes               prometheus.Counter
	passDuration         prometheus.Histogram
	lastPass             prometheus.Gauge
	refreshFailures      prometheus.Counter
	namespaceFailures    *prometheus.CounterVec
	manifestApplies      *prometheus.CounterVec
	annotations          *prometheus.CounterVec
	deploymentsCompleted *prometheus.CounterVec
	notifyFailures       *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Reconciliation passes completed.",
		}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of reconciliation passes.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		lastPass: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_pass_timestamp_seconds",
			Help:      "Unix time the last reconciliation pass finished.",
		}),
		refreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repository_refresh_failures_total",
			Help:      "Repository refreshes that failed and fell back to the last known revision.",
		}),
		namespaceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "namespace_failures_total",
			Help:      "Namespaces whose processing failed within a pass.",
		}, []string{"namespace"}),
		manifestApplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifest_applies_total",
			Help:      "Manifest directory applies by outcome.",
		}, []string{"namespace", "result"}),
		annotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deployment_annotations_total",
			Help:      "Deployments annotated with a new applied-version.",
		}, []string{"namespace"}),
		deploymentsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deployments_completed_total",
			Help:      "Deployments that finished rolling out a revision.",
		}, []string{"namespace", "deployment"}),
		notifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_failures_total",
			Help:      "Notification sink failures.",
		}, []string{"sink"}),
	}

	reg.MustRegister(
		m.passes, m.passDuration, m.lastPass, m.refreshFailures,
		m.namespaceFailures, m.manifestApplies, m.annotations,
		m.deploymentsCompleted, m.notifyFailures,
	)
	return m
}

// ObservePass records a finished pass.
func (m *Metrics) ObservePass(duration time.Duration, finished time.Time) {
	if m == nil {
		return
	}
	m.passes.Inc()
	m.passDuration.Observe(duration.Seconds())
	m.lastPass.Set(float64(finished.Unix()))
}

func (m *Metrics) RecordRefreshFailure() {
	if m == nil {
		return
	}
	m.refreshFailures.Inc()
}

func (m *Metrics) RecordNamespaceFailure(ns string) {
	if m == nil {
		return
	}
	m.namespaceFailures.WithLabelValues(ns).Inc()
}

// RecordManifestApply records one directory apply; result is one of
// "applied", "failed" or "empty".
func (m *Metrics) RecordManifestApply(ns, result string) {
	if m == nil {
		return
	}
	m.manifestApplies.WithLabelValues(ns, result).Inc()
}

func (m *Metrics) RecordAnnotations(ns string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.annotations.WithLabelValues(ns).Add(float64(count))
}

func (m *Metrics) RecordDeploymentCompleted(ns, deployment string) {
	if m == nil {
		return
	}
	m.deploymentsCompleted.WithLabelValues(ns, deployment).Inc()
}

func (m *Metrics) RecordNotifyFailure(sink string) {
	if m == nil {
		return
	}
	m.notifyFailures.WithLabelValues(sink).Inc()
}

// Handler serves /metrics from gatherer and a /healthz probe.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
