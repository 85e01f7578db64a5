package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sitetrack/internal/engine/tracking"
)

// TrackingMetrics records page browse submissions. It satisfies both
// tracking.Recorder and tracking.DispatchObserver.
type TrackingMetrics struct {
	submissionsTotal *prometheus.CounterVec
	submitDuration   *prometheus.HistogramVec
	droppedTotal     prometheus.Counter
	inFlight         prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewTrackingMetrics registers the collectors on a private registry.
func NewTrackingMetrics(namespace string) *TrackingMetrics {
	return NewTrackingMetricsWithRegistry(namespace, prometheus.NewRegistry())
}

func NewTrackingMetricsWithRegistry(namespace string, registry *prometheus.Registry) *TrackingMetrics {
	m := &TrackingMetrics{gatherer: registry}

	m.submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracking",
			Name:      "submissions_total",
			Help:      "Page browse submissions by result",
		},
		[]string{"result"},
	)

	m.submitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tracking",
			Name:      "submit_duration_seconds",
			Help:      "Time spent building, signing and sending a submission",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"result"},
	)

	m.droppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tracking",
		Name:      "dropped_total",
		Help:      "Submissions dropped because the in-flight limit was reached",
	})

	m.inFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "tracking",
		Name:      "in_flight",
		Help:      "Submissions currently running",
	})

	registry.MustRegister(m.submissionsTotal, m.submitDuration, m.droppedTotal, m.inFlight)
	return m
}

func (m *TrackingMetrics) Record(_ context.Context, o tracking.Outcome) {
	result := o.Result.String()
	m.submissionsTotal.WithLabelValues(result).Inc()
	if o.Result.Attempted() {
		m.submitDuration.WithLabelValues(result).Observe(o.Duration.Seconds())
	}
}

func (m *TrackingMetrics) RecordDrop() {
	m.droppedTotal.Inc()
	m.submissionsTotal.WithLabelValues(tracking.ResultDropped.String()).Inc()
}

func (m *TrackingMetrics) SetInFlight(n int64) {
	m.inFlight.Set(float64(n))
}

// Handler exposes the registry in the Prometheus text format.
func (m *TrackingMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
