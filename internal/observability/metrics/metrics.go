package metrics

import "github.com/prometheus/client_golang/prometheus"

// EngineMetrics exposes counters/histograms for the selection and
// experimentation paths.
type EngineMetrics struct {
	selectionsTotal         *prometheus.CounterVec
	allocationsTotal        *prometheus.CounterVec
	droppedConversionsTotal *prometheus.CounterVec
	flushFailuresTotal      prometheus.Counter
	selectionLatency        prometheus.Histogram
}

func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		selectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atelier",
			Subsystem: "engine",
			Name:      "selections_total",
			Help:      "Total response selections by intent and outcome",
		}, []string{"intent", "outcome"}),
		allocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atelier",
			Subsystem: "experiment",
			Name:      "allocations_total",
			Help:      "Total bandit variant allocations",
		}, []string{"experiment"}),
		droppedConversionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atelier",
			Subsystem: "experiment",
			Name:      "dropped_conversions_total",
			Help:      "Conversion events dropped against unknown or terminal experiments",
		}, []string{"reason"}),
		flushFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "atelier",
			Subsystem: "analytics",
			Name:      "flush_failures_total",
			Help:      "Failed analytics flushes that were re-queued",
		}),
		selectionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "atelier",
			Subsystem: "engine",
			Name:      "selection_latency_seconds",
			Help:      "Latency of the response selection path",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.selectionsTotal, m.allocationsTotal, m.droppedConversionsTotal, m.flushFailuresTotal, m.selectionLatency)
	return m
}

func (m *EngineMetrics) ObserveSelection(intent, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.selectionsTotal.WithLabelValues(intent, outcome).Inc()
	m.selectionLatency.Observe(seconds)
}

func (m *EngineMetrics) ObserveAllocation(experimentID string) {
	if m == nil {
		return
	}
	m.allocationsTotal.WithLabelValues(experimentID).Inc()
}

func (m *EngineMetrics) ObserveDroppedConversion(reason string) {
	if m == nil {
		return
	}
	m.droppedConversionsTotal.WithLabelValues(reason).Inc()
}

func (m *EngineMetrics) ObserveFlushFailure() {
	if m == nil {
		return
	}
	m.flushFailuresTotal.Inc()
}
