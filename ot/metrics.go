package ot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors updated by a Sequencer and by
// TransformSets. A nil *Metrics records nothing.
type Metrics struct {
	applied         *prometheus.CounterVec
	rejected        *prometheus.CounterVec
	transformations prometheus.Counter
	version         prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		applied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vctree",
			Subsystem: "ot",
			Name:      "operations_applied_total",
			Help:      "Operations applied to the document, by kind.",
		}, []string{"kind"}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vctree",
			Subsystem: "ot",
			Name:      "operations_rejected_total",
			Help:      "Operations rejected by version check or validation, by kind.",
		}, []string{"kind"}),
		transformations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vctree",
			Subsystem: "ot",
			Name:      "transformations_total",
			Help:      "Pairwise operation transformations performed.",
		}),
		version: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "vctree",
			Subsystem: "ot",
			Name:      "document_version",
			Help:      "Current document version.",
		}),
	}
}

func (m *Metrics) observeApplied(op Operation, version int) {
	if m == nil {
		return
	}
	m.applied.WithLabelValues(op.Kind().String()).Inc()
	m.version.Set(float64(version))
}

func (m *Metrics) observeRejected(op Operation) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(op.Kind().String()).Inc()
}

func (m *Metrics) observeTransformations(n int) {
	if m == nil {
		return
	}
	m.transformations.Add(float64(n))
}
