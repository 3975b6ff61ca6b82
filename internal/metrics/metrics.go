// Package metrics exposes Prometheus collectors for flow navigation, job
// events and reference data prefetching
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/kode4food/courier/pkg/api"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing
type Metrics struct {
	navigations *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	events      *prometheus.CounterVec
	prefetches  *prometheus.CounterVec
	prefetchDur *prometheus.HistogramVec
	resets      *prometheus.CounterVec
	activeFlows prometheus.Gauge
}

const namespace = "courier"

const (
	ResultOK    = "ok"
	ResultError = "error"
)

// New creates the collectors and registers them with reg. A nil reg
// disables metrics
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "flow",
			Name:      "navigations_total",
			Help:      "Committed navigations by kind, role and service",
		}, []string{"kind", "role", "service"}),

		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "flow",
			Name:      "rejected_navigations_total",
			Help:      "Navigation requests refused without a state change",
		}, []string{"reason"}),

		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "autonav",
			Name:      "events_total",
			Help:      "Inbound job events by type and outcome",
		}, []string{"type", "outcome"}),

		prefetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reference",
			Name:      "prefetches_total",
			Help:      "Reference data prefetches by scope and result",
		}, []string{"scope", "result"}),

		prefetchDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reference",
			Name:      "prefetch_duration_seconds",
			Help:      "Reference data prefetch duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"scope"}),

		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "flow",
			Name:      "resets_total",
			Help:      "Flow resets by trigger",
		}, []string{"trigger"}),

		activeFlows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "flow",
			Name:      "active",
			Help:      "1 while the session's flow is active",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.navigations, m.rejected, m.events, m.prefetches, m.prefetchDur,
		m.resets, m.activeFlows,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Navigated records a committed navigation and the resulting activity
func (m *Metrics) Navigated(kind string, st *api.FlowState) {
	if m == nil {
		return
	}
	m.navigations.WithLabelValues(
		kind, string(st.Role), string(st.Service),
	).Inc()
	if st.IsActive {
		m.activeFlows.Set(1)
	} else {
		m.activeFlows.Set(0)
	}
}

// Rejected records a refused navigation request
func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

// Event records the outcome of processing an inbound job event
func (m *Metrics) Event(typ api.EventType, outcome string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(string(typ), outcome).Inc()
}

// Prefetched records a finished prefetch for a service or role scope
func (m *Metrics) Prefetched(scope string, err error, dur time.Duration) {
	if m == nil {
		return
	}
	res := ResultOK
	if err != nil {
		res = ResultError
	}
	m.prefetches.WithLabelValues(scope, res).Inc()
	m.prefetchDur.WithLabelValues(scope).Observe(dur.Seconds())
}

// Reset records a flow reset
func (m *Metrics) Reset(trigger string) {
	if m == nil {
		return
	}
	m.resets.WithLabelValues(trigger).Inc()
}

// EventCount returns the recorded count for an event type and outcome
func (m *Metrics) EventCount(typ api.EventType, outcome string) float64 {
	if m == nil {
		return 0
	}
	return counterValue(m.events.WithLabelValues(string(typ), outcome))
}

// RejectedCount returns the recorded count of refused navigations
func (m *Metrics) RejectedCount(reason string) float64 {
	if m == nil {
		return 0
	}
	return counterValue(m.rejected.WithLabelValues(reason))
}

// PrefetchCount returns the recorded count of prefetches for a scope
func (m *Metrics) PrefetchCount(scope, result string) float64 {
	if m == nil {
		return 0
	}
	return counterValue(m.prefetches.WithLabelValues(scope, result))
}

func counterValue(c prometheus.Counter) float64 {
	var pb dto.Metric
	if err := c.Write(&pb); err != nil {
		return 0
	}
	return pb.GetCounter().GetValue()
}
