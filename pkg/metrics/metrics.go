// Package metrics counts pipeline activity for the gateway's Prometheus
// endpoint.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Rejection reasons recorded by the pipeline gate.
const (
	ReasonUnauthorized = "unauthorized"
	ReasonStale        = "stale"
)

// Observer abstracts one metric series.
//
// Tightly coupled to the prometheus collector type for now; an otel adapter
// implementing the same interface would slot in here.
type Observer interface {
	Observe(val float64, labels ...string)

	prometheus.Collector
}

// Metrics groups the pipeline counters. A nil *Metrics is valid and records
// nothing, which keeps tests and minimal deployments free of a registry.
type Metrics struct {
	InboundCount     Observer
	DispatchCount    Observer
	RejectedCount    Observer
	DeliveryFailures Observer
}

// New creates the standard pipeline counters, unregistered.
func New() *Metrics {
	return &Metrics{
		InboundCount: NewCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hostlink",
			Name:      "inbound_messages_total",
			Help:      "Inbound platform events per channel.",
		}, []string{"channel"})),
		DispatchCount: NewCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hostlink",
			Name:      "dispatches_total",
			Help:      "Routed commands per outcome.",
		}, []string{"outcome"})),
		RejectedCount: NewCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hostlink",
			Name:      "rejected_messages_total",
			Help:      "Messages rejected before dispatch, per reason.",
		}, []string{"reason"})),
		DeliveryFailures: NewCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hostlink",
			Name:      "delivery_failures_total",
			Help:      "Failed outbound sends per channel and payload kind.",
		}, []string{"channel", "kind"})),
	}
}

// Collectors returns every collector for registry registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	if m == nil {
		return nil
	}

	return []prometheus.Collector{
		m.InboundCount,
		m.DispatchCount,
		m.RejectedCount,
		m.DeliveryFailures,
	}
}

// Inbound records one inbound platform event.
func (m *Metrics) Inbound(channel string) {
	if m == nil {
		return
	}
	m.InboundCount.Observe(1, channel)
}

// Dispatched records one routed command by outcome.
func (m *Metrics) Dispatched(success bool) {
	if m == nil {
		return
	}

	outcome := "error"
	if success {
		outcome = "ok"
	}
	m.DispatchCount.Observe(1, outcome)
}

// Rejected records one message stopped by the gate.
func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.RejectedCount.Observe(1, reason)
}

// DeliveryFailure records one failed outbound send.
func (m *Metrics) DeliveryFailure(channel, kind string) {
	if m == nil {
		return
	}
	m.DeliveryFailures.Observe(1, channel, kind)
}
