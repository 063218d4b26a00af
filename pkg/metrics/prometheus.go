package metrics

import "github.com/prometheus/client_golang/prometheus"

// PrometheusMetric adapts a prometheus collector to the Observer interface.
type PrometheusMetric struct {
	observe func(val float64, labels ...string)
	prometheus.Collector
}

func (m *PrometheusMetric) Observe(val float64, labels ...string) {
	m.observe(val, labels...)
}

// NewCounter wraps an unlabeled counter.
func NewCounter(c prometheus.Counter) Observer {
	return &PrometheusMetric{
		observe: func(val float64, _ ...string) {
			c.Add(val)
		},
		Collector: c,
	}
}

// NewCounterVec wraps a labeled counter vector.
func NewCounterVec(c *prometheus.CounterVec) Observer {
	return &PrometheusMetric{
		observe: func(val float64, labels ...string) {
			c.WithLabelValues(labels...).Add(val)
		},
		Collector: c,
	}
}
