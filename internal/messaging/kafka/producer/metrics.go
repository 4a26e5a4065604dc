package producer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks relay throughput and the outbox backlog. A nil *Metrics
// records nothing.
type Metrics struct {
	Published *prometheus.CounterVec
	Failed    *prometheus.CounterVec
	Backlog   *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Published: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "employee_outbox",
			Name:      "published_total",
			Help:      "Outbox events delivered to the broker.",
		}, []string{"event_type"}),
		Failed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "employee_outbox",
			Name:      "publish_failures_total",
			Help:      "Failed attempts to deliver outbox events.",
		}, []string{"event_type"}),
		Backlog: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "employee_outbox",
			Name:      "events",
			Help:      "Outbox rows by status after the last poll.",
		}, []string{"status"}),
	}
}

func (m *Metrics) published(eventType string) {
	if m != nil {
		m.Published.WithLabelValues(eventType).Inc()
	}
}

func (m *Metrics) failed(eventType string) {
	if m != nil {
		m.Failed.WithLabelValues(eventType).Inc()
	}
}

func (m *Metrics) backlog(counts map[string]int) {
	if m == nil {
		return
	}
	m.Backlog.Reset()
	for status, n := range counts {
		m.Backlog.WithLabelValues(status).Set(float64(n))
	}
}
