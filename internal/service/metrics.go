package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the service-level Prometheus collectors.
type Metrics struct {
	PacketsProcessed *prometheus.CounterVec
}

// NewMetrics registers the packet counters on the given registerer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		PacketsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "packets_processed_total",
				Help: "Total number of packets processed, by validation status.",
			},
			[]string{"validation_status"},
		),
	}
	if err := reg.Register(m.PacketsProcessed); err != nil {
		return nil, err
	}
	return m, nil
}
