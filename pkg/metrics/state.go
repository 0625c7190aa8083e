package metrics

import "github.com/prometheus/client_golang/prometheus"

const stateSubsystem = "state"

type stateMetrics struct {
	healthCheck prometheus.Gauge

	sessions prometheus.Gauge
}

func newStateMetrics() stateMetrics {
	return stateMetrics{
		healthCheck: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: stateSubsystem,
			Name:      "health",
			Help:      "Current node state",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: stateSubsystem,
			Name:      "sessions",
			Help:      "Number of open device sessions",
		}),
	}
}

func (m stateMetrics) register() {
	prometheus.MustRegister(m.healthCheck)
	prometheus.MustRegister(m.sessions)
}

// SetHealth updates the node state gauge.
func (m stateMetrics) SetHealth(s int32) {
	m.healthCheck.Set(float64(s))
}

// SetSessionCount updates the open session gauge.
func (m stateMetrics) SetSessionCount(n int) {
	m.sessions.Set(float64(n))
}
