package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "scull_node"

const deviceLabelKey = "device"

// NodeMetrics groups the metrics of a scull node. It satisfies the
// storage engine's MetricRegister interface; the device state gauges
// are fed separately, by the node's stats poller.
type NodeMetrics struct {
	engineMetrics
	stateMetrics
}

// NewNodeMetrics creates, registers and returns the metrics of a
// scull node. Must be called at most once per process.
func NewNodeMetrics(version string) *NodeMetrics {
	registerVersionMetric(namespace, version)

	engine := newEngineMetrics()
	engine.register()

	state := newStateMetrics()
	state.register()

	return &NodeMetrics{
		engineMetrics: engine,
		stateMetrics:  state,
	}
}

func registerVersionMetric(namespace string, version string) {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "version",
		ConstLabels: prometheus.Labels{
			"version": version,
		},
	})

	prometheus.MustRegister(g)
	g.Set(1)
}
