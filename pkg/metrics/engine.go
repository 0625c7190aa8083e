package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const engineSubsystem = "engine"

type engineMetrics struct {
	readDuration  prometheus.Histogram
	writeDuration prometheus.Histogram

	readCounter  prometheus.Counter
	writeCounter prometheus.Counter
	trimCounter  prometheus.Counter

	readBytes  prometheus.Counter
	writeBytes prometheus.Counter

	size     prometheus.GaugeVec
	segments prometheus.GaugeVec
}

func newEngineMetrics() engineMetrics {
	var (
		readDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: engineSubsystem,
			Name:      "read_time",
			Help:      "Engine 'read' operations handling time",
		})

		writeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: engineSubsystem,
			Name:      "write_time",
			Help:      "Engine 'write' operations handling time",
		})

		readCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: engineSubsystem,
			Name:      "read_count",
			Help:      "Number of completed engine 'read' operations",
		})

		writeCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: engineSubsystem,
			Name:      "write_count",
			Help:      "Number of completed engine 'write' operations",
		})

		trimCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: engineSubsystem,
			Name:      "trim_count",
			Help:      "Number of device trims",
		})

		readBytes = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: engineSubsystem,
			Name:      "read_bytes",
			Help:      "Bytes transferred by engine 'read' operations",
		})

		writeBytes = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: engineSubsystem,
			Name:      "write_bytes",
			Help:      "Bytes transferred by engine 'write' operations",
		})

		size = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: engineSubsystem,
			Name:      "device_size",
			Help:      "Logical size of the device",
		}, []string{deviceLabelKey})

		segments = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: engineSubsystem,
			Name:      "device_segments",
			Help:      "Number of chain segments of the device",
		}, []string{deviceLabelKey})
	)

	return engineMetrics{
		readDuration:  readDuration,
		writeDuration: writeDuration,
		readCounter:   readCounter,
		writeCounter:  writeCounter,
		trimCounter:   trimCounter,
		readBytes:     readBytes,
		writeBytes:    writeBytes,
		size:          *size,
		segments:      *segments,
	}
}

func (m engineMetrics) register() {
	prometheus.MustRegister(m.readDuration)
	prometheus.MustRegister(m.writeDuration)
	prometheus.MustRegister(m.readCounter)
	prometheus.MustRegister(m.writeCounter)
	prometheus.MustRegister(m.trimCounter)
	prometheus.MustRegister(m.readBytes)
	prometheus.MustRegister(m.writeBytes)
	prometheus.MustRegister(m.size)
	prometheus.MustRegister(m.segments)
}

func (m engineMetrics) AddReadDuration(d time.Duration) {
	m.readDuration.Observe(d.Seconds())
}

func (m engineMetrics) AddWriteDuration(d time.Duration) {
	m.writeDuration.Observe(d.Seconds())
}

func (m engineMetrics) IncReadCounter() {
	m.readCounter.Inc()
}

func (m engineMetrics) IncWriteCounter() {
	m.writeCounter.Inc()
}

func (m engineMetrics) IncTrimCounter() {
	m.trimCounter.Inc()
}

func (m engineMetrics) AddReadBytes(n int) {
	m.readBytes.Add(float64(n))
}

func (m engineMetrics) AddWriteBytes(n int) {
	m.writeBytes.Add(float64(n))
}

// SetDeviceSize updates the size gauge of the device.
func (m engineMetrics) SetDeviceSize(dev int, sz uint64) {
	m.size.With(prometheus.Labels{deviceLabelKey: strconv.Itoa(dev)}).Set(float64(sz))
}

// SetDeviceSegments updates the segment count gauge of the device.
func (m engineMetrics) SetDeviceSegments(dev int, n int) {
	m.segments.With(prometheus.Labels{deviceLabelKey: strconv.Itoa(dev)}).Set(float64(n))
}
