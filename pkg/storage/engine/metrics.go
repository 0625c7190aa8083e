package engine

import "time"

// MetricRegister is an interface of the metrics collected by the
// engine on its operations. Gauges derived from device state are
// fed separately, from the state summaries (see DumpAll).
type MetricRegister interface {
	AddReadDuration(time.Duration)
	AddWriteDuration(time.Duration)

	IncReadCounter()
	IncWriteCounter()
	IncTrimCounter()

	AddReadBytes(int)
	AddWriteBytes(int)
}

func elapsed(addFunc func(d time.Duration)) func() {
	t := time.Now()

	return func() {
		addFunc(time.Since(t))
	}
}
