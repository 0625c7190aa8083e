package engine

import (
	"errors"

	"github.com/rtbo/scull/pkg/storage/device"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// DefaultDeviceCount is the number of devices an engine carries when
// the corresponding option is omitted.
const DefaultDeviceCount = 4

// StorageEngine represents the scull device table: a fixed set of
// independent devices resolved by numeric index.
//
// The table is immutable after New: devices are neither added nor
// removed at runtime, so no synchronization guards the table itself.
// Access to device contents is serialized by the per-device locks.
type StorageEngine struct {
	*cfg

	devices []*device.Device

	closed *atomic.Bool
}

// ErrNoDevice is returned when the requested device index is outside
// the table.
var ErrNoDevice = errors.New("no such device")

// ErrClosed is returned by operations on a closed engine.
var ErrClosed = errors.New("storage engine is closed")

// Option represents StorageEngine's constructor option.
type Option func(*cfg)

type cfg struct {
	log *zap.Logger

	metrics MetricRegister

	deviceCount int

	deviceOpts []device.Option
}

func defaultCfg() *cfg {
	return &cfg{
		log:         zap.NewNop(),
		deviceCount: DefaultDeviceCount,
	}
}

// New creates and returns new StorageEngine instance. The device
// table is fully built here; Init only announces it.
func New(opts ...Option) *StorageEngine {
	c := defaultCfg()

	for i := range opts {
		opts[i](c)
	}

	devices := make([]*device.Device, c.deviceCount)

	for i := range devices {
		devices[i] = device.New(append([]device.Option{
			device.WithID(i),
			device.WithLogger(c.log),
		}, c.deviceOpts...)...)
	}

	return &StorageEngine{
		cfg:     c,
		devices: devices,
		closed:  atomic.NewBool(false),
	}
}

// WithLogger returns option to set StorageEngine's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l
	}
}

// WithMetrics returns option to set the metrics collected by the
// engine.
func WithMetrics(v MetricRegister) Option {
	return func(c *cfg) {
		c.metrics = v
	}
}

// WithDeviceCount returns option to set the number of devices in the
// table. Zero value is ignored.
func WithDeviceCount(n int) Option {
	return func(c *cfg) {
		if n != 0 {
			c.deviceCount = n
		}
	}
}

// WithDeviceOptions returns option to pass constructor options to
// every device of the table.
func WithDeviceOptions(opts ...device.Option) Option {
	return func(c *cfg) {
		c.deviceOpts = append(c.deviceOpts, opts...)
	}
}

// DeviceCount returns the size of the device table.
func (e *StorageEngine) DeviceCount() int {
	return len(e.devices)
}

// deviceByIndex resolves the device index against the table.
func (e *StorageEngine) deviceByIndex(i int) (*device.Device, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	if i < 0 || i >= len(e.devices) {
		return nil, ErrNoDevice
	}

	return e.devices[i], nil
}
