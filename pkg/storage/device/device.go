package device

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Default geometry of a device. Applied when the corresponding
// options are omitted and restored by trim.
const (
	// DefaultQuantum is the default size of a single quantum in bytes.
	DefaultQuantum = 4000

	// DefaultQSet is the default number of quantum slots per segment.
	DefaultQSet = 1000
)

// Device represents a single scull storage unit: a growable sparse
// byte region assembled from fixed-size quanta chained into segments.
//
// All mutable state of a Device is guarded by one exclusive lock,
// acquired for the whole duration of every operation. Operations on
// the same Device are fully serialized; distinct Devices are
// independent.
type Device struct {
	*cfg

	lock *semaphore.Weighted

	chain []*segment

	size uint64

	// geometry in effect for the current chain; trim resets it to
	// the configured defaults
	quantum int
	qset    int
}

// segment is one record of the device chain. The slot array is nil
// until the first write into the segment; a nil slot means the
// quantum was never allocated.
type segment struct {
	slots [][]byte
}

// Option is an option of Device's constructor.
type Option func(*cfg)

type cfg struct {
	id int

	quantum int
	qset    int

	alloc Allocator

	copier Copier

	log *zap.Logger
}

func defaultCfg() *cfg {
	return &cfg{
		quantum: DefaultQuantum,
		qset:    DefaultQSet,
		alloc:   nopAllocator{},
		copier:  directCopy{},
		log:     zap.NewNop(),
	}
}

// New creates and returns new Device instance.
//
// Panics if the configured quantum or qset is not positive.
func New(opts ...Option) *Device {
	c := defaultCfg()

	for i := range opts {
		opts[i](c)
	}

	if c.quantum <= 0 {
		panic(fmt.Sprintf("invalid quantum size %d", c.quantum))
	}
	if c.qset <= 0 {
		panic(fmt.Sprintf("invalid qset size %d", c.qset))
	}

	return &Device{
		cfg:     c,
		lock:    semaphore.NewWeighted(1),
		quantum: c.quantum,
		qset:    c.qset,
	}
}

// WithID returns option to set the numeric identity of the Device.
func WithID(id int) Option {
	return func(c *cfg) {
		c.id = id
	}
}

// WithQuantum returns option to set the quantum size in bytes.
func WithQuantum(sz int) Option {
	return func(c *cfg) {
		c.quantum = sz
	}
}

// WithQSet returns option to set the number of quantum slots held
// by each segment.
func WithQSet(sz int) Option {
	return func(c *cfg) {
		c.qset = sz
	}
}

// WithAllocator returns option to set the memory accounting
// collaborator of the Device.
func WithAllocator(a Allocator) Option {
	return func(c *cfg) {
		c.alloc = a
	}
}

// WithMemoryLimit returns option to cap the total memory consumed
// by the Device's storage structures. Zero means no limit; without
// one, a single write at a distant offset grows the segment chain up
// to that offset, so exposed deployments should set a limit.
func WithMemoryLimit(lim uint64) Option {
	return func(c *cfg) {
		if lim > 0 {
			c.alloc = &memoryBudget{limit: lim}
		}
	}
}

// WithCopier returns option to set the boundary copy collaborator
// of the Device.
func WithCopier(cp Copier) Option {
	return func(c *cfg) {
		c.copier = cp
	}
}

// WithLogger returns option to specify Device's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l.With(zap.String("component", "Device"))
	}
}

// ID returns the numeric identity of the Device.
func (d *Device) ID() int {
	return d.id
}
