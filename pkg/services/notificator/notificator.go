package notificator

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rtbo/scull/pkg/util"
	"go.uber.org/zap"
)

// Prm groups Notificator constructor's parameters.
type Prm struct {
	writer NotificationWriter
	pool   util.WorkerPool
	logger *zap.Logger

	defaultTopic string
}

// SetWriter sets a NotificationWriter.
func (prm *Prm) SetWriter(v NotificationWriter) *Prm {
	prm.writer = v
	return prm
}

// SetPool sets a worker pool that executes event deliveries.
func (prm *Prm) SetPool(v util.WorkerPool) *Prm {
	prm.pool = v
	return prm
}

// SetLogger sets a logger.
func (prm *Prm) SetLogger(v *zap.Logger) *Prm {
	prm.logger = v
	return prm
}

// SetDefaultTopic sets a topic for events.
func (prm *Prm) SetDefaultTopic(v string) *Prm {
	prm.defaultTopic = v
	return prm
}

// Notificator is a device event notification producer.
//
// It delivers events to the NotificationWriter off the data path:
// deliveries run on a worker pool and an overloaded pool drops the
// event instead of blocking the caller.
type Notificator struct {
	w    NotificationWriter
	pool util.WorkerPool
	l    *zap.Logger

	defaultTopic string
}

// New creates, initializes and returns the Notificator instance.
//
// Panics if any field of the passed Prm structure is not set.
func New(prm *Prm) *Notificator {
	panicOnNil := func(v interface{}, name string) {
		if v == nil {
			panic(fmt.Sprintf("Notificator constructor: %s is nil\n", name))
		}
	}

	panicOnNil(prm.writer, "NotificationWriter")
	panicOnNil(prm.pool, "WorkerPool")
	panicOnNil(prm.logger, "Logger")

	return &Notificator{
		w:            prm.writer,
		pool:         prm.pool,
		l:            prm.logger,
		defaultTopic: prm.defaultTopic,
	}
}

// Notify passes the event to the NotificationWriter asynchronously.
//
// An empty event ID is filled with a fresh one before scheduling.
func (n *Notificator) Notify(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	err := n.pool.Submit(func() {
		n.l.Debug("notificator: processing device event",
			zap.String("topic", n.defaultTopic),
			zap.Int("device", ev.Device),
			zap.String("op", ev.Op),
		)

		n.w.Notify(n.defaultTopic, ev)
	})
	if err != nil {
		n.l.Warn("notificator: could not submit event to worker pool",
			zap.Int("device", ev.Device),
			zap.String("op", ev.Op),
			zap.Error(err),
		)
	}
}
