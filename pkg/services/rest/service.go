package rest

import (
	"net/http"

	"github.com/rtbo/scull/pkg/services/notificator"
	"github.com/rtbo/scull/pkg/services/session"
	"github.com/rtbo/scull/pkg/storage/engine"
	"go.uber.org/zap"
)

// EventEmitter produces notifications about completed device
// modifications.
type EventEmitter interface {
	// Notify must schedule the event delivery without blocking
	// the caller.
	Notify(ev notificator.Event)
}

// Service is the HTTP surface of the storage node. It exposes the
// descriptor verbs of the original character device (open, read,
// write, seek, release) on top of a session table, stateless ranged
// device access, and the diagnostic listing.
//
// For correct operation must be created via New.
type Service struct {
	*cfg

	eng *engine.StorageEngine

	sessions *session.Store
}

// Option is an option of Service's constructor.
type Option func(*cfg)

type cfg struct {
	log *zap.Logger

	emitter EventEmitter
}

func defaultCfg() *cfg {
	return &cfg{
		log: zap.NewNop(),
	}
}

// New creates the Service working on the given engine and session
// table.
func New(eng *engine.StorageEngine, sessions *session.Store, opts ...Option) *Service {
	c := defaultCfg()

	for i := range opts {
		opts[i](c)
	}

	return &Service{
		cfg:      c,
		eng:      eng,
		sessions: sessions,
	}
}

// WithLogger returns option to specify Service's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l.With(zap.String("component", "REST"))
	}
}

// WithEventEmitter returns option to install the device event
// emitter. Without it write and trim events are not produced.
func WithEventEmitter(e EventEmitter) Option {
	return func(c *cfg) {
		c.emitter = e
	}
}

// Handler returns the routing handler of the service.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/sessions", s.handleSessions)
	mux.HandleFunc("/v1/sessions/", s.handleSessionVerbs)
	mux.HandleFunc("/v1/devices", s.handleDevices)
	mux.HandleFunc("/v1/devices/", s.handleDeviceVerbs)

	return mux
}

// emitWrite completes a write event with the resulting device size
// and hands it to the emitter.
func (s *Service) emitWrite(r *http.Request, dev int, off uint64, n int) {
	if s.emitter == nil {
		return
	}

	ev := notificator.Event{
		Device: dev,
		Op:     notificator.OpWrite,
		Offset: off,
		Count:  n,
	}

	if info, err := s.eng.DumpInfo(r.Context(), dev); err == nil {
		ev.Size = info.Size
	}

	s.emitter.Notify(ev)
}

func (s *Service) emitTrim(dev int) {
	if s.emitter == nil {
		return
	}

	s.emitter.Notify(notificator.Event{
		Device: dev,
		Op:     notificator.OpTrim,
	})
}
