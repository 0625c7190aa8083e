package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mr-tron/base58"
	"github.com/rtbo/scull/pkg/storage/engine"
	"go.uber.org/zap"
)

// DefaultCapacity is the open session cap applied when the
// corresponding option is omitted.
const DefaultCapacity = 512

// ErrNotFound is returned when the token does not name an open
// session.
var ErrNotFound = errors.New("session not found")

// ErrBadMode is returned when the operation contradicts the access
// mode the session was opened with.
var ErrBadMode = errors.New("operation not allowed by session mode")

// Store is the bounded table of open device sessions. When the cap
// is reached, the least recently used session is evicted, the way a
// process runs out of descriptors.
//
// Store is safe for concurrent use.
type Store struct {
	*cfg

	eng *engine.StorageEngine

	tokens *lru.Cache[string, *Session]
}

// Option is an option of Store's constructor.
type Option func(*cfg)

type cfg struct {
	capacity int

	log *zap.Logger
}

func defaultCfg() *cfg {
	return &cfg{
		capacity: DefaultCapacity,
		log:      zap.NewNop(),
	}
}

// NewTokenStore creates and returns new Store keeping sessions of
// the given engine's devices.
func NewTokenStore(eng *engine.StorageEngine, opts ...Option) (*Store, error) {
	c := defaultCfg()

	for i := range opts {
		opts[i](c)
	}

	s := &Store{
		cfg: c,
		eng: eng,
	}

	var err error

	s.tokens, err = lru.NewWithEvict(c.capacity, func(token string, ses *Session) {
		c.log.Debug("session evicted",
			zap.String("token", token),
			zap.Int("device", ses.dev),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("could not create session table: %w", err)
	}

	return s, nil
}

// WithCapacity returns option to set the open session cap. Zero
// value is ignored.
func WithCapacity(n int) Option {
	return func(c *cfg) {
		if n != 0 {
			c.capacity = n
		}
	}
}

// WithLogger returns option to specify Store's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l.With(zap.String("component", "SessionStore"))
	}
}

// Open starts a session on the addressed device and returns its
// token. A write-only session truncates the device on open.
//
// Returns the engine resolution and open errors as is.
func (s *Store) Open(ctx context.Context, dev int, mode Mode) (*Session, error) {
	var prm engine.OpenPrm
	prm.SetDevice(dev)
	prm.SetTruncate(mode == ModeWriteOnly)

	if _, err := s.eng.Open(ctx, prm); err != nil {
		return nil, err
	}

	uidBytes, err := newTokenID()
	if err != nil {
		return nil, fmt.Errorf("could not generate token ID: %w", err)
	}

	ses := &Session{
		token:     base58.Encode(uidBytes),
		dev:       dev,
		mode:      mode,
		createdAt: time.Now(),
	}

	s.tokens.Add(ses.token, ses)

	s.log.Debug("session opened",
		zap.String("token", ses.token),
		zap.Int("device", dev),
		zap.Stringer("mode", mode),
	)

	return ses, nil
}

// Get resolves the token to the open session.
//
// Returns ErrNotFound if the token is unknown or already evicted.
func (s *Store) Get(token string) (*Session, error) {
	ses, ok := s.tokens.Get(token)
	if !ok {
		return nil, ErrNotFound
	}

	return ses, nil
}

// Release ends the session. The underlying device keeps its state.
//
// Returns ErrNotFound if the token is unknown.
func (s *Store) Release(token string) error {
	ses, ok := s.tokens.Get(token)
	if !ok {
		return ErrNotFound
	}

	s.tokens.Remove(token)

	if err := s.eng.Release(ses.dev); err != nil {
		return err
	}

	s.log.Debug("session released",
		zap.String("token", token),
		zap.Int("device", ses.dev),
	)

	return nil
}

// Count returns the number of open sessions.
func (s *Store) Count() int {
	return s.tokens.Len()
}

// Close drops all open sessions.
func (s *Store) Close() error {
	s.tokens.Purge()

	return nil
}
