package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Mode is the access mode of a device session.
type Mode uint8

const (
	// ModeReadWrite allows both reads and writes.
	ModeReadWrite Mode = iota

	// ModeReadOnly allows reads only.
	ModeReadOnly

	// ModeWriteOnly allows writes only and drops the device content
	// when the session opens.
	ModeWriteOnly
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeReadWrite:
		return "rw"
	case ModeReadOnly:
		return "ro"
	case ModeWriteOnly:
		return "wo"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// ParseMode restores a Mode from its string form.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "rw", "":
		return ModeReadWrite, nil
	case "ro":
		return ModeReadOnly, nil
	case "wo":
		return ModeWriteOnly, nil
	default:
		return 0, fmt.Errorf("unsupported session mode %q", s)
	}
}

// Session represents one open descriptor of a device: the analog of
// a file description, with its own position cursor.
type Session struct {
	token string

	dev int

	mode Mode

	createdAt time.Time

	// guards the cursor across the engine call sequence of one
	// session operation
	mtx sync.Mutex

	cursor uint64
}

// Token returns the session identity handed to the caller.
func (s *Session) Token() string {
	return s.token
}

// Device returns the index of the device the session is bound to.
func (s *Session) Device() int {
	return s.dev
}

// Mode returns the access mode of the session.
func (s *Session) Mode() Mode {
	return s.mode
}

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Cursor returns the current position of the session.
func (s *Session) Cursor() uint64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.cursor
}

// newTokenID generates a new session token: 16 random bytes.
func newTokenID() ([]byte, error) {
	uid, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	return uid[:], nil
}
