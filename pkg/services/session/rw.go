package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rtbo/scull/pkg/storage/engine"
)

// ErrBadSeek is returned when the seek target is invalid.
var ErrBadSeek = errors.New("invalid seek")

// Read transfers up to count bytes starting at the session cursor.
// The per-quantum engine calls are looped here the way a caller of
// the original driver loops on short reads; the cursor advances by
// every successful call. The transfer stops early at end-of-data or
// at a hole.
//
// On failure the bytes collected before it are returned together
// with the error, and the cursor stays on the failure position.
func (s *Store) Read(ctx context.Context, token string, count uint64) ([]byte, error) {
	ses, err := s.Get(token)
	if err != nil {
		return nil, err
	}

	if ses.mode == ModeWriteOnly {
		return nil, ErrBadMode
	}

	ses.mtx.Lock()
	defer ses.mtx.Unlock()

	var out []byte

	for uint64(len(out)) < count {
		var prm engine.ReadPrm
		prm.SetDevice(ses.dev)
		prm.SetRange(ses.cursor, count-uint64(len(out)))

		res, err := s.eng.Read(ctx, prm)
		if err != nil {
			return out, err
		}

		if len(res.Data()) == 0 {
			break
		}

		out = append(out, res.Data()...)
		ses.cursor = res.NewOffset()
	}

	return out, nil
}

// Write stores the payload starting at the session cursor, looping
// the per-quantum engine calls and advancing the cursor by every
// successful one.
//
// On failure the number of bytes written before it is returned
// together with the error, and the cursor stays on the failure
// position, so a retry resumes the transfer.
func (s *Store) Write(ctx context.Context, token string, data []byte) (int, error) {
	ses, err := s.Get(token)
	if err != nil {
		return 0, err
	}

	if ses.mode == ModeReadOnly {
		return 0, ErrBadMode
	}

	ses.mtx.Lock()
	defer ses.mtx.Unlock()

	var written int

	for written < len(data) {
		var prm engine.WritePrm
		prm.SetDevice(ses.dev)
		prm.SetOffset(ses.cursor)
		prm.SetData(data[written:])

		res, err := s.eng.Write(ctx, prm)
		if err != nil {
			return written, err
		}

		written += res.Written()
		ses.cursor = res.NewOffset()
	}

	return written, nil
}

// Seek repositions the session cursor. Whence values follow the io
// package convention; io.SeekEnd resolves against the current device
// size.
//
// Returns an error wrapping ErrBadSeek if the whence is unknown or
// the resulting position is negative.
func (s *Store) Seek(ctx context.Context, token string, off int64, whence int) (uint64, error) {
	ses, err := s.Get(token)
	if err != nil {
		return 0, err
	}

	ses.mtx.Lock()
	defer ses.mtx.Unlock()

	var base uint64

	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = ses.cursor
	case io.SeekEnd:
		info, err := s.eng.DumpInfo(ctx, ses.dev)
		if err != nil {
			return 0, err
		}

		base = info.Size
	default:
		return 0, fmt.Errorf("%w: unknown whence %d", ErrBadSeek, whence)
	}

	pos := int64(base) + off
	if pos < 0 {
		return 0, fmt.Errorf("%w: negative position %d", ErrBadSeek, pos)
	}

	ses.cursor = uint64(pos)

	return ses.cursor, nil
}
