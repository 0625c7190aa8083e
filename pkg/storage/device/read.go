package device

import (
	"context"
	"fmt"
)

// ReadPrm groups the parameters of Read operation.
type ReadPrm struct {
	off uint64
	ln  uint64
}

// SetRange sets the offset to read from and the number of bytes
// requested.
func (p *ReadPrm) SetRange(off, ln uint64) {
	p.off = off
	p.ln = ln
}

// ReadRes groups the resulting values of Read operation.
type ReadRes struct {
	data []byte
	off  uint64
}

// Data returns the transferred bytes. A zero-length result with a
// nil error means end-of-data or a hole: nothing is available at the
// requested position.
func (r ReadRes) Data() []byte {
	return r.data
}

// NewOffset returns the request offset advanced by the number of
// bytes transferred.
func (r ReadRes) NewOffset() uint64 {
	return r.off
}

// Read transfers contiguous bytes starting at the requested offset.
// A single call transfers at most one quantum's worth of data; it
// never crosses a quantum boundary. Callers needing more loop over
// the advanced offset.
//
// Reading at an offset beyond the current size, or within a region
// whose segment, slot array or quantum was never allocated, yields a
// zero-length result and no error.
//
// Returns the context error if the lock wait is cancelled before any
// state is touched. Returns an error wrapping ErrFault if the copier
// failed; the offset is not advanced then.
func (d *Device) Read(ctx context.Context, prm ReadPrm) (ReadRes, error) {
	if err := d.lockDevice(ctx); err != nil {
		return ReadRes{}, err
	}
	defer d.unlockDevice()

	res := ReadRes{off: prm.off}

	if prm.off > d.size {
		return res, nil
	}

	// compare via the remainder: prm.off+count is not safe to form,
	// a huge requested length would wrap it around
	count := prm.ln
	if rem := d.size - prm.off; count > rem {
		count = rem
	}
	if count == 0 {
		return res, nil
	}

	pos := translate(prm.off, d.quantum, d.qset)

	// no allocation is needed for a read within size, but traversal
	// goes through the same locator as the write path; a failed or
	// empty lookup reads as a hole
	seg, err := d.follow(pos.seg)
	if err != nil || seg.slots == nil || seg.slots[pos.slot] == nil {
		return res, nil
	}

	if room := uint64(d.quantum - pos.off); count > room {
		count = room
	}

	buf := make([]byte, count)

	if err := d.copier.Copy(buf, seg.slots[pos.slot][pos.off:uint64(pos.off)+count]); err != nil {
		return ReadRes{}, fmt.Errorf("%w: %v", ErrFault, err)
	}

	res.data = buf
	res.off = prm.off + count

	return res, nil
}
