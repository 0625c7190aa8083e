package device

import (
	"context"
	"fmt"

	storagelog "github.com/rtbo/scull/pkg/storage/internal/log"
)

// WritePrm groups the parameters of Write operation.
type WritePrm struct {
	off  uint64
	data []byte
}

// SetOffset sets the offset to write at.
func (p *WritePrm) SetOffset(off uint64) {
	p.off = off
}

// SetData sets the source bytes. A single call consumes only the
// prefix fitting the target quantum; see Write.
func (p *WritePrm) SetData(b []byte) {
	p.data = b
}

// WriteRes groups the resulting values of Write operation.
type WriteRes struct {
	off uint64
	n   int
}

// Written returns the number of bytes consumed from the source.
func (r WriteRes) Written() int {
	return r.n
}

// NewOffset returns the request offset advanced by the number of
// bytes written.
func (r WriteRes) NewOffset() uint64 {
	return r.off
}

// Write stores bytes at the requested offset, lazily growing the
// segment chain, the slot array and the target quantum. A single
// call never crosses a quantum boundary: it writes at most
// quantum − intra_offset bytes, and callers loop over the advanced
// offset for longer transfers. An empty source is a no-op.
//
// The device size grows to the advanced offset when exceeded; it
// never shrinks except via trim.
//
// Returns the context error if the lock wait is cancelled before any
// state is touched. Returns an error wrapping ErrNoMemory if a
// structure cannot be allocated; structures attached before the
// failure remain, and a retry resumes from them. Returns an error
// wrapping ErrFault if the copier failed; offset and size are not
// advanced then.
func (d *Device) Write(ctx context.Context, prm WritePrm) (WriteRes, error) {
	if err := d.lockDevice(ctx); err != nil {
		return WriteRes{}, err
	}
	defer d.unlockDevice()

	if len(prm.data) == 0 {
		return WriteRes{off: prm.off}, nil
	}

	pos := translate(prm.off, d.quantum, d.qset)

	seg, err := d.follow(pos.seg)
	if err != nil {
		return WriteRes{}, err
	}

	if seg.slots == nil {
		if err := d.alloc.Grab(d.qset * slotRefCost); err != nil {
			return WriteRes{}, fmt.Errorf("allocate slot array: %w", err)
		}

		seg.slots = make([][]byte, d.qset)
	}

	if seg.slots[pos.slot] == nil {
		if err := d.alloc.Grab(d.quantum); err != nil {
			return WriteRes{}, fmt.Errorf("allocate quantum: %w", err)
		}

		seg.slots[pos.slot] = make([]byte, d.quantum)
	}

	count := len(prm.data)
	if room := d.quantum - pos.off; count > room {
		count = room
	}

	if err := d.copier.Copy(seg.slots[pos.slot][pos.off:pos.off+count], prm.data[:count]); err != nil {
		return WriteRes{}, fmt.Errorf("%w: %v", ErrFault, err)
	}

	res := WriteRes{
		off: prm.off + uint64(count),
		n:   count,
	}

	if res.off > d.size {
		d.size = res.off
	}

	storagelog.Write(d.log,
		storagelog.OpField("write"),
		storagelog.DeviceField(d.id),
		storagelog.OffsetField(prm.off),
		storagelog.CountField(count),
		storagelog.SizeField(d.size),
	)

	return res, nil
}
