package engine

import (
	"context"

	"github.com/rtbo/scull/pkg/storage/device"
)

// WritePrm groups the parameters of Write operation.
type WritePrm struct {
	dev int

	off uint64

	data []byte
}

// SetDevice sets the index of the device to write to.
//
// Option is required.
func (p *WritePrm) SetDevice(i int) {
	p.dev = i
}

// SetOffset sets the offset to write at.
func (p *WritePrm) SetOffset(off uint64) {
	p.off = off
}

// SetData sets the source bytes. A single call consumes only the
// prefix fitting the target quantum.
func (p *WritePrm) SetData(b []byte) {
	p.data = b
}

// WriteRes groups the resulting values of Write operation.
type WriteRes struct {
	devRes device.WriteRes
}

// Written returns the number of bytes consumed from the source.
func (r WriteRes) Written() int {
	return r.devRes.Written()
}

// NewOffset returns the request offset advanced by the number of
// bytes written.
func (r WriteRes) NewOffset() uint64 {
	return r.devRes.NewOffset()
}

// Write stores bytes on the addressed device, at most one quantum's
// worth per call.
//
// Returns ErrNoDevice if the index is outside the table and
// ErrClosed if the engine is shut down. Device-level failures are
// returned as is.
func (e *StorageEngine) Write(ctx context.Context, prm WritePrm) (WriteRes, error) {
	if e.metrics != nil {
		defer elapsed(e.metrics.AddWriteDuration)()
	}

	d, err := e.deviceByIndex(prm.dev)
	if err != nil {
		return WriteRes{}, err
	}

	var devPrm device.WritePrm
	devPrm.SetOffset(prm.off)
	devPrm.SetData(prm.data)

	res, err := d.Write(ctx, devPrm)
	if err != nil {
		return WriteRes{}, err
	}

	if e.metrics != nil {
		e.metrics.IncWriteCounter()
		e.metrics.AddWriteBytes(res.Written())
	}

	return WriteRes{devRes: res}, nil
}
