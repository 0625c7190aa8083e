package engine

import (
	"context"

	"github.com/rtbo/scull/pkg/storage/device"
)

// ReadPrm groups the parameters of Read operation.
type ReadPrm struct {
	dev int

	off, ln uint64
}

// SetDevice sets the index of the device to read from.
//
// Option is required.
func (p *ReadPrm) SetDevice(i int) {
	p.dev = i
}

// SetRange sets the offset to read from and the number of bytes
// requested.
func (p *ReadPrm) SetRange(off, ln uint64) {
	p.off = off
	p.ln = ln
}

// ReadRes groups the resulting values of Read operation.
type ReadRes struct {
	devRes device.ReadRes
}

// Data returns the transferred bytes. Zero-length data with a nil
// error means end-of-data or a hole.
func (r ReadRes) Data() []byte {
	return r.devRes.Data()
}

// NewOffset returns the request offset advanced by the number of
// bytes transferred.
func (r ReadRes) NewOffset() uint64 {
	return r.devRes.NewOffset()
}

// Read transfers at most one quantum's worth of contiguous bytes
// from the addressed device.
//
// Returns ErrNoDevice if the index is outside the table and
// ErrClosed if the engine is shut down. Device-level failures are
// returned as is.
func (e *StorageEngine) Read(ctx context.Context, prm ReadPrm) (ReadRes, error) {
	if e.metrics != nil {
		defer elapsed(e.metrics.AddReadDuration)()
	}

	d, err := e.deviceByIndex(prm.dev)
	if err != nil {
		return ReadRes{}, err
	}

	var devPrm device.ReadPrm
	devPrm.SetRange(prm.off, prm.ln)

	res, err := d.Read(ctx, devPrm)
	if err != nil {
		return ReadRes{}, err
	}

	if e.metrics != nil {
		e.metrics.IncReadCounter()
		e.metrics.AddReadBytes(len(res.Data()))
	}

	return ReadRes{devRes: res}, nil
}
