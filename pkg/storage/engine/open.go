package engine

import (
	"context"

	"github.com/rtbo/scull/pkg/storage/device"
)

// OpenPrm groups the parameters of Open operation.
type OpenPrm struct {
	dev int

	trunc bool
}

// SetDevice sets the index of the device to open.
//
// Option is required.
func (p *OpenPrm) SetDevice(i int) {
	p.dev = i
}

// SetTruncate sets write-only access semantics: the device content
// is dropped on open.
func (p *OpenPrm) SetTruncate(trunc bool) {
	p.trunc = trunc
}

// OpenRes groups the resulting values of Open operation.
type OpenRes struct{}

// Open starts a caller session on the addressed device, trimming its
// content when truncation is requested.
//
// Returns ErrNoDevice if the index is outside the table and
// ErrClosed if the engine is shut down.
func (e *StorageEngine) Open(ctx context.Context, prm OpenPrm) (OpenRes, error) {
	d, err := e.deviceByIndex(prm.dev)
	if err != nil {
		return OpenRes{}, err
	}

	var devPrm device.OpenPrm
	devPrm.SetTruncate(prm.trunc)

	if _, err := d.Open(ctx, devPrm); err != nil {
		return OpenRes{}, err
	}

	if prm.trunc && e.metrics != nil {
		e.metrics.IncTrimCounter()
	}

	return OpenRes{}, nil
}

// Release ends a caller session on the addressed device.
//
// Returns ErrNoDevice if the index is outside the table and
// ErrClosed if the engine is shut down.
func (e *StorageEngine) Release(dev int) error {
	d, err := e.deviceByIndex(dev)
	if err != nil {
		return err
	}

	return d.Release()
}
