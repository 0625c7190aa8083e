package device

import (
	"context"
)

// OpenPrm groups the parameters of Open operation.
type OpenPrm struct {
	trunc bool
}

// SetTruncate sets write-only access semantics: all device content
// is dropped when the session opens.
func (p *OpenPrm) SetTruncate(trunc bool) {
	p.trunc = trunc
}

// OpenRes groups the resulting values of Open operation.
type OpenRes struct{}

// Open starts a caller session on the device. A plain open changes
// no state. A truncating open trims the device under the lock,
// restoring the default geometry.
//
// Returns the context error if the lock wait is cancelled.
func (d *Device) Open(ctx context.Context, prm OpenPrm) (OpenRes, error) {
	if !prm.trunc {
		return OpenRes{}, nil
	}

	if err := d.lockDevice(ctx); err != nil {
		return OpenRes{}, err
	}

	d.trim()

	d.unlockDevice()

	return OpenRes{}, nil
}

// Release ends a caller session. It changes no state and exists as
// the symmetry point of Open.
func (d *Device) Release() error {
	return nil
}

// Close trims the device as part of shutdown teardown. The wait for
// in-flight operations is not cancellable.
func (d *Device) Close() error {
	if err := d.lockDevice(context.Background()); err != nil {
		return err
	}

	d.trim()

	d.unlockDevice()

	return nil
}

// lockDevice acquires the exclusive device lock. This is the only
// blocking point of the engine; cancelling ctx abandons the wait
// before any state is touched.
func (d *Device) lockDevice(ctx context.Context) error {
	return d.lock.Acquire(ctx, 1)
}

func (d *Device) unlockDevice() {
	d.lock.Release(1)
}
