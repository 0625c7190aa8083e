package engine

import (
	"context"

	"github.com/rtbo/scull/pkg/storage/device"
)

// DumpInfo returns the state summary of the addressed device.
//
// Returns ErrNoDevice if the index is outside the table and
// ErrClosed if the engine is shut down.
func (e *StorageEngine) DumpInfo(ctx context.Context, dev int) (device.Info, error) {
	d, err := e.deviceByIndex(dev)
	if err != nil {
		return device.Info{}, err
	}

	return d.DumpInfo(ctx)
}

// DumpAll returns the state summaries of every device of the table,
// in index order. Each device is inspected under its own lock, so
// the listing is per-device consistent, not cross-device atomic.
func (e *StorageEngine) DumpAll(ctx context.Context) ([]device.Info, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	infos := make([]device.Info, 0, len(e.devices))

	for _, d := range e.devices {
		info, err := d.DumpInfo(ctx)
		if err != nil {
			return nil, err
		}

		infos = append(infos, info)
	}

	return infos, nil
}
