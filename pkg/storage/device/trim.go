package device

import (
	storagelog "github.com/rtbo/scull/pkg/storage/internal/log"
	"go.uber.org/zap"
)

// trim releases every quantum and every segment of the chain,
// resets size to zero and restores the configured default geometry.
// The device lock must be held: trim is an internal primitive, so a
// half-trimmed chain is never observable between an acquire/release
// window of its own.
func (d *Device) trim() {
	var quanta int

	for _, seg := range d.chain {
		if seg.slots == nil {
			d.alloc.Put(segmentCost)
			continue
		}

		for _, q := range seg.slots {
			if q != nil {
				d.alloc.Put(len(q))
				quanta++
			}
		}

		d.alloc.Put(len(seg.slots) * slotRefCost)
		d.alloc.Put(segmentCost)
	}

	segments := len(d.chain)

	d.chain = nil
	d.size = 0
	d.quantum = d.cfg.quantum
	d.qset = d.cfg.qset

	storagelog.Write(d.log,
		storagelog.OpField("trim"),
		storagelog.DeviceField(d.id),
		zap.Int("segments", segments),
		storagelog.CountField(quanta),
	)
}
