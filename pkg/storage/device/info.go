package device

import (
	"context"
	"fmt"
)

// Info groups the information about the Device state.
type Info struct {
	// numeric identity of the device
	ID int `json:"id"`

	// quantum size in effect, bytes
	Quantum int `json:"quantum"`

	// slots per segment in effect
	QSet int `json:"qset"`

	// current logical size, bytes
	Size uint64 `json:"size"`

	// chain records, in order
	Segments []SegmentInfo `json:"segments,omitempty"`
}

// SegmentInfo describes one segment record of the chain.
type SegmentInfo struct {
	// opaque identity of the record, stable for its lifetime
	Ref string `json:"ref"`

	// identity of the slot array, empty until the first write into
	// the segment
	SlotsRef string `json:"slots_ref,omitempty"`

	// allocated quanta; listed for the final segment of the chain only
	Quanta []QuantumInfo `json:"quanta,omitempty"`
}

// QuantumInfo describes one allocated quantum.
type QuantumInfo struct {
	// slot index within the segment
	Slot int `json:"slot"`

	// opaque identity of the quantum buffer
	Ref string `json:"ref"`
}

// DumpInfo returns the current state summary of the Device. Like any
// other operation it runs under the exclusive lock, so the snapshot
// is consistent.
//
// Returns the context error if the lock wait is cancelled.
func (d *Device) DumpInfo(ctx context.Context) (Info, error) {
	if err := d.lockDevice(ctx); err != nil {
		return Info{}, err
	}
	defer d.unlockDevice()

	ret := Info{
		ID:      d.id,
		Quantum: d.quantum,
		QSet:    d.qset,
		Size:    d.size,
	}

	if len(d.chain) > 0 {
		ret.Segments = make([]SegmentInfo, len(d.chain))
	}

	for i, seg := range d.chain {
		si := SegmentInfo{
			Ref: fmt.Sprintf("%p", seg),
		}

		if seg.slots != nil {
			si.SlotsRef = fmt.Sprintf("%p", seg.slots)

			if i == len(d.chain)-1 {
				for j, q := range seg.slots {
					if q != nil {
						si.Quanta = append(si.Quanta, QuantumInfo{
							Slot: j,
							Ref:  fmt.Sprintf("%p", q),
						})
					}
				}
			}
		}

		ret.Segments[i] = si
	}

	return ret, nil
}
