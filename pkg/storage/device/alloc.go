package device

import "fmt"

// Allocator accounts the memory grabbed for a device's storage
// structures: segment records, slot arrays and quantum buffers.
//
// Grab is called with the structure's in-memory cost in bytes before
// the structure is created. An implementation refuses the grab by
// returning an error, conventionally wrapping ErrNoMemory. Put
// returns bytes previously accounted with Grab.
//
// Implementations are driven under the device lock and do not need
// synchronization of their own unless shared between devices.
type Allocator interface {
	Grab(n int) error
	Put(n int)
}

// In-memory cost of the indexing structures, charged against the
// allocator in addition to quantum payloads.
const (
	segmentCost = 48
	slotRefCost = 24
)

// nopAllocator approves every grab.
type nopAllocator struct{}

func (nopAllocator) Grab(int) error { return nil }

func (nopAllocator) Put(int) {}

// memoryBudget is an Allocator with a fixed byte budget covering all
// structures of one device.
type memoryBudget struct {
	limit uint64
	used  uint64
}

func (b *memoryBudget) Grab(n int) error {
	if b.used+uint64(n) > b.limit {
		return fmt.Errorf("%w: %d bytes in use, limit %d", ErrNoMemory, b.used, b.limit)
	}

	b.used += uint64(n)

	return nil
}

func (b *memoryBudget) Put(n int) {
	b.used -= uint64(n)
}
