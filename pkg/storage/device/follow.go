package device

import "fmt"

// follow returns the segment record with the given zero-based index,
// extending the chain with empty records as needed. Newly created
// segments have no slot array; it is populated lazily by the first
// write into them. The device lock must be held.
//
// On allocation failure the records created before the failing one
// remain attached, so a retried operation resumes from the partial
// chain instead of rebuilding it.
//
// Every record is charged against the allocator, which is the only
// bound on chain growth: a distant target index means as many Grab
// calls as there are missing records.
func (d *Device) follow(n int) (*segment, error) {
	for len(d.chain) <= n {
		if err := d.alloc.Grab(segmentCost); err != nil {
			return nil, fmt.Errorf("extend chain to segment %d: %w", len(d.chain), err)
		}

		d.chain = append(d.chain, new(segment))
	}

	return d.chain[n], nil
}
