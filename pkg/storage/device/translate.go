package device

// position is the decomposition of a linear byte offset within the
// quantum/qset geometry of a device.
type position struct {
	// index of the segment in the chain
	seg int

	// quantum slot within the segment
	slot int

	// byte offset within the quantum
	off int
}

// translate maps a linear byte offset to its position for the given
// geometry. Pure arithmetic, shared by the read and the write path
// so their offset semantics agree.
func translate(pos uint64, quantum, qset int) position {
	itemsize := uint64(quantum) * uint64(qset)

	rest := pos % itemsize

	return position{
		seg:  int(pos / itemsize),
		slot: int(rest) / quantum,
		off:  int(rest) % quantum,
	}
}
