package device

// Copier moves bytes between a quantum buffer and a caller-provided
// buffer, modeling the copy across the caller boundary of the
// original character device. Read and write hand it equal-length,
// non-overlapping slices.
//
// A Copier may fail; the device reports such failures wrapped in
// ErrFault and leaves offset and size untouched.
type Copier interface {
	Copy(dst, src []byte) error
}

// directCopy copies within the process and never fails.
type directCopy struct{}

func (directCopy) Copy(dst, src []byte) error {
	copy(dst, src)
	return nil
}
