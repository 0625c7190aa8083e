package device

import "errors"

// ErrNoMemory is returned when memory for a new segment, slot array
// or quantum cannot be obtained. Structures attached before the
// failure remain in place, so retrying the same operation resumes
// from them instead of duplicating work.
var ErrNoMemory = errors.New("out of memory")

// ErrFault is returned when the boundary copier could not access the
// caller buffer. The failed transfer does not advance the offset and
// does not grow the device size.
var ErrFault = errors.New("faulted caller buffer")
