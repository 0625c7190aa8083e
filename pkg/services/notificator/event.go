package notificator

const (
	// OpWrite is an Event operation produced by a successful write.
	OpWrite = "write"
	// OpTrim is an Event operation produced by a device trim.
	OpTrim = "trim"
)

// Event describes a completed modification of a device.
type Event struct {
	// ID is a unique event identifier. Used for the
	// 'exactly once' delivery on transports that support
	// message deduplication.
	ID string `json:"id"`

	// Device is an index of the modified device.
	Device int `json:"device"`

	// Op is the operation kind, one of OpWrite and OpTrim.
	Op string `json:"op"`

	// Offset is the position the operation started at.
	Offset uint64 `json:"offset"`

	// Count is the number of bytes transferred. Zero for trim.
	Count int `json:"count"`

	// Size is the device size after the operation.
	Size uint64 `json:"size"`
}
