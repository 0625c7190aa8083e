package storagelog

import (
	"go.uber.org/zap"
)

// headMsg is a distinctive part of all messages.
const headMsg = "device storage operation"

// Write writes message about a storage operation to logger. The data
// path runs at quantum granularity, hence debug level.
func Write(logger *zap.Logger, fields ...zap.Field) {
	logger.Debug(headMsg, fields...)
}

// OpField returns logger's field for operation type.
func OpField(op string) zap.Field {
	return zap.String("op", op)
}

// DeviceField returns logger's field for device identity.
func DeviceField(id int) zap.Field {
	return zap.Int("device", id)
}

// OffsetField returns logger's field for operation offset.
func OffsetField(off uint64) zap.Field {
	return zap.Uint64("offset", off)
}

// CountField returns logger's field for transferred byte count.
func CountField(n int) zap.Field {
	return zap.Int("count", n)
}

// SizeField returns logger's field for resulting device size.
func SizeField(sz uint64) zap.Field {
	return zap.Uint64("size", sz)
}
