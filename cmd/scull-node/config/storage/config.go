package storageconfig

import (
	"github.com/rtbo/scull/cmd/scull-node/config"
)

const (
	subsection = "storage"

	// QuantumDefault is a default quantum size, bytes.
	QuantumDefault = 4000

	// QSetDefault is a default quantum set length, slots.
	QSetDefault = 1000

	// DeviceCountDefault is a default number of devices served.
	DeviceCountDefault = 4
)

// Quantum returns the value of "quantum" config parameter
// from "storage" section. Size suffixes are allowed (e.g. 4kb).
//
// Returns QuantumDefault if the value is not a positive number.
func Quantum(c *config.Config) int {
	v := config.SizeInBytesSafe(c.Sub(subsection), "quantum")
	if v > 0 {
		return int(v)
	}

	return QuantumDefault
}

// QSet returns the value of "qset" config parameter
// from "storage" section.
//
// Returns QSetDefault if the value is not a positive number.
func QSet(c *config.Config) int {
	v := config.IntSafe(c.Sub(subsection), "qset")
	if v > 0 {
		return v
	}

	return QSetDefault
}

// DeviceCount returns the value of "devices" config parameter
// from "storage" section.
//
// Returns DeviceCountDefault if the value is not a positive number.
func DeviceCount(c *config.Config) int {
	v := config.IntSafe(c.Sub(subsection), "devices")
	if v > 0 {
		return v
	}

	return DeviceCountDefault
}

// MemoryLimit returns the value of "memory_limit" config parameter
// from "storage" section. Size suffixes are allowed (e.g. 64mb).
//
// Returns 0 (no limit) if the value is missing or invalid. Without a
// limit nothing bounds the segment chain a sparse write at a distant
// offset allocates, so nodes serving untrusted clients should set one.
func MemoryLimit(c *config.Config) uint64 {
	return config.SizeInBytesSafe(c.Sub(subsection), "memory_limit")
}
