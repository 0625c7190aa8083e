package nodeconfig

import (
	"time"

	"github.com/rtbo/scull/cmd/scull-node/config"
)

const (
	subsection = "node"

	// AddressDefault is a default listen address of the data API.
	AddressDefault = ":8880"

	// ShutdownTimeoutDefault is a default value for the data API
	// HTTP service timeout.
	ShutdownTimeoutDefault = 30 * time.Second

	// SessionLimitDefault is a default cap of open device sessions.
	SessionLimitDefault = 512
)

// Address returns the value of "address" config parameter
// from "node" section.
//
// Returns AddressDefault if the value is not set.
func Address(c *config.Config) string {
	v := config.StringSafe(c.Sub(subsection), "address")
	if v != "" {
		return v
	}

	return AddressDefault
}

// ShutdownTimeout returns the value of "shutdown_timeout" config
// parameter from "node" section.
//
// Returns ShutdownTimeoutDefault if the value is not a positive
// duration.
func ShutdownTimeout(c *config.Config) time.Duration {
	v := config.DurationSafe(c.Sub(subsection), "shutdown_timeout")
	if v > 0 {
		return v
	}

	return ShutdownTimeoutDefault
}

// SessionLimit returns the value of "session_limit" config parameter
// from "node" section.
//
// Returns SessionLimitDefault if the value is not a positive number.
func SessionLimit(c *config.Config) int {
	v := config.IntSafe(c.Sub(subsection), "session_limit")
	if v > 0 {
		return v
	}

	return SessionLimitDefault
}
