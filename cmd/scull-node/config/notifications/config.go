package notificationsconfig

import (
	"fmt"
	"time"

	"github.com/rtbo/scull/cmd/scull-node/config"
)

const (
	subsection = "notifications"

	// TimeoutDefault is a default timeout for the event
	// notification operation.
	TimeoutDefault = 5 * time.Second

	// TopicDefault is a default stream name events are
	// published to.
	TopicDefault = "scull"
)

// Enabled returns the value of "enabled" config parameter
// from "notifications" section.
//
// Returns false if the value is missing or invalid.
func Enabled(c *config.Config) bool {
	return config.BoolSafe(c.Sub(subsection), "enabled")
}

// Endpoint returns the value of "endpoint" config parameter
// from "notifications" section.
//
// Panics if the value is missing while notifications are enabled.
func Endpoint(c *config.Config) string {
	v := config.StringSafe(c.Sub(subsection), "endpoint")
	if v == "" && Enabled(c) {
		panic(fmt.Errorf("no notification endpoint specified"))
	}

	return v
}

// Topic returns the value of "stream" config parameter
// from "notifications" section.
//
// Returns TopicDefault if the value is not a non-empty string.
func Topic(c *config.Config) string {
	v := config.StringSafe(c.Sub(subsection), "stream")
	if v != "" {
		return v
	}

	return TopicDefault
}

// Timeout returns the value of "timeout" config parameter
// from "notifications" section.
//
// Returns TimeoutDefault if the value is not a positive duration.
func Timeout(c *config.Config) time.Duration {
	v := config.DurationSafe(c.Sub(subsection), "timeout")
	if v > 0 {
		return v
	}

	return TimeoutDefault
}
