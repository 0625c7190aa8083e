package commonflags

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

// Common CLI flag keys, shorthands, default
// values and their usage descriptions.
const (
	ConfigFlag          = "config"
	ConfigFlagShorthand = "c"
	ConfigFlagUsage     = "Config file (default is $HOME/.config/scull/config.yml)"

	Endpoint          = "endpoint"
	EndpointShorthand = "r"
	EndpointDefault   = "localhost:8880"
	EndpointUsage     = "Node data API address (as 'multiaddr' or '<host>:<port>')"

	Timeout          = "timeout"
	TimeoutShorthand = "t"
	TimeoutDefault   = 15 * time.Second
	TimeoutUsage     = "Timeout for an operation"

	Verbose          = "verbose"
	VerboseShorthand = "v"
	VerboseUsage     = "Verbose output"

	DeviceUsage = "Device index"
)

// GetCommandContext returns the command context bounded by the Timeout
// flag when it is set positive.
func GetCommandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout, _ := cmd.Flags().GetDuration(Timeout)
	if timeout <= 0 {
		return context.Background(), func() {}
	}

	return context.WithTimeout(context.Background(), timeout)
}
