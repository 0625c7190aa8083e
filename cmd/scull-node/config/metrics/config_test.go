package metricsconfig_test

import (
	"testing"
	"time"

	"github.com/rtbo/scull/cmd/scull-node/config"
	metricsconfig "github.com/rtbo/scull/cmd/scull-node/config/metrics"
	configtest "github.com/rtbo/scull/cmd/scull-node/config/test"
	"github.com/stretchr/testify/require"
)

func TestMetricsSection(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		empty := configtest.EmptyConfig()

		require.False(t, metricsconfig.Enabled(empty))
		require.Equal(t, metricsconfig.AddressDefault, metricsconfig.Address(empty))
		require.Equal(t, metricsconfig.ShutdownTimeoutDefault, metricsconfig.ShutdownTimeout(empty))
	})

	const path = "../../../../config/example/node"

	var fileConfigTest = func(c *config.Config) {
		require.True(t, metricsconfig.Enabled(c))
		require.Equal(t, "localhost:9091", metricsconfig.Address(c))
		require.Equal(t, 20*time.Second, metricsconfig.ShutdownTimeout(c))
	}

	configtest.ForEachFileType(path, fileConfigTest)
}
