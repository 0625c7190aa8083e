package nodeconfig_test

import (
	"testing"
	"time"

	"github.com/rtbo/scull/cmd/scull-node/config"
	nodeconfig "github.com/rtbo/scull/cmd/scull-node/config/node"
	configtest "github.com/rtbo/scull/cmd/scull-node/config/test"
	"github.com/stretchr/testify/require"
)

func TestNodeSection(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		empty := configtest.EmptyConfig()

		require.Equal(t, nodeconfig.AddressDefault, nodeconfig.Address(empty))
		require.Equal(t, nodeconfig.ShutdownTimeoutDefault, nodeconfig.ShutdownTimeout(empty))
		require.Equal(t, nodeconfig.SessionLimitDefault, nodeconfig.SessionLimit(empty))
	})

	const path = "../../../../config/example/node"

	var fileConfigTest = func(c *config.Config) {
		require.Equal(t, ":8881", nodeconfig.Address(c))
		require.Equal(t, 15*time.Second, nodeconfig.ShutdownTimeout(c))
		require.Equal(t, 100, nodeconfig.SessionLimit(c))
	}

	configtest.ForEachFileType(path, fileConfigTest)
}
