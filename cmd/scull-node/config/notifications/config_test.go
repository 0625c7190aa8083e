package notificationsconfig_test

import (
	"testing"
	"time"

	"github.com/rtbo/scull/cmd/scull-node/config"
	notificationsconfig "github.com/rtbo/scull/cmd/scull-node/config/notifications"
	configtest "github.com/rtbo/scull/cmd/scull-node/config/test"
	"github.com/stretchr/testify/require"
)

func TestNotificationsSection(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		empty := configtest.EmptyConfig()

		require.False(t, notificationsconfig.Enabled(empty))
		require.Equal(t, notificationsconfig.TopicDefault, notificationsconfig.Topic(empty))
		require.Equal(t, notificationsconfig.TimeoutDefault, notificationsconfig.Timeout(empty))

		// a disabled section tolerates the missing endpoint
		require.Empty(t, notificationsconfig.Endpoint(empty))
	})

	const path = "../../../../config/example/node"

	var fileConfigTest = func(c *config.Config) {
		require.True(t, notificationsconfig.Enabled(c))
		require.Equal(t, "localhost:4222", notificationsconfig.Endpoint(c))
		require.Equal(t, "scull-events", notificationsconfig.Topic(c))
		require.Equal(t, 10*time.Second, notificationsconfig.Timeout(c))
	}

	configtest.ForEachFileType(path, fileConfigTest)
}
