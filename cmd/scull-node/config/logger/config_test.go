package loggerconfig_test

import (
	"testing"

	"github.com/rtbo/scull/cmd/scull-node/config"
	loggerconfig "github.com/rtbo/scull/cmd/scull-node/config/logger"
	configtest "github.com/rtbo/scull/cmd/scull-node/config/test"
	"github.com/stretchr/testify/require"
)

func TestLoggerSection_Level(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		emptyConfig := configtest.EmptyConfig()

		require.Equal(t, loggerconfig.LevelDefault, loggerconfig.Level(emptyConfig))
	})

	const path = "../../../../config/example/node"

	var fileConfigTest = func(c *config.Config) {
		require.Equal(t, "debug", loggerconfig.Level(c))
	}

	configtest.ForEachFileType(path, fileConfigTest)
}
