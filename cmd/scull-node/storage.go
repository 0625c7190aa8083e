package main

import (
	storageconfig "github.com/rtbo/scull/cmd/scull-node/config/storage"
	"github.com/rtbo/scull/pkg/storage/device"
	"github.com/rtbo/scull/pkg/storage/engine"
	"go.uber.org/zap"
)

func initStorage(c *cfg) {
	deviceOpts := []device.Option{
		device.WithQuantum(storageconfig.Quantum(c.appCfg)),
		device.WithQSet(storageconfig.QSet(c.appCfg)),
	}

	if lim := storageconfig.MemoryLimit(c.appCfg); lim > 0 {
		deviceOpts = append(deviceOpts, device.WithMemoryLimit(lim))
	}

	engineOpts := []engine.Option{
		engine.WithLogger(c.log),
		engine.WithDeviceCount(storageconfig.DeviceCount(c.appCfg)),
		engine.WithDeviceOptions(deviceOpts...),
	}

	if c.metrics != nil {
		engineOpts = append(engineOpts, engine.WithMetrics(c.metrics))
	}

	c.engine = engine.New(engineOpts...)

	c.closers = append(c.closers, func() {
		err := c.engine.Close()
		if err != nil {
			c.log.Info("storage engine closing failure",
				zap.String("error", err.Error()),
			)
		}
	})
}
