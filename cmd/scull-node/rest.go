package main

import (
	"context"

	nodeconfig "github.com/rtbo/scull/cmd/scull-node/config/node"
	"github.com/rtbo/scull/pkg/services/rest"
	httputil "github.com/rtbo/scull/pkg/util/http"
	"go.uber.org/zap"
)

func initDataAPI(c *cfg) {
	restOpts := []rest.Option{
		rest.WithLogger(c.log),
	}

	if c.cfgNotifications.enabled {
		restOpts = append(restOpts, rest.WithEventEmitter(c.cfgNotifications.n))
	}

	svc := rest.New(c.engine, c.sessions, restOpts...)

	var prm httputil.Prm

	prm.Address = nodeconfig.Address(c.appCfg)
	prm.Handler = svc.Handler()

	srv := httputil.New(prm,
		httputil.WithShutdownTimeout(
			nodeconfig.ShutdownTimeout(c.appCfg),
		),
	)

	c.workers = append(c.workers, newWorkerFromFunc(func(context.Context) {
		fatalOnErr(srv.Serve())
	}))

	c.closers = append(c.closers, func() {
		c.log.Debug("shutting down data API")

		err := srv.Shutdown()
		if err != nil {
			c.log.Debug("could not shutdown data API server",
				zap.String("error", err.Error()),
			)
		}

		c.log.Debug("data API has been stopped")
	})
}
