package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	metricsconfig "github.com/rtbo/scull/cmd/scull-node/config/metrics"
	"github.com/rtbo/scull/misc"
	"github.com/rtbo/scull/pkg/metrics"
	httputil "github.com/rtbo/scull/pkg/util/http"
	"go.uber.org/zap"
)

const statsPollInterval = 15 * time.Second

func initMetrics(c *cfg) {
	if !metricsconfig.Enabled(c.appCfg) {
		return
	}

	c.metrics = metrics.NewNodeMetrics(misc.Version)

	var prm httputil.Prm

	prm.Address = metricsconfig.Address(c.appCfg)
	prm.Handler = promhttp.Handler()

	srv := httputil.New(prm,
		httputil.WithShutdownTimeout(
			metricsconfig.ShutdownTimeout(c.appCfg),
		),
	)

	c.workers = append(c.workers, newWorkerFromFunc(func(context.Context) {
		fatalOnErr(srv.Serve())
	}))

	c.workers = append(c.workers, newWorkerFromFunc(func(ctx context.Context) {
		pollStats(ctx, c)
	}))

	c.closers = append(c.closers, func() {
		c.log.Debug("shutting down metrics service")

		err := srv.Shutdown()
		if err != nil {
			c.log.Debug("could not shutdown metrics server",
				zap.String("error", err.Error()),
			)
		}

		c.log.Debug("metrics service has been stopped")
	})
}

// pollStats periodically refreshes the state gauges. The operation
// counters and histograms are fed by the engine itself; the gauges
// describe state rather than flow, so sampling is enough.
func pollStats(ctx context.Context, c *cfg) {
	t := time.NewTicker(statsPollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			collectStats(ctx, c)
		}
	}
}

func collectStats(ctx context.Context, c *cfg) {
	infos, err := c.engine.DumpAll(ctx)
	if err != nil {
		c.log.Debug("could not collect device stats",
			zap.String("error", err.Error()),
		)

		return
	}

	for _, info := range infos {
		c.metrics.SetDeviceSize(info.ID, info.Size)
		c.metrics.SetDeviceSegments(info.ID, len(info.Segments))
	}

	c.metrics.SetSessionCount(c.sessions.Count())
}
