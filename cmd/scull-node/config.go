package main

import (
	"context"
	"sync"

	"github.com/rtbo/scull/cmd/scull-node/config"
	loggerconfig "github.com/rtbo/scull/cmd/scull-node/config/logger"
	"github.com/rtbo/scull/pkg/metrics"
	"github.com/rtbo/scull/pkg/services/notificator"
	"github.com/rtbo/scull/pkg/services/session"
	"github.com/rtbo/scull/pkg/storage/engine"
	"github.com/rtbo/scull/pkg/util/logger"
	"go.uber.org/zap"
)

type cfg struct {
	ctx context.Context

	appCfg *config.Config

	log *zap.Logger

	wg *sync.WaitGroup

	engine *engine.StorageEngine

	sessions *session.Store

	// nil when the metrics service is disabled
	metrics *metrics.NodeMetrics

	cfgNotifications cfgNotifications

	workers []worker

	closers []func()
}

type cfgNotifications struct {
	enabled bool

	nw notificationWriter

	defaultTopic string

	n *notificator.Notificator
}

func initCfg(appCfg *config.Config) *cfg {
	log, err := logger.New(loggerconfig.Level(appCfg))
	fatalOnErr(err)

	return &cfg{
		appCfg: appCfg,
		log:    log,
		wg:     new(sync.WaitGroup),
	}
}
