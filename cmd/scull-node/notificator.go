package main

import (
	"fmt"

	notificationsconfig "github.com/rtbo/scull/cmd/scull-node/config/notifications"
	"github.com/rtbo/scull/misc"
	"github.com/rtbo/scull/pkg/network"
	"github.com/rtbo/scull/pkg/services/notificator"
	"github.com/rtbo/scull/pkg/services/notificator/nats"
	"github.com/rtbo/scull/pkg/util"
	"go.uber.org/zap"
)

const notificationPoolSize = 10

type notificationWriter struct {
	l *zap.Logger
	w *nats.Writer
}

func (n notificationWriter) Notify(topic string, ev notificator.Event) {
	if err := n.w.Notify(topic, ev); err != nil {
		n.l.Warn("could not write device notification",
			zap.String("id", ev.ID),
			zap.String("topic", topic),
			zap.Error(err),
		)
	}
}

func initNotifications(c *cfg) {
	if !notificationsconfig.Enabled(c.appCfg) {
		return
	}

	topic := notificationsconfig.Topic(c.appCfg)

	natsSvc := nats.New(
		nats.WithConnectionName(misc.NodeName), // connection name is used in the server side logs
		nats.WithTimeout(notificationsconfig.Timeout(c.appCfg)),
		nats.WithLogger(c.log),
	)

	c.cfgNotifications = cfgNotifications{
		enabled: true,
		nw: notificationWriter{
			l: c.log,
			w: natsSvc,
		},
		defaultTopic: topic,
	}

	pool, err := util.NewWorkerPool(notificationPoolSize)
	fatalOnErr(err)

	c.cfgNotifications.n = notificator.New(new(notificator.Prm).
		SetLogger(c.log).
		SetPool(pool).
		SetWriter(c.cfgNotifications.nw).
		SetDefaultTopic(topic),
	)

	c.closers = append(c.closers, pool.Release)
}

func connectNats(c *cfg) {
	if !c.cfgNotifications.enabled {
		return
	}

	endpoint := notificationsconfig.Endpoint(c.appCfg)

	var addr network.Address

	err := addr.FromString(endpoint)
	if err != nil {
		panic(fmt.Sprintf("invalid nats endpoint %s: %v", endpoint, err))
	}

	err = c.cfgNotifications.nw.w.Connect(c.ctx, addr.HostAddr())
	if err != nil {
		panic(fmt.Sprintf("could not connect to a nats endpoint %s: %v", endpoint, err))
	}
}
