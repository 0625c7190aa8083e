package main

import (
	nodeconfig "github.com/rtbo/scull/cmd/scull-node/config/node"
	"github.com/rtbo/scull/pkg/services/session"
	"go.uber.org/zap"
)

func initSessions(c *cfg) {
	s, err := session.NewTokenStore(c.engine,
		session.WithCapacity(nodeconfig.SessionLimit(c.appCfg)),
		session.WithLogger(c.log),
	)
	fatalOnErr(err)

	c.sessions = s

	c.closers = append(c.closers, func() {
		err := c.sessions.Close()
		if err != nil {
			c.log.Info("session store closing failure",
				zap.String("error", err.Error()),
			)
		}
	})
}
