package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/rtbo/scull/cmd/scull-node/config"
	"github.com/rtbo/scull/misc"
	"github.com/rtbo/scull/pkg/util/grace"
	"go.uber.org/zap"
)

func fatalOnErr(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	configFile := flag.String("config", "", "path to config")
	versionFlag := flag.Bool("version", false, "scull node version")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("%s version: %s, build: %s\n", misc.NodeName, misc.Version, misc.Build)
		os.Exit(0)
	}

	appCfg := config.New(
		config.WithConfigFile(*configFile),
	)

	c := initCfg(appCfg)

	initApp(c)

	bootUp(c)

	wait(c)

	shutdown(c)
}

func initApp(c *cfg) {
	c.ctx = grace.NewGracefulContext(c.log)

	initMetrics(c)
	initStorage(c)
	initSessions(c)
	initNotifications(c)
	initDataAPI(c)
	initProfiler(c)
}

func bootUp(c *cfg) {
	fatalOnErr(c.engine.Init())

	connectNats(c)

	startWorkers(c)

	if c.metrics != nil {
		c.metrics.SetHealth(1)
	}

	c.log.Info("application started",
		zap.String("name", misc.NodeName),
		zap.String("version", misc.Version),
	)
}

func wait(c *cfg) {
	<-c.ctx.Done()

	c.log.Info("termination signal processed")
}

func shutdown(c *cfg) {
	if c.metrics != nil {
		c.metrics.SetHealth(0)
	}

	// closers run in reverse registration order: serving surfaces
	// stop before the state they serve is dropped
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}

	c.wg.Wait()

	c.log.Info("application stopped")
}
