package grace

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// NewGracefulContext returns a context cancelled by SIGINT, SIGTERM
// and SIGHUP.
func NewGracefulContext(l *zap.Logger) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

		sig := <-ch

		l.Info("received signal",
			zap.Stringer("signal", sig),
		)

		cancel()
	}()

	return ctx
}
