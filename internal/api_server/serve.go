package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"
)

// serve runs srv on l until ctx is done, then drains it within
// gracefulShutdownTimeout. It returns once the shutdown has completed.
func serve(ctx context.Context, name string, srv *http.Server, l net.Listener) error {
	logger := zap.S().Named(name)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		logger.Infof("shutdown signal received: %s", ctx.Err())

		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		if err := srv.Shutdown(ctxTimeout); err != nil {
			logger.Warnw("forced shutdown", "error", err)
		}
		logger.Info("terminated")
	}()

	logger.Infof("listening on %s", l.Addr().String())
	if err := srv.Serve(l); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-shutdownDone
	return nil
}
