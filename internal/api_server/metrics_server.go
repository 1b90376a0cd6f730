package apiserver

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricServer exposes the prometheus registry on its own listener so
// scraping never competes with resume uploads.
type MetricServer struct {
	httpServer *http.Server
	listener   net.Listener
}

func NewMetricServer(bindAddress string, listener net.Listener) *MetricServer {
	return newMetricServer(bindAddress, listener, prometheus.DefaultGatherer)
}

func newMetricServer(bindAddress string, listener net.Listener, gatherer prometheus.Gatherer) *MetricServer {
	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorLog:      zap.NewStdLog(zap.L().Named("metrics_server")),
		ErrorHandling: promhttp.ContinueOnError,
	}))
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return &MetricServer{
		listener:   listener,
		httpServer: &http.Server{Addr: bindAddress, Handler: router},
	}
}

func (m *MetricServer) Run(ctx context.Context) error {
	return serve(ctx, "metrics_server", m.httpServer, m.listener)
}
