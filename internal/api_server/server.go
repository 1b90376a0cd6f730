package apiserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/gigflick/resume-analyzer/internal/analyzer"
	"github.com/gigflick/resume-analyzer/internal/config"
	"github.com/gigflick/resume-analyzer/internal/events"
	handlers "github.com/gigflick/resume-analyzer/internal/handlers/v1alpha1"
	"github.com/gigflick/resume-analyzer/internal/jobs"
	"github.com/gigflick/resume-analyzer/internal/service"
	"github.com/gigflick/resume-analyzer/internal/service/report/mail"
	"github.com/gigflick/resume-analyzer/internal/store"
	"github.com/gigflick/resume-analyzer/pkg/log"
	"github.com/gigflick/resume-analyzer/pkg/metrics"
	"github.com/gigflick/resume-analyzer/pkg/middleware"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg      *config.Config
	store    store.Store
	listener net.Listener
	analyzer analyzer.Analyzer
	producer *events.EventProducer
	archive  service.Archive
	sender   mail.Sender
}

// New returns a new instance of the resume analyzer api server.
func New(
	cfg *config.Config,
	store store.Store,
	listener net.Listener,
	analyzer analyzer.Analyzer,
	producer *events.EventProducer,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		listener: listener,
		analyzer: analyzer,
		producer: producer,
		sender:   mail.DisabledSender{},
	}
}

func (s *Server) WithArchive(archive service.Archive) *Server {
	s.archive = archive
	return s
}

func (s *Server) WithMailer(sender mail.Sender) *Server {
	s.sender = sender
	return s
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")
	validator, err := RequestValidator()
	if err != nil {
		return err
	}

	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegister(nil)

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.Service.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
		middleware.RequestID,
		log.Logger(zap.L(), "router"),
		chiMiddleware.Recoverer,
		validator,
	)

	var ew service.EventWriter
	if s.producer != nil {
		ew = s.producer
	}

	processor := service.NewAnalysisProcessor(s.store, s.analyzer, ew, s.cfg.Analyzer.Timeout)

	dispatcher, stopDispatcher, err := s.newDispatcher(ctx, processor)
	if err != nil {
		return err
	}
	defer stopDispatcher()

	analysisSrv := service.NewAnalysisService(s.store, dispatcher, ew)
	if s.archive != nil {
		analysisSrv = analysisSrv.WithArchive(s.archive)
	}

	trusted, err := middleware.ParseTrustedProxies(s.cfg.Service.TrustedProxies)
	if err != nil {
		return err
	}
	limiter := middleware.NewRateLimiter(s.cfg.Service.UploadRateLimit, s.cfg.Service.UploadRateBurst, trusted...)
	defer limiter.Close()

	h := handlers.NewServiceHandler(
		analysisSrv,
		service.NewReportService(s.store, s.sender, ew),
		service.NewAnalyticsService(s.store),
		service.NewHealthService(s.store),
		s.cfg.Service.MaxUploadSize,
	)
	h.RegisterRoutes(router, limiter.Handler)

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	// in-flight uploads may still dispatch until the server is fully down
	return serve(ctx, "api_server", &srv, s.listener)
}

// newDispatcher uses the river queue on postgres and the in-process pool otherwise.
// The returned func stops it, waiting for running analyses up to the shutdown timeout.
func (s *Server) newDispatcher(ctx context.Context, processor *service.AnalysisProcessor) (service.Dispatcher, func(), error) {
	if s.cfg.Database.IsPostgres() && s.cfg.Service.UseRiverQueue {
		return s.newRiverDispatcher(ctx, processor)
	}

	pool := jobs.NewPool(processor, s.cfg.Service.AnalysisWorkers)
	zap.S().Named("api_server").Infow("in-process analysis pool started", "workers", s.cfg.Service.AnalysisWorkers)

	return pool, func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Service.ShutdownTimeout)
		defer cancel()
		if err := pool.Shutdown(drainCtx); err != nil {
			zap.S().Named("api_server").Warnw("analysis pool did not drain in time", "error", err)
		}
	}, nil
}

func (s *Server) newRiverDispatcher(ctx context.Context, processor *service.AnalysisProcessor) (service.Dispatcher, func(), error) {
	cfg, err := pgxpool.ParseConfig(s.cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse pgx config: %w", err)
	}

	// Configure connection pool for River's needs (including LISTEN/NOTIFY)
	cfg.MaxConns = 20
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	dbPool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	client, err := jobs.NewClient(dbPool, processor, s.cfg.Service.RiverQueueWorker, s.cfg.Analyzer.Timeout)
	if err != nil {
		dbPool.Close()
		return nil, nil, fmt.Errorf("failed to create river client: %w", err)
	}

	// river keeps working after the request context is gone
	if err := client.Start(context.WithoutCancel(ctx)); err != nil {
		dbPool.Close()
		return nil, nil, fmt.Errorf("failed to start river: %w", err)
	}
	zap.S().Named("api_server").Info("River job queue initialized")

	return client, func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Service.ShutdownTimeout)
		defer cancel()
		if err := client.Stop(stopCtx); err != nil {
			zap.S().Named("api_server").Warnw("failed to stop river client", "error", err)
		}
		dbPool.Close()
	}, nil
}
