package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gigflick/resume-analyzer/internal/analyzer"
	apiserver "github.com/gigflick/resume-analyzer/internal/api_server"
	"github.com/gigflick/resume-analyzer/internal/config"
	"github.com/gigflick/resume-analyzer/internal/events"
	"github.com/gigflick/resume-analyzer/internal/service/report/mail"
	"github.com/gigflick/resume-analyzer/internal/store"
	"github.com/gigflick/resume-analyzer/pkg/blob"
	"github.com/gigflick/resume-analyzer/pkg/log"
	"github.com/gigflick/resume-analyzer/pkg/migrations"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the resume analyzer api",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		logger := log.InitLog(log.ParseLevel(cfg.Service.LogLevel), cfg.Service.LogFormat)
		defer func() { _ = logger.Sync() }()

		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Info("starting API service")
		defer zap.S().Info("API service stopped")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		zap.S().Info("initializing data store")
		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Errorw("initializing data store", "error", err)
			return err
		}

		if cfg.Database.AutoMigrate {
			if err := migrations.MigrateStore(ctx, db, cfg); err != nil {
				zap.S().Errorw("running migrations", "error", err)
				return err
			}
		}

		s := store.NewStore(db)
		defer s.Close()

		a, err := analyzer.NewFromConfig(cfg)
		if err != nil {
			zap.S().Errorw("creating analyzer", "error", err)
			return err
		}

		producer := events.NewEventProducer(newEventWriter(cfg), events.WithOutputTopic(cfg.Service.EventsTopic))
		defer func() {
			if err := producer.Close(); err != nil {
				zap.S().Warnw("closing event producer", "error", err)
			}
		}()

		listener, err := newListener(cfg.Service.Address)
		if err != nil {
			zap.S().Errorw("creating listener", "error", err)
			return err
		}

		server := apiserver.New(cfg, s, listener, a, producer)

		if cfg.SMTP.Enabled() {
			server = server.WithMailer(mail.NewSMTPSender(mail.SMTPConfig{
				Host:     cfg.SMTP.Host,
				Port:     cfg.SMTP.Port,
				Username: cfg.SMTP.Username,
				Password: cfg.SMTP.Password,
				From:     cfg.SMTP.From,
			}))
		} else {
			zap.S().Warn("smtp host not configured, report delivery is disabled")
		}

		if cfg.S3.Enabled() && cfg.Service.ArchiveUploads {
			archive, err := newArchive(ctx, cfg)
			if err != nil {
				zap.S().Errorw("creating upload archive", "error", err)
				return err
			}
			server = server.WithArchive(archive)
		}

		metricsListener, err := newListener(cfg.Service.MetricsAddress)
		if err != nil {
			zap.S().Errorw("creating metrics listener", "error", err)
			return err
		}

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			defer cancel()
			if err := server.Run(ctx); err != nil {
				zap.S().Errorw("running api server", "error", err)
			}
		}()

		go func() {
			defer wg.Done()
			defer cancel()
			metricsServer := apiserver.NewMetricServer(cfg.Service.MetricsAddress, metricsListener)
			if err := metricsServer.Run(ctx); err != nil {
				zap.S().Errorw("running metrics server", "error", err)
			}
		}()

		<-ctx.Done()
		wg.Wait()

		return nil
	},
}

func newEventWriter(cfg *config.Config) events.Writer {
	if cfg.Service.EventsEnabled {
		return &events.StdoutWriter{}
	}
	return events.DiscardWriter{}
}

func newArchive(ctx context.Context, cfg *config.Config) (*blob.MinioArchive, error) {
	archive, err := blob.NewMinioArchive(
		blob.WithEndpoint(cfg.S3.Endpoint),
		blob.WithBucket(cfg.S3.Bucket),
		blob.WithAccessKey(cfg.S3.AccessKey),
		blob.WithSecretKey(cfg.S3.SecretKey),
		blob.WithSSL(cfg.S3.UseSSL),
	)
	if err != nil {
		return nil, err
	}

	if err := archive.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	return archive, nil
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
