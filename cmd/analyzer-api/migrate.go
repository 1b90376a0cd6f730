package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gigflick/resume-analyzer/internal/config"
	"github.com/gigflick/resume-analyzer/internal/store"
	"github.com/gigflick/resume-analyzer/pkg/log"
	"github.com/gigflick/resume-analyzer/pkg/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the db",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		logger := log.InitLog(log.ParseLevel(cfg.Service.LogLevel), cfg.Service.LogFormat)
		defer func() { _ = logger.Sync() }()

		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Info("migrating the db")
		defer zap.S().Info("db migrated")

		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Errorw("initializing data store", "error", err)
			return err
		}

		s := store.NewStore(db)
		defer s.Close()

		if err := migrations.MigrateStore(context.Background(), db, cfg); err != nil {
			zap.S().Errorw("running migrations", "error", err)
			return err
		}

		return nil
	},
}
