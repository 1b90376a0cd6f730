package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gigflick/resume-analyzer/internal/config"
	"github.com/gigflick/resume-analyzer/internal/store/model"
)

//go:embed sql/*.sql
var embedded embed.FS

// MigrateStore brings the schema up to date.
//
// On postgres the goose migrations run first, from cfg.Service.MigrationFolder when it is set and
// from the embedded files otherwise, followed by the river queue tables when the river queue is
// enabled. Any other database is migrated from the gorm models.
func MigrateStore(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	migrationFS, err := migrationFiles(cfg.Service.MigrationFolder)
	if err != nil {
		return err
	}

	if !cfg.Database.IsPostgres() {
		return db.WithContext(ctx).AutoMigrate(&model.Analysis{}, &model.SectionScore{})
	}

	goose.SetLogger(&logger{})
	goose.SetBaseFS(migrationFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return err
	}

	if !cfg.Service.UseRiverQueue {
		return nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("river migrations: %w", err)
	}
	defer pool.Close()

	if err := migrateRiver(ctx, pool); err != nil {
		return fmt.Errorf("river migrations: %w", err)
	}

	return nil
}

func migrationFiles(folder string) (fs.FS, error) {
	if folder == "" {
		return fs.Sub(embedded, "sql")
	}

	fi, err := os.Stat(folder)
	if err != nil {
		return nil, err
	}

	if !fi.Mode().IsDir() {
		return nil, fmt.Errorf("failed to open migration folder: %s is not a folder", folder)
	}

	return os.DirFS(folder), nil
}

func migrateRiver(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return err
	}
	_, err = migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	return err
}

// logger routes goose output to zap.
type logger struct{}

func (m *logger) Printf(format string, v ...interface{}) { zap.S().Named("migrations").Infof(format, v...) }
func (m *logger) Fatalf(format string, v ...interface{}) { zap.S().Named("migrations").Fatalf(format, v...) }
