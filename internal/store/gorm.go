package store

import (
	"database/sql"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/ngrok/sqlmw"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gigflick/resume-analyzer/internal/config"
)

// instrumentedDriverName is the pgx driver wrapped with the metric interceptor.
const instrumentedDriverName = "pgx-instrumented"

var registerDriverOnce sync.Once

// InitDB opens the configured database, retrying the connection with exponential backoff.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var dia gorm.Dialector

	if cfg.Database.IsPostgres() {
		registerDriverOnce.Do(func() {
			sql.Register(instrumentedDriverName, sqlmw.Driver(stdlib.GetDefaultDriver(), &metricInterceptor{}))
		})
		dia = postgres.New(postgres.Config{
			DriverName: instrumentedDriverName,
			DSN:        cfg.Database.DSN(),
		})
	} else {
		dia = sqlite.Open(cfg.Database.Name)
	}

	newLogger := logger.New(
		logrus.New(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)

	var newDB *gorm.DB
	connect := func() error {
		db, err := gorm.Open(dia, &gorm.Config{Logger: newLogger, TranslateError: true})
		if err != nil {
			return err
		}
		newDB = db
		return nil
	}

	retry := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), cfg.Database.ConnectRetries)
	err := backoff.RetryNotify(connect, retry, func(err error, next time.Duration) {
		zap.S().Named("gorm").Warnw("failed to connect database, retrying", "error", err, "retry_in", next)
	})
	if err != nil {
		zap.S().Named("gorm").Errorw("failed to connect database", "error", err)
		return nil, err
	}

	sqlDB, err := newDB.DB()
	if err != nil {
		zap.S().Named("gorm").Errorw("failed to configure connections", "error", err)
		return nil, err
	}

	if cfg.Database.IsPostgres() {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)

		var version string
		if result := newDB.Raw("SELECT version()").Scan(&version); result.Error != nil {
			return nil, result.Error
		}
		zap.S().Named("gorm").Infof("PostgreSQL information: '%s'", version)
	} else {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	}

	return newDB, nil
}
