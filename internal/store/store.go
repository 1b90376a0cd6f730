package store

import (
	"context"

	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Analysis() Analysis
	Score() Score
	Analytics() Analytics
	Ping(ctx context.Context) error
	Close() error
}

type DataStore struct {
	db        *gorm.DB
	analysis  Analysis
	score     Score
	analytics Analytics
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:        db,
		analysis:  NewAnalysisStore(db),
		score:     NewScoreStore(db),
		analytics: NewAnalyticsStore(db),
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Analysis() Analysis {
	return s.analysis
}

func (s *DataStore) Score() Score {
	return s.score
}

func (s *DataStore) Analytics() Analytics {
	return s.analytics
}

func (s *DataStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}
