package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gigflick/resume-analyzer/internal/store/model"
)

type Score interface {
	Create(ctx context.Context, score model.SectionScore) (*model.SectionScore, error)
	List(ctx context.Context, analysisID uuid.UUID) (model.SectionScoreList, error)
}

type ScoreStore struct {
	db *gorm.DB
}

// Make sure we conform to Score interface
var _ Score = (*ScoreStore)(nil)

func NewScoreStore(db *gorm.DB) Score {
	return &ScoreStore{db: db}
}

// Create inserts a score row. The referenced analysis must exist, otherwise ErrRecordNotFound
// is returned and nothing is written.
func (s *ScoreStore) Create(ctx context.Context, score model.SectionScore) (*model.SectionScore, error) {
	if score.SectionName == "" {
		return nil, fmt.Errorf("%w: section name is empty", ErrInvalidRecord)
	}
	if score.Score < 0 || score.Score > 100 {
		return nil, fmt.Errorf("%w: score %d out of range", ErrInvalidRecord, score.Score)
	}

	if score.ID == uuid.Nil {
		score.ID = uuid.New()
	}
	if score.CreatedAt.IsZero() {
		score.CreatedAt = time.Now().UTC()
	}
	if score.Suggestions == nil {
		score.Suggestions = datatypes.NewJSONSlice([]string{})
	}

	err := s.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Analysis{}).Where("id = ?", score.AnalysisID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrRecordNotFound
		}
		return tx.Create(&score).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrRecordNotFound
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}

	return &score, nil
}

func (s *ScoreStore) List(ctx context.Context, analysisID uuid.UUID) (model.SectionScoreList, error) {
	var scores model.SectionScoreList
	err := s.getDB(ctx).
		Where("analysis_id = ?", analysisID).
		Order("position").
		Order("created_at").
		Find(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}

func (s *ScoreStore) getDB(ctx context.Context) *gorm.DB {
	return getDB(ctx, s.db)
}
