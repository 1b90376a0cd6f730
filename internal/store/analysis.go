package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigflick/resume-analyzer/internal/store/model"
)

type Analysis interface {
	Create(ctx context.Context, fileName string, uploadedAt time.Time) (*model.Analysis, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Analysis, error)
	// Update returns the current row along with ErrStaleUpdate when a lifecycle update is rejected.
	Update(ctx context.Context, id uuid.UUID, update model.AnalysisUpdate) (*model.Analysis, error)
}

type AnalysisStore struct {
	db *gorm.DB
}

// Make sure we conform to Analysis interface
var _ Analysis = (*AnalysisStore)(nil)

func NewAnalysisStore(db *gorm.DB) Analysis {
	return &AnalysisStore{db: db}
}

func (a *AnalysisStore) Create(ctx context.Context, fileName string, uploadedAt time.Time) (*model.Analysis, error) {
	if fileName == "" {
		return nil, fmt.Errorf("%w: file name is empty", ErrInvalidRecord)
	}
	if uploadedAt.IsZero() {
		return nil, fmt.Errorf("%w: upload time is not set", ErrInvalidRecord)
	}

	analysis := model.Analysis{
		ID:         uuid.New(),
		FileName:   fileName,
		UploadedAt: uploadedAt.UTC(),
		UpdatedAt:  uploadedAt.UTC(),
		Status:     model.AnalysisStatusProcessing,
	}

	if err := a.getDB(ctx).Omit("Scores").Create(&analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}

	return &analysis, nil
}

func (a *AnalysisStore) Get(ctx context.Context, id uuid.UUID) (*model.Analysis, error) {
	var analysis model.Analysis
	if err := a.getDB(ctx).First(&analysis, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &analysis, nil
}

// Update merges the set fields of update into the row in one conditional statement.
// Lifecycle updates are rejected with ErrStaleUpdate once the analysis is finished or when
// their sequence is not newer than the stored one.
func (a *AnalysisStore) Update(ctx context.Context, id uuid.UUID, update model.AnalysisUpdate) (*model.Analysis, error) {
	if update.IsEmpty() {
		return a.Get(ctx, id)
	}
	if !update.ResultsConsistent() {
		return nil, fmt.Errorf("%w: results are set when, and only when, completing", ErrInvalidRecord)
	}

	values := map[string]any{"updated_at": time.Now().UTC()}
	if update.Status != nil {
		values["status"] = *update.Status
	}
	if update.StatusMessage != nil {
		values["status_message"] = *update.StatusMessage
	}
	if update.Results != nil {
		if err := update.Results.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
		values["results"] = model.MakeJSONField(*update.Results)
	}
	if update.EmailTo != nil {
		values["email_to"] = *update.EmailTo
	}
	if update.EmailSentAt != nil {
		values["email_sent_at"] = update.EmailSentAt.UTC()
	}

	tx := a.getDB(ctx).Model(&model.Analysis{}).Where("id = ?", id)
	if update.IsLifecycle() {
		tx = tx.Where("status = ?", model.AnalysisStatusProcessing)
		if update.Sequence > 0 {
			tx = tx.Where("sequence < ?", update.Sequence)
			values["sequence"] = update.Sequence
		}
	}

	result := tx.Updates(values)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		// either the row is missing or the guard rejected the update
		current, err := a.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return current, ErrStaleUpdate
	}

	return a.Get(ctx, id)
}

func (a *AnalysisStore) getDB(ctx context.Context) *gorm.DB {
	return getDB(ctx, a.db)
}
