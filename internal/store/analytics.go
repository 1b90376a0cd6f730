package store

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/gigflick/resume-analyzer/internal/store/model"
)

type Analytics interface {
	Compute(ctx context.Context) (*model.Analytics, error)
}

type AnalyticsStore struct {
	db *gorm.DB
}

// Make sure we conform to Analytics interface
var _ Analytics = (*AnalyticsStore)(nil)

func NewAnalyticsStore(db *gorm.DB) Analytics {
	return &AnalyticsStore{db: db}
}

// Compute aggregates the section_scores table. Errors, including a missing table, are returned as is.
func (a *AnalyticsStore) Compute(ctx context.Context) (*model.Analytics, error) {
	var totals struct {
		TotalResumes int64
		AverageScore sql.NullFloat64
	}

	db := getDB(ctx, a.db)

	err := db.Model(&model.SectionScore{}).
		Select("COUNT(DISTINCT analysis_id) AS total_resumes, AVG(score) AS average_score").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	sections := []model.SectionAverage{}
	err = db.Model(&model.SectionScore{}).
		Select("section_name, AVG(score) AS average_score, COUNT(*) AS total_analyses").
		Group("section_name").
		Order("section_name").
		Scan(&sections).Error
	if err != nil {
		return nil, err
	}

	return &model.Analytics{
		TotalResumes:    totals.TotalResumes,
		AverageScore:    totals.AverageScore.Float64,
		SectionAverages: sections,
	}, nil
}
