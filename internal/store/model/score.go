package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SectionScore is the per-section projection of a completed analysis.
type SectionScore struct {
	ID          uuid.UUID                   `gorm:"primaryKey;column:id;type:VARCHAR(255);"`
	AnalysisID  uuid.UUID                   `gorm:"not null;type:VARCHAR(255);index:section_scores_analysis_id_idx"`
	Position    int                         `gorm:"not null;default:0"`
	SectionName string                      `gorm:"not null;index:section_scores_section_name_idx"`
	Score       int                         `gorm:"not null"`
	Feedback    string                      `gorm:"type:TEXT"`
	Suggestions datatypes.JSONSlice[string] `gorm:"not null"`
	CreatedAt   time.Time                   `gorm:"not null"`
}

func (SectionScore) TableName() string {
	return "section_scores"
}

type SectionScoreList []SectionScore

type Analytics struct {
	TotalResumes    int64
	AverageScore    float64
	SectionAverages []SectionAverage
}

type SectionAverage struct {
	SectionName   string
	AverageScore  float64
	TotalAnalyses int64
}
