package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AnalysisStatus string

const (
	AnalysisStatusProcessing AnalysisStatus = "processing"
	AnalysisStatusCompleted  AnalysisStatus = "completed"
	AnalysisStatusFailed     AnalysisStatus = "failed"
)

type Analysis struct {
	ID            uuid.UUID          `gorm:"primaryKey;column:id;type:VARCHAR(255);"`
	FileName      string             `gorm:"not null"`
	UploadedAt    time.Time          `gorm:"not null"`
	UpdatedAt     time.Time          `gorm:"not null"`
	Status        AnalysisStatus     `gorm:"not null;type:VARCHAR(20);index:analyses_status_idx"`
	StatusMessage *string            `gorm:"type:TEXT"`
	Results       JSONField[Results] `gorm:"column:results"`
	EmailTo       *string            `gorm:"type:VARCHAR(255)"`
	EmailSentAt   *time.Time
	Sequence      int64          `gorm:"not null;default:0"`
	Scores        []SectionScore `gorm:"foreignKey:AnalysisID;references:ID;constraint:OnDelete:CASCADE;"`
}

func (Analysis) TableName() string {
	return "analyses"
}

// ResultsOrNil returns nil while no results were stored.
func (a Analysis) ResultsOrNil() *Results {
	if !a.Results.Valid {
		return nil
	}
	r := a.Results.Data
	return &r
}

func (a Analysis) String() string {
	val, _ := json.Marshal(a)
	return string(val)
}

// AnalysisUpdate holds the fields to merge into an analysis row. Nil fields are left untouched.
//
// Status, StatusMessage and Results make a lifecycle update. Those only apply while the row is
// processing and, when Sequence is set, only if Sequence is greater than the stored one.
type AnalysisUpdate struct {
	Status        *AnalysisStatus
	StatusMessage *string
	Results       *Results
	EmailTo       *string
	EmailSentAt   *time.Time
	Sequence      int64
}

func (u AnalysisUpdate) IsLifecycle() bool {
	return u.Status != nil || u.StatusMessage != nil || u.Results != nil
}

// ResultsConsistent reports whether results travel with completion and only with it.
func (u AnalysisUpdate) ResultsConsistent() bool {
	completing := u.Status != nil && *u.Status == AnalysisStatusCompleted
	return completing == (u.Results != nil)
}

func (u AnalysisUpdate) IsEmpty() bool {
	return !u.IsLifecycle() && u.EmailTo == nil && u.EmailSentAt == nil
}
