package types

import (
	"errors"
	"fmt"

	"github.com/gigflick/resume-analyzer/internal/store/model"
)

var ErrNoResults = errors.New("analysis has no results to report")

type ReportRenderer interface {
	Render(data *ReportData) ([]byte, error)
	SupportedFormat() ReportFormat
}

type AnalysisProcessor interface {
	ProcessAnalysis(analysis *model.Analysis, options ReportOptions) (*ReportData, error)
}

type ReportFormat string

const (
	ReportFormatPDF  ReportFormat = "pdf"
	ReportFormatHTML ReportFormat = "html"
)

type ReportType string

const (
	// ReportTypeSummary covers overview, strengths, weaknesses and every section
	// with its feedback and suggestions.
	ReportTypeSummary ReportType = "summary"
	// ReportTypeDetailed adds the accessibility review.
	ReportTypeDetailed ReportType = "detailed"
)

type ReportOptions struct {
	Type                 ReportType
	IncludeAccessibility bool
}

func OptionsFor(t ReportType) ReportOptions {
	if t == ReportTypeDetailed {
		return ReportOptions{Type: t, IncludeAccessibility: true}
	}
	return ReportOptions{Type: ReportTypeSummary}
}

type ReportData struct {
	AnalysisID string
	FileName   string
	UploadedAt string
	Results    *model.Results
	Rating     string
	Options    ReportOptions
	Timestamps ReportTimestamps

	// RecordedSections counts the section score rows stored for analytics.
	// Fewer than len(Results.Sections) means some score writes were lost.
	RecordedSections int
}

// MissingScoresNote is empty unless some section scores never reached the store.
func MissingScoresNote(data *ReportData) string {
	total := len(data.Results.Sections)
	if data.RecordedSections >= total {
		return ""
	}
	return fmt.Sprintf("Note: only %d of %d section scores were recorded for analytics.", data.RecordedSections, total)
}

type ReportTimestamps struct {
	Generated     string
	GeneratedTime string
}
