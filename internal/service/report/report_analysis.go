package report

import (
	"path"
	"strings"
	"time"

	"github.com/gigflick/resume-analyzer/internal/service/report/types"
	"github.com/gigflick/resume-analyzer/internal/store/model"
)

type StandardAnalysisProcessor struct {
	now func() time.Time
}

func NewStandardAnalysisProcessor() *StandardAnalysisProcessor {
	return &StandardAnalysisProcessor{now: time.Now}
}

func (p *StandardAnalysisProcessor) ProcessAnalysis(analysis *model.Analysis, options types.ReportOptions) (*types.ReportData, error) {
	results := analysis.ResultsOrNil()
	if analysis.Status != model.AnalysisStatusCompleted || results == nil {
		return nil, types.ErrNoResults
	}

	if !options.IncludeAccessibility {
		trimmed := *results
		trimmed.Accessibility = nil
		results = &trimmed
	}

	now := p.now()
	data := &types.ReportData{
		AnalysisID: analysis.ID.String(),
		FileName:   analysis.FileName,
		UploadedAt: analysis.UploadedAt.Format("January 2, 2006 15:04"),
		Results:    results,
		Rating:     Rating(results.OverallScore),
		Options:    options,
		Timestamps: types.ReportTimestamps{
			Generated:     now.Format("January 2, 2006"),
			GeneratedTime: now.Format("15:04 MST"),
		},
	}
	// callers holding the score rows overwrite this
	data.RecordedSections = len(results.Sections)
	return data, nil
}

// Rating turns a 0-100 score into a label.
func Rating(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 70:
		return "Good"
	case score >= 50:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

// AttachmentName returns "<name without extension>_analysis.pdf".
func AttachmentName(fileName string) string {
	base := fileName[strings.LastIndexAny(fileName, `/\`)+1:]
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" {
		base = "resume"
	}
	return base + "_analysis.pdf"
}
