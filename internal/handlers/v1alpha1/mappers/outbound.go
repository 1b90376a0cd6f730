package mappers

import (
	api "github.com/gigflick/resume-analyzer/api/v1alpha1"
	"github.com/gigflick/resume-analyzer/internal/store/model"
)

func AnalysisToApi(a model.Analysis) api.Analysis {
	analysis := api.Analysis{
		Id:            a.ID,
		FileName:      a.FileName,
		UploadedAt:    a.UploadedAt,
		Status:        api.StringToAnalysisStatus(string(a.Status)),
		StatusMessage: a.StatusMessage,
		EmailTo:       a.EmailTo,
		EmailSentAt:   a.EmailSentAt,
	}

	if results := a.ResultsOrNil(); results != nil {
		r := ResultsToApi(*results)
		analysis.Results = &r
	}

	return analysis
}

func ResultsToApi(r model.Results) api.AnalysisResults {
	results := api.AnalysisResults{
		Overview:     r.Overview,
		Strengths:    orEmpty(r.Strengths),
		Weaknesses:   orEmpty(r.Weaknesses),
		OverallScore: r.OverallScore,
		Sections:     make([]api.Section, 0, len(r.Sections)),
	}

	for _, s := range r.Sections {
		results.Sections = append(results.Sections, api.Section{
			Name:        s.Name,
			Score:       s.Score,
			Content:     s.Content,
			Suggestions: orEmpty(s.Suggestions),
		})
	}

	if r.Accessibility != nil {
		accessibility := api.Accessibility{
			Score:           r.Accessibility.Score,
			OverallFeedback: r.Accessibility.OverallFeedback,
			Issues:          make([]api.AccessibilityIssue, 0, len(r.Accessibility.Issues)),
		}
		for _, issue := range r.Accessibility.Issues {
			accessibility.Issues = append(accessibility.Issues, api.AccessibilityIssue{
				Type:        issue.Type,
				Description: issue.Description,
				Severity:    string(issue.Severity),
				Suggestion:  issue.Suggestion,
			})
		}
		results.Accessibility = &accessibility
	}

	return results
}

func AnalyticsToApi(a model.Analytics) api.Analytics {
	analytics := api.Analytics{
		TotalResumes:    a.TotalResumes,
		AverageScore:    a.AverageScore,
		SectionAverages: make([]api.SectionAverage, 0, len(a.SectionAverages)),
	}

	for _, s := range a.SectionAverages {
		analytics.SectionAverages = append(analytics.SectionAverages, api.SectionAverage{
			SectionName:   s.SectionName,
			AverageScore:  s.AverageScore,
			TotalAnalyses: s.TotalAnalyses,
		})
	}

	return analytics
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
