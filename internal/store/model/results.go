package model

import "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Results is the analyzer output persisted with a completed analysis.
type Results struct {
	Overview      string         `json:"overview"`
	Strengths     []string       `json:"strengths"`
	Weaknesses    []string       `json:"weaknesses"`
	OverallScore  int            `json:"overallScore" validate:"min=0,max=100"`
	Sections      []Section      `json:"sections" validate:"unique=Name,dive"`
	Accessibility *Accessibility `json:"accessibility,omitempty"`
}

type Section struct {
	Name        string   `json:"name" validate:"required"`
	Score       int      `json:"score" validate:"min=0,max=100"`
	Content     string   `json:"content"`
	Suggestions []string `json:"suggestions"`
}

type Accessibility struct {
	Score           int                  `json:"score" validate:"min=0,max=100"`
	Issues          []AccessibilityIssue `json:"issues" validate:"dive"`
	OverallFeedback string               `json:"overallFeedback"`
}

type AccessibilityIssue struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity" validate:"oneof=high medium low"`
	Suggestion  string   `json:"suggestion"`
}

// Validate checks score ranges, section name uniqueness and issue severities.
func (r *Results) Validate() error {
	return validate.Struct(r)
}
