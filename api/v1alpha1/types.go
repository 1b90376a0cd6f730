package v1alpha1

import (
	"net/http"
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
	Id            uuid.UUID        `json:"id"`
	FileName      string           `json:"fileName"`
	UploadedAt    time.Time        `json:"uploadedAt"`
	Status        AnalysisStatus   `json:"status"`
	StatusMessage *string          `json:"statusMessage,omitempty"`
	Results       *AnalysisResults `json:"results,omitempty"`
	EmailTo       *string          `json:"emailTo,omitempty"`
	EmailSentAt   *time.Time       `json:"emailSentAt,omitempty"`
}

type AnalysisResults struct {
	Overview      string         `json:"overview"`
	Strengths     []string       `json:"strengths"`
	Weaknesses    []string       `json:"weaknesses"`
	OverallScore  int            `json:"overallScore"`
	Sections      []Section      `json:"sections"`
	Accessibility *Accessibility `json:"accessibility,omitempty"`
}

type Section struct {
	Name        string   `json:"name"`
	Score       int      `json:"score"`
	Content     string   `json:"content"`
	Suggestions []string `json:"suggestions"`
}

type Accessibility struct {
	Score           int                  `json:"score"`
	Issues          []AccessibilityIssue `json:"issues"`
	OverallFeedback string               `json:"overallFeedback"`
}

type AccessibilityIssue struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Suggestion  string `json:"suggestion"`
}

type Analytics struct {
	TotalResumes    int64            `json:"totalResumes"`
	AverageScore    float64          `json:"averageScore"`
	SectionAverages []SectionAverage `json:"sectionAverages"`
}

type SectionAverage struct {
	SectionName   string  `json:"sectionName"`
	AverageScore  float64 `json:"averageScore"`
	TotalAnalyses int64   `json:"totalAnalyses"`
}

// SendReportRequest is the body of send-pdf and send-report.
type SendReportRequest struct {
	Email string `json:"email" validate:"required,report_email"`
}

type Message struct {
	Message string `json:"message"`
}

type Health struct {
	Status string `json:"status"`
}

func (a Analysis) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (a Analytics) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (m Message) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (h Health) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
