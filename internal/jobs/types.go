package jobs

import (
	"context"
	"time"

	"github.com/riverqueue/river"

	"github.com/gigflick/resume-analyzer/internal/service"
)

const (
	DefaultQueue  = "analysis"
	MaxJobRetries = 1
	JobKind       = "resume_analysis"

	// extra time given to the worker to store the terminal state after the analyzer timeout
	persistMargin = 30 * time.Second
)

// Processor runs an analysis task to completion.
type Processor interface {
	Process(ctx context.Context, task service.AnalysisTask) error
}

// AnalysisArgs is stored in river_job.args as JSON.
type AnalysisArgs struct {
	AnalysisID string `json:"analysis_id"`
	FileName   string `json:"file_name"`
	FileData   string `json:"file_data"` // Base64 encoded for clean JSONB storage
	RequestID  string `json:"request_id,omitempty"`
}

func (AnalysisArgs) Kind() string {
	return JobKind
}

func (AnalysisArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       DefaultQueue,
		MaxAttempts: MaxJobRetries,
	}
}
