package events

type AnalysisEvent struct {
	AnalysisID    string  `json:"analysis_id"`
	FileName      string  `json:"file_name"`
	Status        string  `json:"status"`
	StatusMessage *string `json:"status_message,omitempty"`
	OverallScore  *int    `json:"overall_score,omitempty"`
	// ScoreWriteFailures counts section scores that could not be stored.
	ScoreWriteFailures int    `json:"score_write_failures,omitempty"`
	RequestID          string `json:"request_id,omitempty"`
}

type ReportEvent struct {
	AnalysisID string `json:"analysis_id"`
	Kind       string `json:"kind"`
}
