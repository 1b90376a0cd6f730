package v1alpha1

func StringToAnalysisStatus(s string) AnalysisStatus {
	switch s {
	case string(AnalysisStatusCompleted):
		return AnalysisStatusCompleted
	case string(AnalysisStatusFailed):
		return AnalysisStatusFailed
	default:
		return AnalysisStatusProcessing
	}
}

func (s AnalysisStatus) IsTerminal() bool {
	return s == AnalysisStatusCompleted || s == AnalysisStatusFailed
}
