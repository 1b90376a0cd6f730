package analyzer

import (
	"context"
	"fmt"

	"github.com/gigflick/resume-analyzer/internal/config"
	"github.com/gigflick/resume-analyzer/internal/store/model"
)

const (
	TransportProcess = "process"
	TransportHTTP    = "http"
)

// ProgressFunc receives human readable progress messages while an analysis runs.
type ProgressFunc func(message string)

// Analyzer turns a resume document into scored feedback.
type Analyzer interface {
	Analyze(ctx context.Context, data []byte, fileName string, progress ProgressFunc) (*model.Results, error)
}

// AnalysisError is an error reported by the analyzer itself about the document,
// as opposed to a transport failure.
type AnalysisError struct {
	Message string
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analyzer reported: %s", e.Message)
}

// NewFromConfig builds the configured transport wrapped in a circuit breaker.
func NewFromConfig(cfg *config.Config) (Analyzer, error) {
	var transport Analyzer

	switch cfg.Analyzer.Transport {
	case TransportProcess:
		if cfg.Analyzer.Command == "" {
			return nil, fmt.Errorf("analyzer command is required for the %q transport", TransportProcess)
		}
		transport = NewProcessAnalyzer(cfg.Analyzer.Command, cfg.Analyzer.Args...)
	case TransportHTTP:
		if cfg.Analyzer.URL == "" {
			return nil, fmt.Errorf("analyzer url is required for the %q transport", TransportHTTP)
		}
		transport = NewHTTPAnalyzer(cfg.Analyzer.URL, nil)
	default:
		return nil, fmt.Errorf("unknown analyzer transport %q", cfg.Analyzer.Transport)
	}

	return NewBreakerAnalyzer(transport, BreakerSettings{
		Name:         "analyzer-" + cfg.Analyzer.Transport,
		MaxRequests:  cfg.Analyzer.BreakerMaxRequests,
		Interval:     cfg.Analyzer.BreakerInterval,
		Timeout:      cfg.Analyzer.BreakerTimeout,
		MinRequests:  cfg.Analyzer.BreakerMinRequests,
		FailureRatio: cfg.Analyzer.BreakerFailureRatio,
	}), nil
}

func notify(progress ProgressFunc, message string) {
	if progress != nil && message != "" {
		progress(message)
	}
}
