package analyzer

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/gigflick/resume-analyzer/internal/store/model"
)

var ErrAnalyzerUnavailable = errors.New("analyzer is unavailable")

type BreakerSettings struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// BreakerAnalyzer stops calling a failing analyzer until the breaker timeout elapses.
// Errors the analyzer reports about a document and caller cancellations do not count
// as failures.
type BreakerAnalyzer struct {
	next Analyzer
	cb   *gobreaker.CircuitBreaker[*model.Results]
}

var _ Analyzer = (*BreakerAnalyzer)(nil)

func NewBreakerAnalyzer(next Analyzer, s BreakerSettings) *BreakerAnalyzer {
	settings := gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= s.MinRequests && failureRatio >= s.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var analysisErr *AnalysisError
			return errors.As(err, &analysisErr) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			zap.S().Named("analyzer").Infow("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String())
		},
	}

	return &BreakerAnalyzer{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[*model.Results](settings),
	}
}

func (b *BreakerAnalyzer) Analyze(ctx context.Context, data []byte, fileName string, progress ProgressFunc) (*model.Results, error) {
	result, err := b.cb.Execute(func() (*model.Results, error) {
		return b.next.Analyze(ctx, data, fileName, progress)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Wrap(ErrAnalyzerUnavailable, err.Error())
	}
	return result, err
}
