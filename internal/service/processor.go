package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gigflick/resume-analyzer/internal/analyzer"
	"github.com/gigflick/resume-analyzer/internal/events"
	"github.com/gigflick/resume-analyzer/internal/store"
	"github.com/gigflick/resume-analyzer/internal/store/model"
	"github.com/gigflick/resume-analyzer/pkg/log"
	"github.com/gigflick/resume-analyzer/pkg/metrics"
	"github.com/gigflick/resume-analyzer/pkg/requestid"
)

const (
	DefaultAnalysisTimeout = 5 * time.Minute

	completedMessage = "Analysis completed"
	failedMessage    = "analysis failed"
	timedOutMessage  = "analysis timed out"
)

var errInvalidResults = errors.New("analyzer returned invalid results")

// AnalysisProcessor runs one analysis task to a terminal state.
type AnalysisProcessor struct {
	store    store.Store
	analyzer analyzer.Analyzer
	events   EventWriter
	timeout  time.Duration
	logger   *log.StructuredLogger
}

func NewAnalysisProcessor(store store.Store, a analyzer.Analyzer, ew EventWriter, timeout time.Duration) *AnalysisProcessor {
	if timeout <= 0 {
		timeout = DefaultAnalysisTimeout
	}
	return &AnalysisProcessor{
		store:    store,
		analyzer: a,
		events:   ew,
		timeout:  timeout,
		logger:   log.NewLogger("analysis_processor"),
	}
}

// Process returns an error only when the terminal state could not be stored.
// Analyzer failures end up as a failed analysis and a nil error.
func (p *AnalysisProcessor) Process(ctx context.Context, task AnalysisTask) error {
	if task.RequestID != "" {
		ctx = requestid.ToContext(ctx, task.RequestID)
	}
	// terminal writes must survive a cancelled worker context
	persistCtx := context.WithoutCancel(ctx)

	tracer := p.logger.WithContext(ctx).Operation("process_analysis").
		WithUUID("analysis_id", task.AnalysisID).
		WithString("file_name", task.FileName).
		Build()

	start := time.Now()
	var seq atomic.Int64

	progress := func(message string) {
		status := model.AnalysisStatusProcessing
		msg := message
		_, err := p.store.Analysis().Update(persistCtx, task.AnalysisID, model.AnalysisUpdate{
			Status:        &status,
			StatusMessage: &msg,
			Sequence:      seq.Add(1),
		})
		if err != nil {
			metrics.IncreaseProgressUpdateErrorsMetric()
			tracer.Step("progress_update_failed").WithParam("error", err).Log()
			return
		}
		tracer.Step("progress").WithString("message", message).Log()
	}

	analyzeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	results, err := p.analyzer.Analyze(analyzeCtx, task.Data, task.FileName, progress)
	if err == nil {
		if results == nil {
			err = errInvalidResults
		} else if verr := results.Validate(); verr != nil {
			err = fmt.Errorf("%w: %w", errInvalidResults, verr)
		}
	}

	if err != nil {
		message := failedMessage
		if errors.Is(analyzeCtx.Err(), context.DeadlineExceeded) {
			message = timedOutMessage
		}
		tracer.Step("analysis_failed").WithParam("error", err).WithString("summary", message).Log()
		return p.fail(persistCtx, task, message, seq.Add(1), start)
	}

	return p.complete(persistCtx, task, results, seq.Add(1), start, tracer)
}

// complete stores the results and the score rows in one transaction, so readers
// never see a completed analysis whose scores are still being written. A score
// row that fails is rolled back on its own and counted as a degraded write.
func (p *AnalysisProcessor) complete(ctx context.Context, task AnalysisTask, results *model.Results, sequence int64, start time.Time, tracer *log.OperationTracer) error {
	txCtx, err := p.store.NewTransactionContext(ctx)
	if err != nil {
		tracer.Error(err).Log()
		return fmt.Errorf("failed to start transaction for analysis %s: %w", task.AnalysisID, err)
	}

	status := model.AnalysisStatusCompleted
	message := completedMessage
	analysis, err := p.store.Analysis().Update(txCtx, task.AnalysisID, model.AnalysisUpdate{
		Status:        &status,
		StatusMessage: &message,
		Results:       results,
		Sequence:      sequence,
	})
	if err != nil {
		if _, rerr := store.Rollback(txCtx); rerr != nil {
			tracer.Step("rollback_failed").WithParam("error", rerr).Log()
		}
		if errors.Is(err, store.ErrStaleUpdate) {
			tracer.Step("already_finished").WithString("status", string(analysis.Status)).Log()
			return nil
		}
		tracer.Error(err).Log()
		return fmt.Errorf("failed to complete analysis %s: %w", task.AnalysisID, err)
	}

	failures := p.writeScores(txCtx, task.AnalysisID, results.Sections, tracer)

	if _, err := store.Commit(txCtx); err != nil {
		tracer.Error(err).Log()
		return fmt.Errorf("failed to commit analysis %s: %w", task.AnalysisID, err)
	}

	metrics.IncreaseAnalysesTotalMetric(string(status), time.Since(start))
	ev := newAnalysisEvent(ctx, analysis)
	ev.ScoreWriteFailures = failures
	emit(ctx, p.events, events.AnalysisCompletedKind, ev)

	tracer.Success().
		WithInt("overall_score", results.OverallScore).
		WithInt("sections", len(results.Sections)).
		WithInt("score_write_failures", failures).
		WithBool("degraded", failures > 0).
		Log()
	return nil
}

// writeScores stores one row per section in order and returns how many could not be written.
func (p *AnalysisProcessor) writeScores(ctx context.Context, analysisID uuid.UUID, sections []model.Section, tracer *log.OperationTracer) int {
	failures := 0
	for i, section := range sections {
		_, err := p.store.Score().Create(ctx, model.SectionScore{
			AnalysisID:  analysisID,
			Position:    i,
			SectionName: section.Name,
			Score:       section.Score,
			Feedback:    section.Content,
			Suggestions: section.Suggestions,
		})
		if err != nil {
			failures++
			metrics.IncreaseScoreWriteFailuresMetric()
			tracer.Step("score_write_failed").
				WithString("section", section.Name).
				WithParam("error", err).
				Log()
		}
	}
	return failures
}

func (p *AnalysisProcessor) fail(ctx context.Context, task AnalysisTask, message string, sequence int64, start time.Time) error {
	status := model.AnalysisStatusFailed
	analysis, err := p.store.Analysis().Update(ctx, task.AnalysisID, model.AnalysisUpdate{
		Status:        &status,
		StatusMessage: &message,
		Sequence:      sequence,
	})
	if err != nil {
		if errors.Is(err, store.ErrStaleUpdate) {
			return nil
		}
		return fmt.Errorf("failed to mark analysis %s as failed: %w", task.AnalysisID, err)
	}

	metrics.IncreaseAnalysesTotalMetric(string(status), time.Since(start))
	emit(ctx, p.events, events.AnalysisFailedKind, newAnalysisEvent(ctx, analysis))
	return nil
}
