package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/gigflick/resume-analyzer/internal/events"
	"github.com/gigflick/resume-analyzer/internal/store"
	"github.com/gigflick/resume-analyzer/internal/store/model"
	"github.com/gigflick/resume-analyzer/pkg/log"
	"github.com/gigflick/resume-analyzer/pkg/metrics"
	"github.com/gigflick/resume-analyzer/pkg/requestid"
)

const (
	PDFContentType = "application/pdf"

	dispatchFailedMessage = "analysis could not be scheduled"
)

// Upload is a resume file received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

type AnalysisService struct {
	store      store.Store
	dispatcher Dispatcher
	events     EventWriter
	archive    Archive
	logger     *log.StructuredLogger
	now        func() time.Time
}

func NewAnalysisService(store store.Store, dispatcher Dispatcher, ew EventWriter) *AnalysisService {
	return &AnalysisService{
		store:      store,
		dispatcher: dispatcher,
		events:     ew,
		logger:     log.NewDebugLogger("analysis_service"),
		now:        time.Now,
	}
}

// WithArchive keeps a copy of every accepted upload.
func (as *AnalysisService) WithArchive(archive Archive) *AnalysisService {
	as.archive = archive
	return as
}

// Submit validates the upload, creates a processing analysis and dispatches it.
func (as *AnalysisService) Submit(ctx context.Context, upload Upload) (*model.Analysis, error) {
	tracer := as.logger.WithContext(ctx).Operation("submit_analysis").
		WithString("file_name", upload.FileName).
		WithInt("size", len(upload.Data)).
		Build()

	if reason, err := ValidateUpload(upload); err != nil {
		metrics.IncreaseUploadsRejectedMetric(reason)
		tracer.Error(err).Log()
		return nil, err
	}

	analysis, err := as.store.Analysis().Create(ctx, upload.FileName, as.now().UTC())
	if err != nil {
		tracer.Error(err).Log()
		return nil, fmt.Errorf("failed to create analysis: %w", err)
	}
	tracer.Step("analysis_created").WithUUID("analysis_id", analysis.ID).Log()

	if as.archive != nil {
		key, err := as.archive.Put(ctx, analysis.ID.String(), upload.FileName, upload.Data)
		if err != nil {
			tracer.Step("archive_failed").WithParam("error", err).Log()
		} else {
			tracer.Step("archived").WithString("key", key).Log()
		}
	}

	emit(ctx, as.events, events.AnalysisCreatedKind, newAnalysisEvent(ctx, analysis))

	task := AnalysisTask{
		AnalysisID: analysis.ID,
		FileName:   analysis.FileName,
		Data:       upload.Data,
		RequestID:  requestid.FromContext(ctx),
	}
	if err := as.dispatcher.Dispatch(ctx, task); err != nil {
		tracer.Error(err).Log()
		as.markDispatchFailed(ctx, analysis)
		return nil, fmt.Errorf("failed to dispatch analysis %s: %w", analysis.ID, err)
	}

	tracer.Success().WithUUID("analysis_id", analysis.ID).Log()
	return analysis, nil
}

func (as *AnalysisService) Get(ctx context.Context, id string) (*model.Analysis, error) {
	analysisID, err := uuid.Parse(id)
	if err != nil {
		return nil, NewErrAnalysisNotFound(id)
	}

	analysis, err := as.store.Analysis().Get(ctx, analysisID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrAnalysisNotFound(id)
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return analysis, nil
}

func (as *AnalysisService) markDispatchFailed(ctx context.Context, analysis *model.Analysis) {
	status := model.AnalysisStatusFailed
	message := dispatchFailedMessage
	failed, err := as.store.Analysis().Update(ctx, analysis.ID, model.AnalysisUpdate{
		Status:        &status,
		StatusMessage: &message,
	})
	if err != nil {
		as.logger.WithContext(ctx).Operation("mark_dispatch_failed").
			WithUUID("analysis_id", analysis.ID).
			Build().
			Error(err).
			Log()
		return
	}
	metrics.IncreaseAnalysesTotalMetric(string(status), 0)
	emit(ctx, as.events, events.AnalysisFailedKind, newAnalysisEvent(ctx, failed))
}

// ValidateUpload returns the rejection reason along with the validation error.
func ValidateUpload(upload Upload) (string, error) {
	if strings.TrimSpace(upload.FileName) == "" {
		return "missing_file", NewErrInvalidUpload("file name is empty")
	}
	if len(upload.Data) == 0 {
		return "missing_file", NewErrInvalidUpload("file is empty")
	}
	if upload.ContentType != "" {
		declared, _, _ := strings.Cut(upload.ContentType, ";")
		if strings.TrimSpace(declared) != PDFContentType {
			return "invalid_type", NewErrInvalidUpload("only PDF files are allowed")
		}
	}
	if detected := mimetype.Detect(upload.Data); !detected.Is(PDFContentType) {
		return "invalid_content", NewErrInvalidUpload(fmt.Sprintf("content is %s, not a PDF", detected.String()))
	}
	return "", nil
}

func newAnalysisEvent(ctx context.Context, analysis *model.Analysis) events.AnalysisEvent {
	ev := events.AnalysisEvent{
		AnalysisID:    analysis.ID.String(),
		FileName:      analysis.FileName,
		Status:        string(analysis.Status),
		StatusMessage: analysis.StatusMessage,
		RequestID:     requestid.FromContext(ctx),
	}
	if results := analysis.ResultsOrNil(); results != nil {
		score := results.OverallScore
		ev.OverallScore = &score
	}
	return ev
}

func emit(ctx context.Context, ew EventWriter, kind string, payload any) {
	if ew == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := ew.Write(ctx, kind, bytes.NewReader(data)); err != nil {
		log.NewLogger("events").WithContext(ctx).Operation("emit").
			WithString("kind", kind).
			Build().
			Error(err).
			Log()
	}
}
