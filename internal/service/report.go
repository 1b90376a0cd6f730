package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gigflick/resume-analyzer/internal/events"
	"github.com/gigflick/resume-analyzer/internal/service/report"
	"github.com/gigflick/resume-analyzer/internal/service/report/html"
	"github.com/gigflick/resume-analyzer/internal/service/report/mail"
	"github.com/gigflick/resume-analyzer/internal/service/report/pdf"
	"github.com/gigflick/resume-analyzer/internal/service/report/types"
	"github.com/gigflick/resume-analyzer/internal/store"
	"github.com/gigflick/resume-analyzer/internal/store/model"
	"github.com/gigflick/resume-analyzer/pkg/log"
	"github.com/gigflick/resume-analyzer/pkg/metrics"
)

type ReportFormat = types.ReportFormat
type ReportType = types.ReportType
type ReportData = types.ReportData

const (
	ReportFormatPDF  = types.ReportFormatPDF
	ReportFormatHTML = types.ReportFormatHTML
)

const (
	ReportTypeSummary  = types.ReportTypeSummary
	ReportTypeDetailed = types.ReportTypeDetailed
)

var emailValidator = validator.New()

type ReportService struct {
	store     store.Store
	processor types.AnalysisProcessor
	renderers map[types.ReportFormat]types.ReportRenderer
	sender    mail.Sender
	events    EventWriter
	logger    *log.StructuredLogger
	now       func() time.Time
}

func NewReportService(store store.Store, sender mail.Sender, ew EventWriter) *ReportService {
	service := &ReportService{
		store:     store,
		processor: report.NewStandardAnalysisProcessor(),
		renderers: make(map[types.ReportFormat]types.ReportRenderer),
		sender:    sender,
		events:    ew,
		logger:    log.NewDebugLogger("report_service"),
		now:       time.Now,
	}

	pdfRenderer := pdf.NewRenderer()
	htmlRenderer := html.NewRenderer()

	service.renderers[pdfRenderer.SupportedFormat()] = pdfRenderer
	service.renderers[htmlRenderer.SupportedFormat()] = htmlRenderer

	return service
}

// Render builds the report of a completed analysis in the requested format.
func (rs *ReportService) Render(ctx context.Context, id string, reportType ReportType, format ReportFormat) ([]byte, *model.Analysis, error) {
	analysis, data, err := rs.prepare(ctx, id, reportType)
	if err != nil {
		return nil, nil, err
	}

	out, err := rs.render(data, format)
	if err != nil {
		return nil, nil, err
	}
	return out, analysis, nil
}

// Send emails the PDF report of a completed analysis and records the recipient.
func (rs *ReportService) Send(ctx context.Context, id string, email string, reportType ReportType) (*model.Analysis, error) {
	tracer := rs.logger.WithContext(ctx).Operation("send_report").
		WithString("analysis_id", id).
		WithString("report_type", string(reportType)).
		Build()

	email = strings.TrimSpace(email)
	if err := emailValidator.Var(email, "required,email"); err != nil {
		tracer.Error(err).Log()
		return nil, NewErrInvalidEmail(email)
	}

	analysis, data, err := rs.prepare(ctx, id, reportType)
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}

	attachment, err := rs.render(data, types.ReportFormatPDF)
	if err != nil {
		rs.recordFailure(reportType, tracer, err)
		return nil, err
	}
	tracer.Step("pdf_rendered").WithInt("size", len(attachment)).Log()

	body, err := rs.render(data, types.ReportFormatHTML)
	if err != nil {
		rs.recordFailure(reportType, tracer, err)
		return nil, err
	}

	err = rs.sender.Send(ctx, mail.Email{
		To:      email,
		Subject: mail.ReportSubject,
		Text:    fmt.Sprintf("Please find attached the analysis report for %s.", analysis.FileName),
		HTML:    string(body),
		Attachments: []mail.Attachment{
			{Name: report.AttachmentName(analysis.FileName), ContentType: PDFContentType, Data: attachment},
		},
	})
	if err != nil {
		err = NewErrUpstream("failed to send report", err)
		rs.recordFailure(reportType, tracer, err)
		return nil, err
	}

	sentAt := rs.now().UTC()
	updated, err := rs.store.Analysis().Update(ctx, analysis.ID, model.AnalysisUpdate{
		EmailTo:     &email,
		EmailSentAt: &sentAt,
	})
	if err != nil {
		// the mail is out; keep serving the analysis we have
		tracer.Step("record_email_failed").WithParam("error", err).Log()
		updated = analysis
	}

	metrics.IncreaseReportsTotalMetric(string(reportType), "sent")
	emit(ctx, rs.events, events.ReportSentKind, events.ReportEvent{AnalysisID: analysis.ID.String(), Kind: string(reportType)})

	tracer.Success().WithString("to", email).Log()
	return updated, nil
}

func (rs *ReportService) prepare(ctx context.Context, id string, reportType ReportType) (*model.Analysis, *types.ReportData, error) {
	analysisID, err := uuid.Parse(id)
	if err != nil {
		return nil, nil, NewErrAnalysisNotFound(id)
	}

	analysis, err := rs.store.Analysis().Get(ctx, analysisID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, nil, NewErrAnalysisNotFound(id)
		}
		return nil, nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	data, err := rs.processor.ProcessAnalysis(analysis, types.OptionsFor(reportType))
	if err != nil {
		if errors.Is(err, types.ErrNoResults) {
			return nil, nil, NewErrAnalysisNotCompleted(id, string(analysis.Status))
		}
		return nil, nil, err
	}

	scores, err := rs.store.Score().List(ctx, analysis.ID)
	if err != nil {
		rs.logger.WithContext(ctx).Operation("list_scores").
			WithUUID("analysis_id", analysis.ID).
			Build().
			Error(err).
			Log()
	} else {
		data.RecordedSections = len(scores)
	}
	return analysis, data, nil
}

func (rs *ReportService) render(data *types.ReportData, format ReportFormat) ([]byte, error) {
	renderer, ok := rs.renderers[format]
	if !ok {
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
	out, err := renderer.Render(data)
	if err != nil {
		return nil, NewErrUpstream(fmt.Sprintf("failed to render %s report", format), err)
	}
	return out, nil
}

func (rs *ReportService) recordFailure(reportType ReportType, tracer *log.OperationTracer, err error) {
	metrics.IncreaseReportsTotalMetric(string(reportType), "failed")
	tracer.Error(err).Log()
}
