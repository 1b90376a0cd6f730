package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	api "github.com/gigflick/resume-analyzer/api/v1alpha1"
	"github.com/gigflick/resume-analyzer/internal/handlers/validator"
	"github.com/gigflick/resume-analyzer/internal/service"
	"github.com/gigflick/resume-analyzer/pkg/log"
)

const (
	uploadField      = "resume"
	analysisNotFound = "Analysis not found"
)

type ServiceHandler struct {
	analysisSrv   *service.AnalysisService
	reportSrv     *service.ReportService
	analyticsSrv  *service.AnalyticsService
	healthSrv     *service.HealthService
	validator     *validator.Validator
	maxUploadSize int64
}

func NewServiceHandler(
	analysisSrv *service.AnalysisService,
	reportSrv *service.ReportService,
	analyticsSrv *service.AnalyticsService,
	healthSrv *service.HealthService,
	maxUploadSize int64,
) *ServiceHandler {
	v := validator.NewValidator()
	v.Register(validator.NewReportValidationRules()...)

	return &ServiceHandler{
		analysisSrv:   analysisSrv,
		reportSrv:     reportSrv,
		analyticsSrv:  analyticsSrv,
		healthSrv:     healthSrv,
		validator:     v,
		maxUploadSize: maxUploadSize,
	}
}

// RegisterRoutes mounts the REST API. uploadMiddlewares only wrap the upload endpoint.
func (h *ServiceHandler) RegisterRoutes(router chi.Router, uploadMiddlewares ...func(http.Handler) http.Handler) {
	router.Get("/health", h.Health)

	router.Route("/api", func(r chi.Router) {
		r.With(uploadMiddlewares...).Post("/analyze", h.Analyze)
		r.Get("/analytics", h.GetAnalytics)
		r.Route("/analysis/{id}", func(r chi.Router) {
			r.Get("/", h.GetAnalysis)
			r.Post("/send-pdf", h.SendPDF)
			r.Post("/send-report", h.SendReport)
			r.Get("/report.pdf", h.DownloadReport)
		})
	})
}

func respond(w http.ResponseWriter, r *http.Request, status int, body render.Renderer) {
	render.Status(r, status)
	_ = render.Render(w, r, body)
}

func respondMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	respond(w, r, status, api.Message{Message: message})
}

// respondError maps service errors to status codes. Upstream and storage failures only
// expose fallback; their cause stays in the server log.
func respondError(w http.ResponseWriter, r *http.Request, tracer *log.OperationTracer, err error, fallback string) {
	tracer.Error(err).Log()

	switch err.(type) {
	case *service.ErrValidation, *validator.ErrInvalidField:
		respondMessage(w, r, http.StatusBadRequest, err.Error())
	case *service.ErrResourceNotFound:
		respondMessage(w, r, http.StatusNotFound, analysisNotFound)
	case *service.ErrAnalysisNotCompleted:
		respondMessage(w, r, http.StatusConflict, "Analysis is not completed yet")
	default:
		respondMessage(w, r, http.StatusInternalServerError, fallback)
	}
}
