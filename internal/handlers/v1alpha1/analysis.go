package v1alpha1

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gigflick/resume-analyzer/internal/handlers/v1alpha1/mappers"
	"github.com/gigflick/resume-analyzer/internal/service"
	"github.com/gigflick/resume-analyzer/pkg/log"
	"github.com/gigflick/resume-analyzer/pkg/metrics"
)

func (h *ServiceHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	tracer := log.NewDebugLogger("analysis_handler").WithContext(r.Context()).Operation("analyze").Build()

	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		tracer.Error(err).Log()
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			metrics.IncreaseUploadsRejectedMetric("too_large")
			respondMessage(w, r, http.StatusRequestEntityTooLarge, "File too large")
		case errors.Is(err, http.ErrMissingFile):
			metrics.IncreaseUploadsRejectedMetric("missing_file")
			respondMessage(w, r, http.StatusBadRequest, "No file uploaded")
		default:
			metrics.IncreaseUploadsRejectedMetric("malformed")
			respondMessage(w, r, http.StatusBadRequest, "Invalid multipart form")
		}
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		tracer.Error(err).Log()
		respondMessage(w, r, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	analysis, err := h.analysisSrv.Submit(r.Context(), service.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		respondError(w, r, tracer, err, "Failed to start analysis")
		return
	}

	tracer.Success().WithUUID("analysis_id", analysis.ID).Log()
	respond(w, r, http.StatusOK, mappers.AnalysisToApi(*analysis))
}

func (h *ServiceHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tracer := log.NewDebugLogger("analysis_handler").WithContext(r.Context()).Operation("get_analysis").WithString("analysis_id", id).Build()

	analysis, err := h.analysisSrv.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, tracer, err, "Failed to fetch analysis")
		return
	}

	tracer.Success().WithString("status", string(analysis.Status)).Log()
	respond(w, r, http.StatusOK, mappers.AnalysisToApi(*analysis))
}
