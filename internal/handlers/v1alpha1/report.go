package v1alpha1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	api "github.com/gigflick/resume-analyzer/api/v1alpha1"
	"github.com/gigflick/resume-analyzer/internal/service"
	"github.com/gigflick/resume-analyzer/internal/service/report"
	"github.com/gigflick/resume-analyzer/pkg/log"
)

func (h *ServiceHandler) SendPDF(w http.ResponseWriter, r *http.Request) {
	h.sendReport(w, r, service.ReportTypeSummary, "PDF sent successfully")
}

func (h *ServiceHandler) SendReport(w http.ResponseWriter, r *http.Request) {
	h.sendReport(w, r, service.ReportTypeDetailed, "Report sent successfully")
}

func (h *ServiceHandler) sendReport(w http.ResponseWriter, r *http.Request, reportType service.ReportType, successMessage string) {
	id := chi.URLParam(r, "id")
	tracer := log.NewDebugLogger("report_handler").WithContext(r.Context()).
		Operation("send_report").
		WithString("analysis_id", id).
		WithString("report_type", string(reportType)).
		Build()

	var body api.SendReportRequest
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		tracer.Error(err).Log()
		respondMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(body); err != nil {
		respondError(w, r, tracer, err, "")
		return
	}

	if _, err := h.reportSrv.Send(r.Context(), id, body.Email, reportType); err != nil {
		respondError(w, r, tracer, err, fmt.Sprintf("Failed to send %s report", reportType))
		return
	}

	tracer.Success().Log()
	respondMessage(w, r, http.StatusOK, successMessage)
}

func (h *ServiceHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tracer := log.NewDebugLogger("report_handler").WithContext(r.Context()).
		Operation("download_report").
		WithString("analysis_id", id).
		Build()

	out, analysis, err := h.reportSrv.Render(r.Context(), id, service.ReportTypeDetailed, service.ReportFormatPDF)
	if err != nil {
		respondError(w, r, tracer, err, "Failed to render report")
		return
	}

	w.Header().Set("Content-Type", service.PDFContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.AttachmentName(analysis.FileName)))
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)

	tracer.Success().WithInt("size", len(out)).Log()
}
