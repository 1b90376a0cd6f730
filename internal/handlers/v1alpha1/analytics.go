package v1alpha1

import (
	"net/http"

	api "github.com/gigflick/resume-analyzer/api/v1alpha1"
	"github.com/gigflick/resume-analyzer/internal/handlers/v1alpha1/mappers"
	"github.com/gigflick/resume-analyzer/pkg/log"
)

func (h *ServiceHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	tracer := log.NewDebugLogger("analytics_handler").WithContext(r.Context()).Operation("get_analytics").Build()

	analytics, err := h.analyticsSrv.Compute(r.Context())
	if err != nil {
		respondError(w, r, tracer, err, "Failed to compute analytics")
		return
	}

	tracer.Success().Log()
	respond(w, r, http.StatusOK, mappers.AnalyticsToApi(*analytics))
}

func (h *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.healthSrv.Check(r.Context()); err != nil {
		log.NewLogger("health_handler").WithContext(r.Context()).Operation("health").Build().Error(err).Log()
		respondMessage(w, r, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	respond(w, r, http.StatusOK, api.Health{Status: "ok"})
}
