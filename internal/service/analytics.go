package service

import (
	"context"
	"fmt"

	"github.com/gigflick/resume-analyzer/internal/store"
	"github.com/gigflick/resume-analyzer/internal/store/model"
	"github.com/gigflick/resume-analyzer/pkg/log"
)

type AnalyticsService struct {
	store  store.Store
	logger *log.StructuredLogger
}

func NewAnalyticsService(store store.Store) *AnalyticsService {
	return &AnalyticsService{
		store:  store,
		logger: log.NewDebugLogger("analytics_service"),
	}
}

func (as *AnalyticsService) Compute(ctx context.Context) (*model.Analytics, error) {
	tracer := as.logger.WithContext(ctx).Operation("compute_analytics").Build()

	analytics, err := as.store.Analytics().Compute(ctx)
	if err != nil {
		tracer.Error(err).Log()
		return nil, fmt.Errorf("failed to compute analytics: %w", err)
	}

	tracer.Success().
		WithParam("total_resumes", analytics.TotalResumes).
		WithInt("sections", len(analytics.SectionAverages)).
		Log()
	return analytics, nil
}
