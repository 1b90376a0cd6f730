package service

import (
	"context"
	"time"

	"github.com/gigflick/resume-analyzer/internal/store"
)

const healthTimeout = 2 * time.Second

type HealthService struct {
	store store.Store
}

func NewHealthService(store store.Store) *HealthService {
	return &HealthService{store: store}
}

func (hs *HealthService) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return hs.store.Ping(ctx)
}
