package scheduler

import (
	"context"
	"time"

	apporders "github.com/stockflow/backend/internal/application/orders"
	"go.uber.org/zap"
)

// MaintenanceScheduler periodically purges cancelled orders that have aged
// past the retention window
type MaintenanceScheduler struct {
	orderSvc *apporders.Service
	logger   *zap.Logger
	interval time.Duration
}

// NewMaintenanceScheduler creates a new MaintenanceScheduler
func NewMaintenanceScheduler(orderSvc *apporders.Service, logger *zap.Logger, interval time.Duration) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		orderSvc: orderSvc,
		logger:   logger.Named("maintenance"),
		interval: interval,
	}
}

// Run executes the purge loop until the context is cancelled
func (s *MaintenanceScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("maintenance stopped")
			return
		case <-ticker.C:
			if _, err := s.orderSvc.PurgeCancelled(ctx); err != nil {
				s.logger.Error("cancelled order purge failed", zap.Error(err))
			}
		}
	}
}
