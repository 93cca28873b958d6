package report

import (
	"context"

	"github.com/stockflow/backend/internal/domain/report"
)

// DefaultLowStockLimit caps the dashboard's low stock listing
const DefaultLowStockLimit = 5

// Service exposes the dashboard read models
type Service struct {
	dashboardRepo report.DashboardRepository
}

// NewService creates a new report Service
func NewService(dashboardRepo report.DashboardRepository) *Service {
	return &Service{dashboardRepo: dashboardRepo}
}

// Stats returns the dashboard summary counters
func (s *Service) Stats(ctx context.Context) (*report.DashboardStats, error) {
	return s.dashboardRepo.Stats(ctx)
}

// LowStock returns the products running low, lowest quantity first
func (s *Service) LowStock(ctx context.Context, limit int) ([]report.LowStockItem, error) {
	if limit <= 0 {
		limit = DefaultLowStockLimit
	}
	return s.dashboardRepo.LowStockItems(ctx, limit)
}
