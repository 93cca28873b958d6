package persistence

import (
	"context"

	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/orders"
	"github.com/stockflow/backend/internal/domain/report"
	"github.com/stockflow/backend/internal/domain/shipments"
	"gorm.io/gorm"
)

// GormDashboardRepository implements report.DashboardRepository using GORM.
// All figures are computed in SQL; no entity rows are materialized.
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewGormDashboardRepository creates a new GormDashboardRepository
func NewGormDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

func (r *GormDashboardRepository) conn(ctx context.Context) *gorm.DB {
	return Conn(ctx, r.db)
}

// Stats computes the dashboard summary counters
func (r *GormDashboardRepository) Stats(ctx context.Context) (*report.DashboardStats, error) {
	db := r.conn(ctx)
	stats := &report.DashboardStats{}

	if err := db.Model(&catalog.Product{}).Count(&stats.TotalSKUs).Error; err != nil {
		return nil, err
	}

	var totalUnits struct{ Total int64 }
	if err := db.Model(&catalog.Product{}).
		Select("COALESCE(SUM(quantity_in_stock), 0) AS total").
		Scan(&totalUnits).Error; err != nil {
		return nil, err
	}
	stats.TotalUnits = totalUnits.Total

	if err := db.Model(&catalog.Product{}).
		Where("quantity_in_stock > 0 AND quantity_in_stock <= ?", report.LowStockThreshold).
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&shipments.Shipment{}).
		Where("status IN ?", []shipments.ShipmentStatus{shipments.StatusPlanning, shipments.StatusOrdered}).
		Count(&stats.PendingShipments).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&orders.Order{}).
		Where("status IN ?", []orders.OrderStatus{orders.StatusAwaitingStock, orders.StatusReadyToShip}).
		Count(&stats.ActiveOrders).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// LowStockItems returns the products running low, lowest quantity first
func (r *GormDashboardRepository) LowStockItems(ctx context.Context, limit int) ([]report.LowStockItem, error) {
	var items []report.LowStockItem
	if err := r.conn(ctx).Model(&catalog.Product{}).
		Select("id, name, sku, quantity_in_stock AS quantity").
		Where("quantity_in_stock > 0 AND quantity_in_stock <= ?", report.LowStockThreshold).
		Order("quantity_in_stock ASC, name ASC").
		Limit(limit).
		Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
