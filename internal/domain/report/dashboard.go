package report

import "context"

// LowStockThreshold is the quantity at or below which an in-stock product
// counts as running low.
const LowStockThreshold = 5

// DashboardStats summarizes catalog, order and shipment activity
type DashboardStats struct {
	TotalSKUs        int64 `json:"total_skus"`
	TotalUnits       int64 `json:"total_units"`
	LowStockCount    int64 `json:"low_stock_count"`
	PendingShipments int64 `json:"pending_shipments"`
	ActiveOrders     int64 `json:"active_orders"`
}

// LowStockItem is one catalog entry running low on stock
type LowStockItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// DashboardRepository provides the aggregate queries behind the dashboard.
// Counts are computed in SQL; no entity rows are materialized.
type DashboardRepository interface {
	Stats(ctx context.Context) (*DashboardStats, error)
	// LowStockItems returns the products with 0 < quantity <= LowStockThreshold,
	// lowest quantity first, capped at limit.
	LowStockItems(ctx context.Context, limit int) ([]LowStockItem, error)
}
