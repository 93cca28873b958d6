package persistence

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/orders"
	"github.com/stockflow/backend/internal/domain/shipments"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&catalog.Product{},
		&orders.Order{},
		&orders.OrderLineItem{},
		&shipments.Shipment{},
		&shipments.ShipmentRequest{},
	)
	require.NoError(t, err)

	return db
}

func createTestProduct(t *testing.T, db *gorm.DB, sku, name string, price int64, stock int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(sku, name, decimal.NewFromInt(price), stock)
	require.NoError(t, err)
	require.NoError(t, db.Create(product).Error)
	return product
}
