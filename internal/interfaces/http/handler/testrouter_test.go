package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	catalogapp "github.com/stockflow/backend/internal/application/catalog"
	orderapp "github.com/stockflow/backend/internal/application/orders"
	reportapp "github.com/stockflow/backend/internal/application/report"
	shipmentapp "github.com/stockflow/backend/internal/application/shipments"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/orders"
	"github.com/stockflow/backend/internal/domain/shipments"
	"github.com/stockflow/backend/internal/infrastructure/persistence"
	"github.com/stockflow/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// apiFixture wires the full HTTP stack against an in-memory database
type apiFixture struct {
	engine      *gin.Engine
	catalogSvc  *catalogapp.Service
	orderSvc    *orderapp.Service
	shipmentSvc *shipmentapp.Service
	productRepo catalog.ProductRepository
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalog.Product{},
		&orders.Order{},
		&orders.OrderLineItem{},
		&shipments.Shipment{},
		&shipments.ShipmentRequest{},
	))

	database := persistence.NewDatabaseFromGorm(db)
	productRepo := persistence.NewGormProductRepository(db)
	orderRepo := persistence.NewGormOrderRepository(db)
	shipmentRepo := persistence.NewGormShipmentRepository(db)
	dashboardRepo := persistence.NewGormDashboardRepository(db)

	logger := zap.NewNop()
	catalogSvc := catalogapp.NewService(productRepo)
	orderSvc := orderapp.NewService(database, orderRepo, productRepo, logger, 72*time.Hour)
	shipmentSvc := shipmentapp.NewService(database, shipmentRepo, productRepo, orderRepo, logger)
	reportSvc := reportapp.NewService(dashboardRepo)

	productHandler := NewProductHandler(catalogSvc)
	orderHandler := NewOrderHandler(orderSvc)
	shipmentHandler := NewShipmentHandler(shipmentSvc)
	dashboardHandler := NewDashboardHandler(reportSvc)

	engine := gin.New()

	catalogRoutes := router.NewDomainGroup("catalog", "/products")
	catalogRoutes.POST("", productHandler.Create)
	catalogRoutes.GET("", productHandler.List)
	catalogRoutes.GET("/:id", productHandler.GetByID)
	catalogRoutes.GET("/sku/:sku", productHandler.GetBySKU)
	catalogRoutes.PUT("/:id", productHandler.Update)
	catalogRoutes.DELETE("/:id", productHandler.Delete)

	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.POST("", orderHandler.Create)
	orderRoutes.GET("", orderHandler.List)
	orderRoutes.GET("/:id", orderHandler.GetByID)
	orderRoutes.POST("/:id/complete", orderHandler.Complete)
	orderRoutes.POST("/:id/cancel", orderHandler.Cancel)
	orderRoutes.POST("/:id/hold", orderHandler.Hold)
	orderRoutes.POST("/:id/resume", orderHandler.Resume)
	orderRoutes.POST("/:id/allocate", orderHandler.Allocate)

	shipmentRoutes := router.NewDomainGroup("shipments", "/shipments")
	shipmentRoutes.POST("", shipmentHandler.Create)
	shipmentRoutes.GET("", shipmentHandler.List)
	shipmentRoutes.GET("/:id", shipmentHandler.GetByID)
	shipmentRoutes.PUT("/:id/status", shipmentHandler.UpdateStatus)
	shipmentRoutes.POST("/:id/requests", shipmentHandler.AddRequest)
	shipmentRoutes.POST("/:id/requests/batch", shipmentHandler.BatchAddRequests)
	shipmentRoutes.PUT("/requests/:id", shipmentHandler.UpdateRequestQuantity)
	shipmentRoutes.DELETE("/requests/:id", shipmentHandler.DeleteRequest)
	shipmentRoutes.DELETE("/:id", shipmentHandler.Delete)
	shipmentRoutes.GET("/:id/invoice", shipmentHandler.Invoice)

	dashboardRoutes := router.NewDomainGroup("dashboard", "/dashboard")
	dashboardRoutes.GET("/stats", dashboardHandler.Stats)
	dashboardRoutes.GET("/low-stock", dashboardHandler.LowStock)

	router.NewRouter(engine).
		Register(catalogRoutes).
		Register(orderRoutes).
		Register(shipmentRoutes).
		Register(dashboardRoutes).
		Setup()

	return &apiFixture{
		engine:      engine,
		catalogSvc:  catalogSvc,
		orderSvc:    orderSvc,
		shipmentSvc: shipmentSvc,
		productRepo: productRepo,
	}
}

func (f *apiFixture) createProduct(t *testing.T, sku string, price int64, stock int) *catalogapp.ProductResponse {
	t.Helper()
	product, err := f.catalogSvc.Create(context.Background(), catalogapp.CreateProductRequest{
		SKU:          sku,
		Name:         "Product " + sku,
		UnitPrice:    decimal.NewFromInt(price),
		InitialStock: stock,
	})
	require.NoError(t, err)
	return product
}

// do performs a request against the fixture's engine and decodes the
// response envelope
func (f *apiFixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var envelope map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	}
	return w, envelope
}

func dataField(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", envelope)
	return data
}

func errorField(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	errInfo, ok := envelope["error"].(map[string]any)
	require.True(t, ok, "response has no error object: %v", envelope)
	return errInfo
}
