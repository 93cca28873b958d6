package shipments

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/orders"
	"github.com/stockflow/backend/internal/domain/shared"
	domainshipments "github.com/stockflow/backend/internal/domain/shipments"
	"github.com/stockflow/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type serviceFixture struct {
	db          *gorm.DB
	service     *Service
	productRepo catalog.ProductRepository
	orderRepo   orders.OrderRepository
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalog.Product{},
		&orders.Order{},
		&orders.OrderLineItem{},
		&domainshipments.Shipment{},
		&domainshipments.ShipmentRequest{},
	))

	database := persistence.NewDatabaseFromGorm(db)
	productRepo := persistence.NewGormProductRepository(db)
	orderRepo := persistence.NewGormOrderRepository(db)
	shipmentRepo := persistence.NewGormShipmentRepository(db)
	service := NewService(database, shipmentRepo, productRepo, orderRepo, zap.NewNop())

	return &serviceFixture{
		db:          db,
		service:     service,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

func (f *serviceFixture) createProduct(t *testing.T, sku, name string, price int64, stock int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(sku, name, decimal.NewFromInt(price), stock)
	require.NoError(t, err)
	require.NoError(t, f.productRepo.Create(context.Background(), product))
	return product
}

func (f *serviceFixture) stockOf(t *testing.T, product *catalog.Product) int {
	t.Helper()
	reloaded, err := f.productRepo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	return reloaded.QuantityInStock
}

func TestService_Create_GeneratesName(t *testing.T) {
	f := newServiceFixture(t)
	f.service.now = func() time.Time {
		return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	first, err := f.service.Create(ctx, CreateShipmentRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Shipment - March 1, 2026", first.Name)
	assert.Equal(t, string(domainshipments.StatusPlanning), first.Status)

	second, err := f.service.Create(ctx, CreateShipmentRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Shipment - March 1, 2026 (#1)", second.Name)

	third, err := f.service.Create(ctx, CreateShipmentRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Shipment - March 1, 2026 (#2)", third.Name)
}

func TestService_Create_ExplicitName(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, CreateShipmentRequest{Name: "Spring restock"})
	require.NoError(t, err)
	assert.Equal(t, "Spring restock", created.Name)

	_, err = f.service.Create(ctx, CreateShipmentRequest{Name: "Spring restock"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestService_AddRequest(t *testing.T) {
	f := newServiceFixture(t)
	widget := f.createProduct(t, "WDG01", "Widget", 10, 0)
	ctx := context.Background()

	shipment, err := f.service.Create(ctx, CreateShipmentRequest{Name: "Spring restock"})
	require.NoError(t, err)

	updated, err := f.service.AddRequest(ctx, shipment.ID, AddRequestRequest{
		ProductID: widget.ID, Quantity: 3, CustomerName: "Alice",
	})
	require.NoError(t, err)
	require.Len(t, updated.Requests, 1)

	// Same product and customer merges
	updated, err = f.service.AddRequest(ctx, shipment.ID, AddRequestRequest{
		ProductID: widget.ID, Quantity: 2, CustomerName: "Alice",
	})
	require.NoError(t, err)
	require.Len(t, updated.Requests, 1)
	assert.Equal(t, 5, updated.Requests[0].Quantity)

	t.Run("rejects unknown product", func(t *testing.T) {
		missing, err := catalog.NewProduct("MISS1", "Missing", decimal.Zero, 0)
		require.NoError(t, err)
		_, err = f.service.AddRequest(ctx, shipment.ID, AddRequestRequest{
			ProductID: missing.ID, Quantity: 1,
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestService_BatchAdd(t *testing.T) {
	f := newServiceFixture(t)
	widget := f.createProduct(t, "WDG01", "Widget", 10, 0)
	gizmo := f.createProduct(t, "GZM01", "Gizmo", 5, 0)
	ctx := context.Background()

	shipment, err := f.service.Create(ctx, CreateShipmentRequest{Name: "Spring restock"})
	require.NoError(t, err)

	updated, err := f.service.BatchAdd(ctx, shipment.ID, BatchAddRequest{
		Requests: []AddRequestRequest{
			{ProductID: widget.ID, Quantity: 3, CustomerName: "Alice"},
			{ProductID: widget.ID, Quantity: 2, CustomerName: "Alice"},
			{ProductID: gizmo.ID, Quantity: 1, CustomerName: "Bob"},
			{ProductID: gizmo.ID, Quantity: 4},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Requests, 3, "identical product and customer merged")
}

func TestService_RequestEditing(t *testing.T) {
	f := newServiceFixture(t)
	widget := f.createProduct(t, "WDG01", "Widget", 10, 0)
	ctx := context.Background()

	shipment, err := f.service.Create(ctx, CreateShipmentRequest{Name: "Spring restock"})
	require.NoError(t, err)
	withRequest, err := f.service.AddRequest(ctx, shipment.ID, AddRequestRequest{
		ProductID: widget.ID, Quantity: 3,
	})
	require.NoError(t, err)
	requestID := withRequest.Requests[0].ID

	updated, err := f.service.UpdateRequestQuantity(ctx, requestID, UpdateQuantityRequest{Quantity: 8})
	require.NoError(t, err)
	assert.Equal(t, 8, updated.Requests[0].Quantity)

	afterDelete, err := f.service.DeleteRequest(ctx, requestID)
	require.NoError(t, err)
	assert.Empty(t, afterDelete.Requests)
}

func TestService_RequestEditing_LockedAfterOrdered(t *testing.T) {
	f := newServiceFixture(t)
	widget := f.createProduct(t, "WDG01", "Widget", 10, 0)
	ctx := context.Background()

	shipment, err := f.service.Create(ctx, CreateShipmentRequest{Name: "Spring restock"})
	require.NoError(t, err)
	withRequest, err := f.service.AddRequest(ctx, shipment.ID, AddRequestRequest{
		ProductID: widget.ID, Quantity: 3,
	})
	require.NoError(t, err)
	requestID := withRequest.Requests[0].ID

	_, err = f.service.UpdateStatus(ctx, shipment.ID, UpdateStatusRequest{Status: "ORDERED"})
	require.NoError(t, err)

	_, err = f.service.AddRequest(ctx, shipment.ID, AddRequestRequest{ProductID: widget.ID, Quantity: 1})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	_, err = f.service.UpdateRequestQuantity(ctx, requestID, UpdateQuantityRequest{Quantity: 5})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	_, err = f.service.DeleteRequest(ctx, requestID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	err = f.service.Delete(ctx, shipment.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestService_MarkOrdered_SpawnsPreOrders(t *testing.T) {
	f := newServiceFixture(t)
	widget := f.createProduct(t, "WDG01", "Widget", 10, 0)
	gizmo := f.createProduct(t, "GZM01", "Gizmo", 5, 0)
	ctx := context.Background()

	shipment, err := f.service.Create(ctx, CreateShipmentRequest{Name: "Spring restock"})
	require.NoError(t, err)
	_, err = f.service.BatchAdd(ctx, shipment.ID, BatchAddRequest{
		Requests: []AddRequestRequest{
			{ProductID: widget.ID, Quantity: 3, CustomerName: "Alice"},
			{ProductID: gizmo.ID, Quantity: 1, CustomerName: "Alice"},
			{ProductID: gizmo.ID, Quantity: 2, CustomerName: "Bob"},
			{ProductID: widget.ID, Quantity: 5},
		},
	})
	require.NoError(t, err)

	ordered, err := f.service.UpdateStatus(ctx, shipment.ID, UpdateStatusRequest{Status: "ORDERED"})
	require.NoError(t, err)
	assert.Equal(t, string(domainshipments.StatusOrdered), ordered.Status)
	require.NotNil(t, ordered.OrderedAt)

	// One pre-order per named customer, none for the generic restock line
	all, err := f.orderRepo.FindAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	byCustomer := make(map[string]orders.Order, len(all))
	for _, order := range all {
		byCustomer[order.CustomerName] = order
	}

	alice := byCustomer["Alice"]
	assert.Equal(t, orders.SourcePreOrder, alice.Source)
	assert.Equal(t, orders.StatusAwaitingStock, alice.Status)
	assert.Len(t, alice.Items, 2, "one line item per request")

	bob := byCustomer["Bob"]
	require.Len(t, bob.Items, 1)
	assert.Equal(t, 2, bob.Items[0].Quantity)

	// Every named request carries its fulfilling order
	for _, request := range ordered.Requests {
		if request.CustomerName == "" {
			assert.Nil(t, request.FulfillingOrderID)
			continue
		}
		require.NotNil(t, request.FulfillingOrderID)
		assert.Equal(t, byCustomer[request.CustomerName].ID, *request.FulfillingOrderID)
	}

	assert.Equal(t, 0, f.stockOf(t, widget), "ordering a shipment does not touch stock")
}

func TestService_MarkReceived_BooksStockAndPromotes(t *testing.T) {
	f := newServiceFixture(t)
	widget := f.createProduct(t, "WDG01", "Widget", 10, 0)
	ctx := context.Background()

	shipment, err := f.service.Create(ctx, CreateShipmentRequest{Name: "Spring restock"})
	require.NoError(t, err)
	_, err = f.service.BatchAdd(ctx, shipment.ID, BatchAddRequest{
		Requests: []AddRequestRequest{
			{ProductID: widget.ID, Quantity: 3, CustomerName: "Alice"},
			{ProductID: widget.ID, Quantity: 5},
		},
	})
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(ctx, shipment.ID, UpdateStatusRequest{Status: "ORDERED"})
	require.NoError(t, err)

	received, err := f.service.UpdateStatus(ctx, shipment.ID, UpdateStatusRequest{Status: "RECEIVED"})
	require.NoError(t, err)
	assert.Equal(t, string(domainshipments.StatusReceived), received.Status)
	require.NotNil(t, received.ReceivedAt)

	// 8 units arrived, 3 immediately reserved for Alice's pre-order
	assert.Equal(t, 5, f.stockOf(t, widget))

	all, err := f.orderRepo.FindAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, orders.StatusReadyToShip, all[0].Status)
}

func TestService_MarkReceived_SkipsCancelledPreOrder(t *testing.T) {
	f := newServiceFixture(t)
	widget := f.createProduct(t, "WDG01", "Widget", 10, 0)
	ctx := context.Background()

	shipment, err := f.service.Create(ctx, CreateShipmentRequest{Name: "Spring restock"})
	require.NoError(t, err)
	_, err = f.service.AddRequest(ctx, shipment.ID, AddRequestRequest{
		ProductID: widget.ID, Quantity: 3, CustomerName: "Alice",
	})
	require.NoError(t, err)

	ordered, err := f.service.UpdateStatus(ctx, shipment.ID, UpdateStatusRequest{Status: "ORDERED"})
	require.NoError(t, err)
	linkedID := *ordered.Requests[0].FulfillingOrderID

	// The customer bails out before the stock arrives
	linked, err := f.orderRepo.FindByID(ctx, linkedID)
	require.NoError(t, err)
	require.NoError(t, linked.TransitionTo(orders.StatusCancelled))
	require.NoError(t, f.orderRepo.Save(ctx, linked))

	_, err = f.service.UpdateStatus(ctx, shipment.ID, UpdateStatusRequest{Status: "RECEIVED"})
	require.NoError(t, err)

	assert.Equal(t, 3, f.stockOf(t, widget), "the cancelled pre-order's share stays available")

	linked, err = f.orderRepo.FindByID(ctx, linkedID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, linked.Status)
}

func TestService_UpdateStatus_NoOpTransitions(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	shipment, err := f.service.Create(ctx, CreateShipmentRequest{Name: "Spring restock"})
	require.NoError(t, err)

	// Skipping a stage or going backwards changes nothing
	unchanged, err := f.service.UpdateStatus(ctx, shipment.ID, UpdateStatusRequest{Status: "RECEIVED"})
	require.NoError(t, err)
	assert.Equal(t, string(domainshipments.StatusPlanning), unchanged.Status)

	unchanged, err = f.service.UpdateStatus(ctx, shipment.ID, UpdateStatusRequest{Status: "PLANNING"})
	require.NoError(t, err)
	assert.Equal(t, string(domainshipments.StatusPlanning), unchanged.Status)

	_, err = f.service.UpdateStatus(ctx, shipment.ID, UpdateStatusRequest{Status: "LOST_AT_SEA"})
	assert.Error(t, err)
}

func TestService_Delete(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	shipment, err := f.service.Create(ctx, CreateShipmentRequest{Name: "Doomed"})
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, shipment.ID))
	_, err = f.service.Get(ctx, shipment.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_Invoice(t *testing.T) {
	f := newServiceFixture(t)
	widget := f.createProduct(t, "WDG01", "Widget", 10, 0)
	gizmo := f.createProduct(t, "GZM01", "Gizmo", 5, 0)
	ctx := context.Background()

	shipment, err := f.service.Create(ctx, CreateShipmentRequest{Name: "Spring restock"})
	require.NoError(t, err)
	_, err = f.service.BatchAdd(ctx, shipment.ID, BatchAddRequest{
		Requests: []AddRequestRequest{
			{ProductID: widget.ID, Quantity: 3, CustomerName: "Alice"},
			{ProductID: widget.ID, Quantity: 2, CustomerName: "Bob"},
			{ProductID: gizmo.ID, Quantity: 4},
		},
	})
	require.NoError(t, err)

	invoice, err := f.service.Invoice(ctx, shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spring restock", invoice.ShipmentName)
	require.Len(t, invoice.Lines, 2, "grouped by SKU across customers")
	assert.Equal(t, "GZM01", invoice.Lines[0].SKU)
	assert.Equal(t, 4, invoice.Lines[0].TotalQuantity)
	assert.Equal(t, "WDG01", invoice.Lines[1].SKU)
	assert.Equal(t, 5, invoice.Lines[1].TotalQuantity)
	assert.Equal(t, 9, invoice.TotalItems)
	assert.True(t, invoice.TotalAmount.Equal(decimal.NewFromInt(70)))
}
