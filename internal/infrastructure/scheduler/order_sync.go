// Package scheduler hosts the background loops: marketplace order sync and
// store maintenance.
package scheduler

import (
	"context"
	"fmt"
	"time"

	apporders "github.com/stockflow/backend/internal/application/orders"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/orders"
	"github.com/stockflow/backend/internal/infrastructure/marketplace"
	"go.uber.org/zap"
)

// MarketplaceCustomerName derives the synthetic customer name that carries
// the marketplace order reference. It doubles as the dedupe key: an order
// with this customer name already in the store means the remote order was
// imported before.
func MarketplaceCustomerName(buyerName, externalID string) string {
	if buyerName == "" {
		buyerName = "Amazon Customer"
	}
	return fmt.Sprintf("%s (Amz: %s)", buyerName, externalID)
}

// OrderSyncScheduler periodically imports marketplace orders into the store
type OrderSyncScheduler struct {
	client      marketplace.Client
	orderSvc    *apporders.Service
	orderRepo   orders.OrderRepository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
	interval    time.Duration
	fetchLimit  int
}

// NewOrderSyncScheduler creates a new OrderSyncScheduler
func NewOrderSyncScheduler(
	client marketplace.Client,
	orderSvc *apporders.Service,
	orderRepo orders.OrderRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
	interval time.Duration,
	fetchLimit int,
) *OrderSyncScheduler {
	return &OrderSyncScheduler{
		client:      client,
		orderSvc:    orderSvc,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger.Named("order-sync"),
		interval:    interval,
		fetchLimit:  fetchLimit,
	}
}

// Run executes the sync loop until the context is cancelled. The first sync
// fires immediately.
func (s *OrderSyncScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.syncAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("order sync stopped")
			return
		case <-ticker.C:
			s.syncAndLog(ctx)
		}
	}
}

func (s *OrderSyncScheduler) syncAndLog(ctx context.Context) {
	imported, err := s.SyncOnce(ctx)
	if err != nil {
		s.logger.Error("order sync failed", zap.Error(err))
		return
	}
	if imported > 0 {
		s.logger.Info("order sync complete", zap.Int("imported", imported))
	}
}

// SyncOnce fetches the latest marketplace orders and imports the ones not
// seen before. An order referencing a SKU missing from the catalog is skipped
// whole and logged; it will be retried on the next run once the product
// exists.
func (s *OrderSyncScheduler) SyncOnce(ctx context.Context) (int, error) {
	remote, err := s.client.FetchRecentOrders(ctx, s.fetchLimit)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, remoteOrder := range remote {
		customerName := MarketplaceCustomerName(remoteOrder.BuyerName, remoteOrder.ExternalID)

		exists, err := s.orderRepo.ExistsByCustomerName(ctx, customerName)
		if err != nil {
			return imported, err
		}
		if exists {
			continue
		}

		items, ok := s.resolveItems(ctx, remoteOrder)
		if !ok {
			continue
		}

		if _, err := s.orderSvc.Create(ctx, apporders.CreateOrderRequest{
			CustomerName: customerName,
			Source:       string(orders.SourceAmazon),
			Items:        items,
		}); err != nil {
			s.logger.Error("failed to import marketplace order",
				zap.String("external_id", remoteOrder.ExternalID),
				zap.Error(err))
			continue
		}
		imported++
	}
	return imported, nil
}

// resolveItems maps remote SKUs to catalog products. Returns false when any
// SKU is unknown.
func (s *OrderSyncScheduler) resolveItems(ctx context.Context, remoteOrder marketplace.RemoteOrder) ([]apporders.OrderLineRequest, bool) {
	items := make([]apporders.OrderLineRequest, 0, len(remoteOrder.Items))
	for _, remoteItem := range remoteOrder.Items {
		normalized, err := catalog.NormalizeSKU(remoteItem.SKU)
		if err != nil {
			s.logger.Warn("marketplace order carries malformed SKU, skipping order",
				zap.String("external_id", remoteOrder.ExternalID),
				zap.String("sku", remoteItem.SKU))
			return nil, false
		}
		product, err := s.productRepo.FindBySKU(ctx, normalized)
		if err != nil {
			s.logger.Warn("marketplace order references unknown SKU, skipping order",
				zap.String("external_id", remoteOrder.ExternalID),
				zap.String("sku", normalized))
			return nil, false
		}
		items = append(items, apporders.OrderLineRequest{
			ProductID: product.ID,
			Quantity:  remoteItem.Quantity,
		})
	}
	return items, true
}
