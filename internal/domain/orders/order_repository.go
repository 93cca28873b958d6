package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderRepository defines the persistence interface for orders
type OrderRepository interface {
	// FindByID loads an order with its line items and their products.
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindByIDForUpdate loads an order with its line items under a
	// row-level write lock. Must be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindAll returns orders newest first, optionally filtered by status,
	// with line items and product info preloaded.
	FindAll(ctx context.Context, status *OrderStatus) ([]Order, error)
	ExistsByCustomerName(ctx context.Context, customerName string) (bool, error)
	Create(ctx context.Context, order *Order) error
	Save(ctx context.Context, order *Order) error
	// DeleteCancelledBefore purges CANCELLED orders whose last status change
	// is older than the cutoff. Returns the number of purged orders.
	DeleteCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
