package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the persistence interface for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// FindByIDForUpdate loads a product with a row-level write lock so a
	// check-then-mutate sequence inside a transaction cannot race a
	// concurrent reservation. Must be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	// Search matches name or SKU case-insensitively, capped at limit rows.
	Search(ctx context.Context, query string, limit int) ([]Product, error)
	FindAllOrderedByName(ctx context.Context) ([]Product, error)
	Save(ctx context.Context, product *Product) error
	Create(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}
