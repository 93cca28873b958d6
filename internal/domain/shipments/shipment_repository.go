package shipments

import (
	"context"

	"github.com/google/uuid"
)

// ShipmentRepository defines the persistence interface for shipments
type ShipmentRepository interface {
	// FindByID loads a shipment with its requests and their products.
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)
	// FindByIDForUpdate loads a shipment with its requests under a
	// row-level write lock. Must be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Shipment, error)
	// FindAll returns shipments newest first, without requests.
	FindAll(ctx context.Context) ([]Shipment, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	// FindRequestByID loads a single request together with its parent shipment.
	FindRequestByID(ctx context.Context, requestID uuid.UUID) (*ShipmentRequest, *Shipment, error)
	Create(ctx context.Context, shipment *Shipment) error
	// Save persists the shipment and its current request set, deleting
	// requests that were removed from the aggregate.
	Save(ctx context.Context, shipment *Shipment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
