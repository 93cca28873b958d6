package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shipments"
	"gorm.io/gorm"
)

// GormShipmentRepository implements shipments.ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

func (r *GormShipmentRepository) conn(ctx context.Context) *gorm.DB {
	return Conn(ctx, r.db)
}

// FindByID loads a shipment with its requests and their products
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipments.Shipment, error) {
	var shipment shipments.Shipment
	if err := r.conn(ctx).
		Preload("Requests", func(db *gorm.DB) *gorm.DB {
			return db.Order("shipment_requests.created_at ASC")
		}).
		Preload("Requests.Product").
		First(&shipment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

// FindByIDForUpdate loads a shipment with its requests under a row-level write lock.
// The lock covers the shipment row; requests only change through the aggregate.
func (r *GormShipmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*shipments.Shipment, error) {
	var shipment shipments.Shipment
	if err := forUpdate(r.conn(ctx)).
		Preload("Requests", func(db *gorm.DB) *gorm.DB {
			return db.Order("shipment_requests.created_at ASC")
		}).
		Preload("Requests.Product").
		First(&shipment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

// FindAll returns shipments newest first, without their requests
func (r *GormShipmentRepository) FindAll(ctx context.Context) ([]shipments.Shipment, error) {
	var result []shipments.Shipment
	if err := r.conn(ctx).Order("created_at DESC").Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// ExistsByName checks whether a shipment with the given name exists
func (r *GormShipmentRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.conn(ctx).Model(&shipments.Shipment{}).
		Where("name = ?", name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindRequestByID loads a single request together with its parent shipment
func (r *GormShipmentRepository) FindRequestByID(ctx context.Context, requestID uuid.UUID) (*shipments.ShipmentRequest, *shipments.Shipment, error) {
	var request shipments.ShipmentRequest
	if err := r.conn(ctx).
		Preload("Product").
		First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, shared.ErrNotFound
		}
		return nil, nil, err
	}

	shipment, err := r.FindByID(ctx, request.ShipmentID)
	if err != nil {
		return nil, nil, err
	}
	return &request, shipment, nil
}

// Create inserts a new shipment together with its requests
func (r *GormShipmentRepository) Create(ctx context.Context, shipment *shipments.Shipment) error {
	return r.conn(ctx).Create(shipment).Error
}

// Save persists the shipment and replaces its request set, deleting requests
// that were removed from the aggregate.
func (r *GormShipmentRepository) Save(ctx context.Context, shipment *shipments.Shipment) error {
	db := r.conn(ctx)

	if err := db.Omit("Requests").Save(shipment).Error; err != nil {
		return err
	}

	keep := make([]uuid.UUID, 0, len(shipment.Requests))
	for i := range shipment.Requests {
		keep = append(keep, shipment.Requests[i].ID)
	}
	prune := db.Where("shipment_id = ?", shipment.ID)
	if len(keep) > 0 {
		prune = prune.Where("id NOT IN ?", keep)
	}
	if err := prune.Delete(&shipments.ShipmentRequest{}).Error; err != nil {
		return err
	}

	for i := range shipment.Requests {
		if err := db.Omit("Product").Save(&shipment.Requests[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a shipment and its requests
func (r *GormShipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.conn(ctx)
	if err := db.Where("shipment_id = ?", id).Delete(&shipments.ShipmentRequest{}).Error; err != nil {
		return err
	}
	result := db.Delete(&shipments.Shipment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
