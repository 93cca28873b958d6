package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/orders"
	"github.com/stockflow/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormOrderRepository implements orders.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) conn(ctx context.Context) *gorm.DB {
	return Conn(ctx, r.db)
}

// FindByID finds an order with its line items and their products
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*orders.Order, error) {
	var order orders.Order
	if err := r.conn(ctx).
		Preload("Items.Product").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate finds an order with its line items under a row-level write lock.
// The lock covers the order row only; line items are immutable after creation.
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*orders.Order, error) {
	var order orders.Order
	if err := forUpdate(r.conn(ctx)).
		Preload("Items.Product").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll returns orders newest first, optionally filtered by status
func (r *GormOrderRepository) FindAll(ctx context.Context, status *orders.OrderStatus) ([]orders.Order, error) {
	var result []orders.Order
	query := r.conn(ctx).Preload("Items.Product").Order("created_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if err := query.Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// ExistsByCustomerName checks whether any order carries the given customer name
func (r *GormOrderRepository) ExistsByCustomerName(ctx context.Context, customerName string) (bool, error) {
	var count int64
	if err := r.conn(ctx).Model(&orders.Order{}).
		Where("customer_name = ?", customerName).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new order together with its line items
func (r *GormOrderRepository) Create(ctx context.Context, order *orders.Order) error {
	return r.conn(ctx).Create(order).Error
}

// Save updates an existing order. Line items are fixed at creation, so only
// the order row itself is written.
func (r *GormOrderRepository) Save(ctx context.Context, order *orders.Order) error {
	return r.conn(ctx).Omit("Items").Save(order).Error
}

// DeleteCancelledBefore purges CANCELLED orders last touched before the cutoff,
// line items first to keep referential integrity without relying on cascades.
func (r *GormOrderRepository) DeleteCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	db := r.conn(ctx)

	var ids []uuid.UUID
	if err := db.Model(&orders.Order{}).
		Where("status = ? AND updated_at < ?", orders.StatusCancelled, cutoff).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := db.Where("order_id IN ?", ids).Delete(&orders.OrderLineItem{}).Error; err != nil {
		return 0, err
	}
	result := db.Where("id IN ?", ids).Delete(&orders.Order{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
