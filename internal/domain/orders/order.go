package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/shared"
)

// OrderSource identifies where an order originated
type OrderSource string

const (
	SourceLocal    OrderSource = "LOCAL"
	SourceAmazon   OrderSource = "AMAZON"
	SourcePreOrder OrderSource = "PRE_ORDER"
)

// IsValid checks if the source is a known OrderSource
func (s OrderSource) IsValid() bool {
	switch s {
	case SourceLocal, SourceAmazon, SourcePreOrder:
		return true
	}
	return false
}

// OrderStatus represents the status of a sales order
type OrderStatus string

const (
	StatusAwaitingStock OrderStatus = "AWAITING_STOCK"
	StatusReadyToShip   OrderStatus = "READY_TO_SHIP"
	StatusOnHold        OrderStatus = "ON_HOLD"
	StatusCompleted     OrderStatus = "COMPLETED"
	StatusCancelled     OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusAwaitingStock, StatusReadyToShip, StatusOnHold, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states that admit no further transitions
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// HoldsReservation returns true if stock is currently reserved for an order
// in this status. Holding an order releases its reservation, so ON_HOLD does
// not count.
func (s OrderStatus) HoldsReservation() bool {
	return s == StatusReadyToShip
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case StatusAwaitingStock:
		return target == StatusReadyToShip || target == StatusCancelled
	case StatusReadyToShip:
		return target == StatusCompleted || target == StatusOnHold || target == StatusCancelled
	case StatusOnHold:
		return target == StatusReadyToShip || target == StatusCancelled
	case StatusCompleted, StatusCancelled:
		return false // Terminal states
	}
	return false
}

// OrderLineItem represents one product and quantity within an order.
// Line items are fixed at order creation; only the parent order's status
// and the stock reservations it implies change afterwards.
type OrderLineItem struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID        `gorm:"type:uuid;not null"`
	Quantity  int              `gorm:"not null"`
	Product   *catalog.Product `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time        `gorm:"not null"`
	UpdatedAt time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderLineItem) TableName() string {
	return "order_line_items"
}

// NewOrderLineItem creates a new order line item
func NewOrderLineItem(orderID, productID uuid.UUID, quantity int) (*OrderLineItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	now := time.Now()
	return &OrderLineItem{
		ID:        uuid.New(),
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Order represents a sales order and its line items.
// New orders start in AWAITING_STOCK; the stock reservation performed at
// creation time promotes them to READY_TO_SHIP through TransitionTo, the
// single transition function every caller goes through.
type Order struct {
	shared.BaseEntity
	CustomerName string          `gorm:"type:varchar(300);not null"`
	Source       OrderSource     `gorm:"type:varchar(20);not null"`
	Status       OrderStatus     `gorm:"type:varchar(20);not null;index"`
	Items        []OrderLineItem `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order in AWAITING_STOCK with the given line items
func NewOrder(customerName string, source OrderSource, lines []LineInput) (*Order, error) {
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Unknown order source")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_LINE_ITEMS", "Order must have at least one line item")
	}

	order := &Order{
		BaseEntity:   shared.NewBaseEntity(),
		CustomerName: customerName,
		Source:       source,
		Status:       StatusAwaitingStock,
		Items:        make([]OrderLineItem, 0, len(lines)),
	}

	for _, line := range lines {
		item, err := NewOrderLineItem(order.ID, line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, *item)
	}

	return order, nil
}

// LineInput carries a product reference and quantity for order creation
type LineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// TransitionTo moves the order to the target status, rejecting transitions
// the state machine does not allow. All status changes, including the
// shipment-driven promotion to READY_TO_SHIP, go through here.
func (o *Order) TransitionTo(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.ErrInvalidTransition
	}
	o.Status = target
	o.Touch()
	return nil
}
