package shipments

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/shared"
)

// ShipmentStatus represents the status of a restocking shipment
type ShipmentStatus string

const (
	StatusPlanning ShipmentStatus = "PLANNING"
	StatusOrdered  ShipmentStatus = "ORDERED"
	StatusReceived ShipmentStatus = "RECEIVED"
)

// IsValid checks if the status is a valid ShipmentStatus
func (s ShipmentStatus) IsValid() bool {
	switch s {
	case StatusPlanning, StatusOrdered, StatusReceived:
		return true
	}
	return false
}

// String returns the string representation of ShipmentStatus
func (s ShipmentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ShipmentStatus) CanTransitionTo(target ShipmentStatus) bool {
	switch s {
	case StatusPlanning:
		return target == StatusOrdered
	case StatusOrdered:
		return target == StatusReceived
	case StatusReceived:
		return false // Terminal state
	}
	return false
}

// ShipmentRequest is one product line within a shipment. A non-empty
// CustomerName marks it as a pre-order request; FulfillingOrderID links it to
// the sales order spawned when the shipment is marked ORDERED and, once set,
// is never cleared.
type ShipmentRequest struct {
	ID                uuid.UUID        `gorm:"type:uuid;primary_key"`
	ShipmentID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID        `gorm:"type:uuid;not null"`
	Quantity          int              `gorm:"not null"`
	CustomerName      string           `gorm:"type:varchar(300)"`
	FulfillingOrderID *uuid.UUID       `gorm:"type:uuid"`
	Product           *catalog.Product `gorm:"foreignKey:ProductID"`
	CreatedAt         time.Time        `gorm:"not null"`
	UpdatedAt         time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ShipmentRequest) TableName() string {
	return "shipment_requests"
}

// NewShipmentRequest creates a new shipment request
func NewShipmentRequest(shipmentID, productID uuid.UUID, quantity int, customerName string) (*ShipmentRequest, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	now := time.Now()
	return &ShipmentRequest{
		ID:           uuid.New(),
		ShipmentID:   shipmentID,
		ProductID:    productID,
		Quantity:     quantity,
		CustomerName: customerName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsPreOrder returns true when the request is earmarked for a named customer
func (r *ShipmentRequest) IsPreOrder() bool {
	return r.CustomerName != ""
}

// LinkOrder records the sales order spawned for this request. The linkage is
// append-only; relinking an already linked request is rejected.
func (r *ShipmentRequest) LinkOrder(orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if r.FulfillingOrderID != nil {
		return shared.NewDomainError("ALREADY_LINKED", "Request is already linked to an order")
	}
	r.FulfillingOrderID = &orderID
	r.UpdatedAt = time.Now()
	return nil
}

// Shipment represents a restocking shipment and its requests
type Shipment struct {
	shared.BaseEntity
	Name       string            `gorm:"type:varchar(200);not null;uniqueIndex"`
	Status     ShipmentStatus    `gorm:"type:varchar(20);not null;index"`
	OrderedAt  *time.Time        `gorm:""`
	ReceivedAt *time.Time        `gorm:""`
	Requests   []ShipmentRequest `gorm:"foreignKey:ShipmentID"`
}

// TableName returns the table name for GORM
func (Shipment) TableName() string {
	return "shipments"
}

// NewShipment creates a new shipment in PLANNING
func NewShipment(name string) (*Shipment, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Shipment name cannot be empty")
	}
	return &Shipment{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Status:     StatusPlanning,
		Requests:   make([]ShipmentRequest, 0),
	}, nil
}

// IsPlanning returns true while the shipment is still editable
func (s *Shipment) IsPlanning() bool {
	return s.Status == StatusPlanning
}

// AddRequest merges the given line into the shipment. Requests sharing
// (ProductID, CustomerName) collapse into one row with summed quantity.
// Only allowed while PLANNING.
func (s *Shipment) AddRequest(productID uuid.UUID, quantity int, customerName string) (*ShipmentRequest, error) {
	if !s.IsPlanning() {
		return nil, shared.ErrInvalidState
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	for i := range s.Requests {
		if s.Requests[i].ProductID == productID && s.Requests[i].CustomerName == customerName {
			s.Requests[i].Quantity += quantity
			s.Requests[i].UpdatedAt = time.Now()
			s.Touch()
			return &s.Requests[i], nil
		}
	}

	request, err := NewShipmentRequest(s.ID, productID, quantity, customerName)
	if err != nil {
		return nil, err
	}
	s.Requests = append(s.Requests, *request)
	s.Touch()
	return &s.Requests[len(s.Requests)-1], nil
}

// UpdateRequestQuantity changes a request's quantity. Only allowed while PLANNING.
func (s *Shipment) UpdateRequestQuantity(requestID uuid.UUID, quantity int) (*ShipmentRequest, error) {
	if !s.IsPlanning() {
		return nil, shared.ErrInvalidState
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	for i := range s.Requests {
		if s.Requests[i].ID == requestID {
			s.Requests[i].Quantity = quantity
			s.Requests[i].UpdatedAt = time.Now()
			s.Touch()
			return &s.Requests[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

// RemoveRequest deletes a request from the shipment. Only allowed while PLANNING.
func (s *Shipment) RemoveRequest(requestID uuid.UUID) error {
	if !s.IsPlanning() {
		return shared.ErrInvalidState
	}
	for i := range s.Requests {
		if s.Requests[i].ID == requestID {
			s.Requests = append(s.Requests[:i], s.Requests[i+1:]...)
			s.Touch()
			return nil
		}
	}
	return shared.ErrNotFound
}

// MarkOrdered moves PLANNING to ORDERED and stamps OrderedAt
func (s *Shipment) MarkOrdered() error {
	if !s.Status.CanTransitionTo(StatusOrdered) {
		return shared.ErrInvalidState
	}
	now := time.Now()
	s.Status = StatusOrdered
	s.OrderedAt = &now
	s.Touch()
	return nil
}

// MarkReceived moves ORDERED to RECEIVED and stamps ReceivedAt
func (s *Shipment) MarkReceived() error {
	if !s.Status.CanTransitionTo(StatusReceived) {
		return shared.ErrInvalidState
	}
	now := time.Now()
	s.Status = StatusReceived
	s.ReceivedAt = &now
	s.Touch()
	return nil
}

// CustomerGroups returns the pre-order requests grouped by customer name in
// first-seen order. Requests without a customer name are generic restock and
// are excluded.
func (s *Shipment) CustomerGroups() ([]string, map[string][]*ShipmentRequest) {
	names := make([]string, 0)
	groups := make(map[string][]*ShipmentRequest)
	for i := range s.Requests {
		request := &s.Requests[i]
		if !request.IsPreOrder() {
			continue
		}
		if _, seen := groups[request.CustomerName]; !seen {
			names = append(names, request.CustomerName)
		}
		groups[request.CustomerName] = append(groups[request.CustomerName], request)
	}
	return names, groups
}
