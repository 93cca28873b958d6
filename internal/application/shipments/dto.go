package shipments

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shipments"
)

// CreateShipmentRequest carries the input for creating a shipment. The name
// is optional; when empty one is generated from the current date.
type CreateShipmentRequest struct {
	Name string `json:"name" binding:"omitempty,max=200"`
}

// AddRequestRequest carries one product line to add to a shipment. An empty
// customer name marks a generic restock line.
type AddRequestRequest struct {
	ProductID    uuid.UUID `json:"product_id" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required,gt=0"`
	CustomerName string    `json:"customer_name" binding:"omitempty,max=300"`
}

// BatchAddRequest carries multiple product lines to add in one call
type BatchAddRequest struct {
	Requests []AddRequestRequest `json:"requests" binding:"required,min=1,dive"`
}

// UpdateQuantityRequest carries a new quantity for a shipment request
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// UpdateStatusRequest carries a target shipment status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ShipmentRequestResponse is the API representation of one shipment request
type ShipmentRequestResponse struct {
	ID                uuid.UUID  `json:"id"`
	ProductID         uuid.UUID  `json:"product_id"`
	ProductName       string     `json:"product_name,omitempty"`
	SKU               string     `json:"sku,omitempty"`
	Quantity          int        `json:"quantity"`
	CustomerName      string     `json:"customer_name,omitempty"`
	FulfillingOrderID *uuid.UUID `json:"fulfilling_order_id,omitempty"`
}

// ShipmentResponse is the API representation of a shipment
type ShipmentResponse struct {
	ID         uuid.UUID                 `json:"id"`
	Name       string                    `json:"name"`
	Status     string                    `json:"status"`
	OrderedAt  *time.Time                `json:"ordered_at,omitempty"`
	ReceivedAt *time.Time                `json:"received_at,omitempty"`
	Requests   []ShipmentRequestResponse `json:"requests"`
	CreatedAt  time.Time                 `json:"created_at"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

// ToShipmentResponse converts a domain shipment to its API representation
func ToShipmentResponse(shipment *shipments.Shipment) ShipmentResponse {
	requests := make([]ShipmentRequestResponse, 0, len(shipment.Requests))
	for i := range shipment.Requests {
		request := &shipment.Requests[i]
		row := ShipmentRequestResponse{
			ID:                request.ID,
			ProductID:         request.ProductID,
			Quantity:          request.Quantity,
			CustomerName:      request.CustomerName,
			FulfillingOrderID: request.FulfillingOrderID,
		}
		if request.Product != nil {
			row.ProductName = request.Product.Name
			row.SKU = request.Product.SKU
		}
		requests = append(requests, row)
	}
	return ShipmentResponse{
		ID:         shipment.ID,
		Name:       shipment.Name,
		Status:     string(shipment.Status),
		OrderedAt:  shipment.OrderedAt,
		ReceivedAt: shipment.ReceivedAt,
		Requests:   requests,
		CreatedAt:  shipment.CreatedAt,
		UpdatedAt:  shipment.UpdatedAt,
	}
}

// ToShipmentResponses converts a slice of domain shipments
func ToShipmentResponses(list []shipments.Shipment) []ShipmentResponse {
	responses := make([]ShipmentResponse, 0, len(list))
	for i := range list {
		responses = append(responses, ToShipmentResponse(&list[i]))
	}
	return responses
}
