package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/orders"
)

// OrderLineRequest is one product line in an order creation request
type OrderLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest carries the input for creating an order
type CreateOrderRequest struct {
	CustomerName string             `json:"customer_name" binding:"required,max=300"`
	Source       string             `json:"source" binding:"required,oneof=LOCAL AMAZON PRE_ORDER"`
	Items        []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
}

// OrderLineResponse is one line item in an order response
type OrderLineResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	SKU         string    `json:"sku,omitempty"`
	Quantity    int       `json:"quantity"`
}

// OrderResponse is the API representation of an order
type OrderResponse struct {
	ID           uuid.UUID           `json:"id"`
	CustomerName string              `json:"customer_name"`
	Source       string              `json:"source"`
	Status       string              `json:"status"`
	Items        []OrderLineResponse `json:"items"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// ToOrderResponse converts a domain order to its API representation
func ToOrderResponse(order *orders.Order) OrderResponse {
	items := make([]OrderLineResponse, 0, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		line := OrderLineResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
			line.SKU = item.Product.SKU
		}
		items = append(items, line)
	}
	return OrderResponse{
		ID:           order.ID,
		CustomerName: order.CustomerName,
		Source:       string(order.Source),
		Status:       string(order.Status),
		Items:        items,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of domain orders
func ToOrderResponses(list []orders.Order) []OrderResponse {
	responses := make([]OrderResponse, 0, len(list))
	for i := range list {
		responses = append(responses, ToOrderResponse(&list[i]))
	}
	return responses
}

// PurgeResult reports the outcome of a cancelled order purge run
type PurgeResult struct {
	Purged int64     `json:"purged"`
	Cutoff time.Time `json:"cutoff"`
}
