package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/catalog"
)

// CreateProductRequest carries the input for creating a product
type CreateProductRequest struct {
	SKU          string          `json:"sku" binding:"required"`
	Name         string          `json:"name" binding:"required,max=200"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	InitialStock int             `json:"initial_stock" binding:"gte=0"`
}

// UpdateProductRequest carries the mutable product fields
type UpdateProductRequest struct {
	Name      *string          `json:"name" binding:"omitempty,max=200"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// ProductResponse is the API representation of a product
type ProductResponse struct {
	ID              uuid.UUID       `json:"id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	QuantityInStock int             `json:"quantity_in_stock"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain product to its API representation
func ToProductResponse(product *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:              product.ID,
		SKU:             product.SKU,
		Name:            product.Name,
		UnitPrice:       product.UnitPrice,
		QuantityInStock: product.QuantityInStock,
		CreatedAt:       product.CreatedAt,
		UpdatedAt:       product.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain products
func ToProductResponses(list []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, 0, len(list))
	for i := range list {
		responses = append(responses, ToProductResponse(&list[i]))
	}
	return responses
}
