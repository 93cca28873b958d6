package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
)

const (
	// SKULengthMin and SKULengthMax bound the normalized SKU length
	SKULengthMin = 5
	SKULengthMax = 7
)

// Product represents a catalog product and its quantity on hand.
// QuantityInStock is the stock ledger: it is mutated only through
// Reserve and Release so it can never go negative.
type Product struct {
	shared.BaseEntity
	SKU             string          `gorm:"type:varchar(7);not null;uniqueIndex"`
	Name            string          `gorm:"type:varchar(200);not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QuantityInStock int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NormalizeSKU uppercases the SKU and validates it as 5-7 alphanumeric characters.
func NormalizeSKU(sku string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(sku))
	if len(normalized) < SKULengthMin || len(normalized) > SKULengthMax {
		return "", shared.NewDomainError("INVALID_SKU", "SKU must be 5-7 characters")
	}
	for _, r := range normalized {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", shared.NewDomainError("INVALID_SKU", "SKU must contain only letters and digits")
		}
	}
	return normalized, nil
}

// NewProduct creates a new product with a normalized SKU
func NewProduct(sku, name string, unitPrice decimal.Decimal, initialStock int) (*Product, error) {
	normalized, err := NormalizeSKU(sku)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if initialStock < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Initial stock cannot be negative")
	}

	return &Product{
		BaseEntity:      shared.NewBaseEntity(),
		SKU:             normalized,
		Name:            name,
		UnitPrice:       unitPrice,
		QuantityInStock: initialStock,
	}, nil
}

// CanFulfill returns true if the quantity on hand covers the requested quantity
func (p *Product) CanFulfill(quantity int) bool {
	return quantity > 0 && p.QuantityInStock >= quantity
}

// Reserve decrements the quantity on hand, committing it to an order.
// Fails with INSUFFICIENT_STOCK when the quantity on hand does not cover
// the request; the caller's transaction must roll back in that case.
func (p *Product) Reserve(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Reserve quantity must be positive")
	}
	if p.QuantityInStock < quantity {
		return shared.ErrInsufficientStock
	}
	p.QuantityInStock -= quantity
	p.Touch()
	return nil
}

// Release increments the quantity on hand, returning stock to the available pool.
func (p *Product) Release(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}
	p.QuantityInStock += quantity
	p.Touch()
	return nil
}

// Rename updates the display name
func (p *Product) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	p.Name = name
	p.Touch()
	return nil
}

// SetUnitPrice updates the unit price
func (p *Product) SetUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	p.UnitPrice = price
	p.Touch()
	return nil
}

// IsLowStock returns true if the product is in stock but at or below the threshold
func (p *Product) IsLowStock(threshold int) bool {
	return p.QuantityInStock > 0 && p.QuantityInStock <= threshold
}
