package shipments

import (
	"sort"

	"github.com/shopspring/decimal"
)

// InvoiceLine is one aggregated product row on a shipment invoice
type InvoiceLine struct {
	SKU           string          `json:"sku"`
	ProductName   string          `json:"product_name"`
	TotalQuantity int             `json:"total_quantity"`
	Amount        decimal.Decimal `json:"amount"`
}

// Invoice is the aggregated order sheet for a shipment, grouped by SKU.
// The spreadsheet export collaborator consumes this structure as-is.
type Invoice struct {
	ShipmentName string          `json:"shipment_name"`
	Lines        []InvoiceLine   `json:"lines"`
	TotalItems   int             `json:"total_items"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// BuildInvoice groups the shipment's requests by product SKU, summing
// quantities and amounts, sorted by SKU. Requests must be loaded with their
// product info. Pure computation; no state is mutated.
func BuildInvoice(shipment *Shipment) Invoice {
	bySKU := make(map[string]*InvoiceLine)
	for i := range shipment.Requests {
		request := &shipment.Requests[i]
		if request.Product == nil {
			continue
		}
		line, ok := bySKU[request.Product.SKU]
		if !ok {
			line = &InvoiceLine{
				SKU:         request.Product.SKU,
				ProductName: request.Product.Name,
				Amount:      decimal.Zero,
			}
			bySKU[request.Product.SKU] = line
		}
		line.TotalQuantity += request.Quantity
		line.Amount = line.Amount.Add(request.Product.UnitPrice.Mul(decimal.NewFromInt(int64(request.Quantity))))
	}

	invoice := Invoice{
		ShipmentName: shipment.Name,
		Lines:        make([]InvoiceLine, 0, len(bySKU)),
		TotalAmount:  decimal.Zero,
	}
	for _, line := range bySKU {
		invoice.Lines = append(invoice.Lines, *line)
		invoice.TotalItems += line.TotalQuantity
		invoice.TotalAmount = invoice.TotalAmount.Add(line.Amount)
	}
	sort.Slice(invoice.Lines, func(i, j int) bool {
		return invoice.Lines[i].SKU < invoice.Lines[j].SKU
	})
	return invoice
}
