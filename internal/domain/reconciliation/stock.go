package reconciliation

import (
	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
)

// StockKey identifies a product in a warehouse.
type StockKey struct {
	WarehouseID id.ID
	ProductID   id.ID
}

// LockKey is the advisory lock name guarding writes that move this stock.
func (k StockKey) LockKey() string {
	return "stock:" + k.WarehouseID.String() + ":" + k.ProductID.String()
}

// Available is inward minus outward. Negative results are returned as-is so
// callers can report them.
func Available(inward, outward types.Quantity) types.Quantity {
	return inward - outward
}

// ExportLine is one export invoice line to check against stock.
type ExportLine struct {
	ProductID id.ID
	SKU       string
	Quantity  types.Quantity
}

// CheckExport rejects the first product whose summed export quantity exceeds
// what is available. Exporting exactly the available quantity is allowed.
func CheckExport(available map[id.ID]types.Quantity, lines []ExportLine) error {
	sums := make(map[id.ID]types.Quantity, len(lines))
	var order []ExportLine
	for _, l := range lines {
		if !l.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").WithDetail("sku", l.SKU)
		}
		if _, seen := sums[l.ProductID]; !seen {
			order = append(order, l)
		}
		sums[l.ProductID] += l.Quantity
	}

	for _, l := range order {
		avail := available[l.ProductID]
		if required := sums[l.ProductID]; required > avail {
			return apperror.NewInsufficientStock(l.SKU, avail.Display(), required.Display())
		}
	}
	return nil
}
