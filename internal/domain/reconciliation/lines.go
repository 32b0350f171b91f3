// Package reconciliation computes the derived quantities that tie purchase
// orders to pickups, inward entries and warehouse stock. Every function here
// is pure: callers load the sums inside a locked transaction and pass them in.
package reconciliation

import (
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
)

// POLine is the part of a purchase order line the statistics depend on.
type POLine struct {
	LineID    id.ID
	ProductID id.ID
	SKU       string
	Quantity  types.Quantity
}

// Totals are the sums collected for one purchase order.
type Totals struct {
	// PIByProduct sums PI line quantities of the PO's linked PIs.
	PIByProduct map[id.ID]types.Quantity
	// InwardedByProduct sums inward line quantities booked against the PO.
	InwardedByProduct map[id.ID]types.Quantity
	// InTransitByLine sums quantities of pickups not yet inwarded, per PO line.
	InTransitByLine map[id.ID]types.Quantity
}

// LineStats is the reconciliation view of one PO line.
type LineStats struct {
	POLineID           id.ID          `json:"po_line_id"`
	ProductID          id.ID          `json:"product_id"`
	SKU                string         `json:"sku"`
	PIQuantity         types.Quantity `json:"pi_quantity"`
	POQuantity         types.Quantity `json:"po_quantity"`
	AlreadyInwarded    types.Quantity `json:"already_inwarded"`
	InTransit          types.Quantity `json:"in_transit"`
	AvailableForPickup types.Quantity `json:"available_for_pickup"`
	RemainingAllowed   types.Quantity `json:"remaining_allowed"`
}

// IsOverdrawn reports a line whose inwarded and in-transit quantities exceed
// the ordered quantity. That only happens after out-of-band edits.
func (s LineStats) IsOverdrawn() bool {
	return s.RemainingAllowed.IsNegative()
}

// ComputeLineStats derives per-line statistics in PO line order.
//
// Inward entries reference the PO and the product, not a line. When a PO has
// several lines for one product the inwarded total is spread over them in line
// order. Each line absorbs up to its ordered quantity net of its own in-transit
// quantity and the last one takes any excess, so the line values always add up
// to the product total and a line is never reported as open while the product
// as a whole is fully committed.
func ComputeLineStats(lines []POLine, totals Totals) []LineStats {
	inwardLeft := make(map[id.ID]types.Quantity, len(totals.InwardedByProduct))
	for k, v := range totals.InwardedByProduct {
		inwardLeft[k] = v
	}

	lastLineOf := make(map[id.ID]int, len(lines))
	for i, l := range lines {
		lastLineOf[l.ProductID] = i
	}

	out := make([]LineStats, len(lines))
	for i, l := range lines {
		inTransit := totals.InTransitByLine[l.LineID]

		inwarded := inwardLeft[l.ProductID]
		if capacity := max(l.Quantity-inTransit, 0); i != lastLineOf[l.ProductID] && inwarded > capacity {
			inwarded = capacity
		}
		inwardLeft[l.ProductID] -= inwarded

		remaining := l.Quantity - inwarded - inTransit

		out[i] = LineStats{
			POLineID:           l.LineID,
			ProductID:          l.ProductID,
			SKU:                l.SKU,
			PIQuantity:         totals.PIByProduct[l.ProductID],
			POQuantity:         l.Quantity,
			AlreadyInwarded:    inwarded,
			InTransit:          inTransit,
			AvailableForPickup: remaining,
			RemainingAllowed:   remaining,
		}
	}
	return out
}

// RemainingByProduct sums remaining_allowed over lines of the same product.
func RemainingByProduct(stats []LineStats) map[id.ID]types.Quantity {
	out := make(map[id.ID]types.Quantity, len(stats))
	for _, s := range stats {
		out[s.ProductID] += s.RemainingAllowed
	}
	return out
}
