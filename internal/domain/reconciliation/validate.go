package reconciliation

import (
	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
)

// Requested is one submitted line. Key is a PO line id for pickups and a
// product id for inward entries.
type Requested struct {
	Key      id.ID
	SKU      string
	Quantity types.Quantity
}

// ValidatePickup checks pickup lines against the remaining quantity of the PO
// lines they reference and against the remaining quantity of each product
// over all its lines. Lines with the same PO line are summed first. The first
// violation in submission order is returned; nothing is partially accepted.
func ValidatePickup(stats []LineStats, requested []Requested) error {
	remaining := make(map[id.ID]LineStats, len(stats))
	for _, s := range stats {
		remaining[s.POLineID] = s
	}

	if err := checkPositive(requested); err != nil {
		return err
	}

	sums, order := sumByKey(requested)
	byProduct := make(map[id.ID]types.Quantity, len(order))
	var products []id.ID
	for _, key := range order {
		line, ok := remaining[key]
		if !ok {
			return apperror.NewValidation("pickup line references a line that is not on the purchase order").
				WithDetail("po_line_id", key.String())
		}
		if sums[key] > line.RemainingAllowed {
			return apperror.NewQuantityExceedsRemaining(line.SKU, line.RemainingAllowed.Display(), sums[key].Display())
		}
		if _, seen := byProduct[line.ProductID]; !seen {
			products = append(products, line.ProductID)
		}
		byProduct[line.ProductID] += sums[key]
	}

	productRemaining := RemainingByProduct(stats)
	skus := make(map[id.ID]string, len(stats))
	for _, s := range stats {
		skus[s.ProductID] = s.SKU
	}
	for _, p := range products {
		if byProduct[p] > productRemaining[p] {
			return apperror.NewQuantityExceedsRemaining(skus[p], productRemaining[p].Display(), byProduct[p].Display())
		}
	}
	return nil
}

// ValidateInward checks inward lines booked against one PO. Requested keys
// are product ids; lines of the same product are summed first.
func ValidateInward(stats []LineStats, requested []Requested) error {
	byProduct := RemainingByProduct(stats)
	skus := make(map[id.ID]string, len(stats))
	for _, s := range stats {
		skus[s.ProductID] = s.SKU
	}

	if err := checkPositive(requested); err != nil {
		return err
	}

	sums, order := sumByKey(requested)
	for _, key := range order {
		remaining, onPO := byProduct[key]
		sku := skus[key]
		if !onPO {
			sku = skuOf(requested, key)
		}
		if sums[key] > remaining {
			return apperror.NewQuantityExceedsRemaining(sku, remaining.Display(), sums[key].Display())
		}
	}
	return nil
}

func checkPositive(requested []Requested) error {
	for i, r := range requested {
		if !r.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("sku", r.SKU).
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

func sumByKey(requested []Requested) (map[id.ID]types.Quantity, []id.ID) {
	sums := make(map[id.ID]types.Quantity, len(requested))
	var order []id.ID
	for _, r := range requested {
		if _, seen := sums[r.Key]; !seen {
			order = append(order, r.Key)
		}
		sums[r.Key] += r.Quantity
	}
	return sums, order
}

func skuOf(requested []Requested, key id.ID) string {
	for _, r := range requested {
		if r.Key == key && r.SKU != "" {
			return r.SKU
		}
	}
	return key.String()
}
