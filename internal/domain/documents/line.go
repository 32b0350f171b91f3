// Package documents holds the pieces shared by all trade documents:
// priced line items and voucher numbering.
package documents

import (
	"context"
	"fmt"
	"time"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/numerator"
	"tradedesk/internal/core/types"
)

// Line is a priced line item. Amount is always Quantity × Rate.
type Line struct {
	LineID     id.ID          `db:"line_id" json:"line_id"`
	DocumentID id.ID          `db:"document_id" json:"-"`
	LineNo     int            `db:"line_no" json:"line_no"`
	ProductID  id.ID          `db:"product_id" json:"product_id"`
	SKU        string         `db:"sku" json:"sku"`
	Quantity   types.Quantity `db:"quantity" json:"quantity"`
	Rate       types.Money    `db:"rate" json:"rate"`
	Amount     types.Money    `db:"amount" json:"amount"`
}

// Recompute sets Amount from Quantity and Rate.
func (l *Line) Recompute() {
	l.Amount = types.LineAmount(l.Quantity, l.Rate)
}

// PrepareLines numbers the lines, assigns missing ids and recomputes amounts.
func PrepareLines(docID id.ID, lines []Line) {
	for i := range lines {
		lines[i].DocumentID = docID
		lines[i].LineNo = i + 1
		if id.IsNil(lines[i].LineID) {
			lines[i].LineID = id.New()
		}
		lines[i].Recompute()
	}
}

// TotalAmount sums line amounts.
func TotalAmount(lines []Line) types.Money {
	total := types.Zero()
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}

// TotalQuantity sums line quantities.
func TotalQuantity(lines []Line) types.Quantity {
	var total types.Quantity
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}

// ValidateLines checks the fields every priced line needs.
func ValidateLines(lines []Line) error {
	if len(lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for i, l := range lines {
		if id.IsNil(l.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !l.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if l.Rate.IsNegative() {
			return apperror.NewValidation("rate must not be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

// ProductIDs returns the distinct product ids in line order.
func ProductIDs(lines []Line) []id.ID {
	seen := make(map[id.ID]struct{}, len(lines))
	out := make([]id.ID, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		out = append(out, l.ProductID)
	}
	return out
}

// Voucher prefixes.
const (
	PrefixPurchaseInvoice = "PI"
	PrefixPurchaseOrder   = "PO"
	PrefixPickup          = "PU"
	PrefixInward          = "IN"
	PrefixOutward         = "OUT"
	PrefixExpense         = "EXP"
)

// AssignNumber fills *number from the generator when the client sent none.
// Trade documents use the strict strategy so voucher numbers have no gaps.
func AssignNumber(ctx context.Context, gen numerator.Generator, prefix string, date time.Time, number *string) error {
	if *number != "" {
		return nil
	}
	n, err := gen.GetNextNumber(ctx, numerator.DefaultConfig(prefix), &numerator.Options{Strategy: numerator.StrategyStrict}, date)
	if err != nil {
		return fmt.Errorf("generate %s number: %w", prefix, err)
	}
	*number = n
	return nil
}
