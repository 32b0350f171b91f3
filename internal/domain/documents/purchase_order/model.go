// Package purchase_order provides the supplier-facing purchase order (PO).
// A PO line is the unit that pickups and inward entries are reconciled against.
package purchase_order

import (
	"context"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/entity"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain/documents"
	"tradedesk/internal/domain/reconciliation"
)

// PurchaseOrder is a PO header with its lines and linked PIs.
type PurchaseOrder struct {
	entity.Document

	SupplierID  id.ID       `db:"supplier_id" json:"supplier_id"`
	Currency    string      `db:"currency" json:"currency"`
	TotalAmount types.Money `db:"total_amount" json:"total_amount"`

	PIIDs []id.ID          `db:"-" json:"pi_ids"`
	Lines []documents.Line `db:"-" json:"lines"`
}

// NewPurchaseOrder creates a USD PO for a supplier.
func NewPurchaseOrder(supplierID id.ID) *PurchaseOrder {
	return &PurchaseOrder{
		Document:   entity.NewDocument(),
		SupplierID: supplierID,
		Currency:   "USD",
	}
}

// Recalculate numbers the lines and recomputes amounts and the total.
func (p *PurchaseOrder) Recalculate() {
	documents.PrepareLines(p.ID, p.Lines)
	p.TotalAmount = documents.TotalAmount(p.Lines)
}

// Line returns the line with lineID.
func (p *PurchaseOrder) Line(lineID id.ID) (documents.Line, bool) {
	for _, l := range p.Lines {
		if l.LineID == lineID {
			return l, true
		}
	}
	return documents.Line{}, false
}

// ReconciliationLines converts the lines for reconciliation.
func (p *PurchaseOrder) ReconciliationLines() []reconciliation.POLine {
	out := make([]reconciliation.POLine, len(p.Lines))
	for i, l := range p.Lines {
		out[i] = reconciliation.POLine{
			LineID:    l.LineID,
			ProductID: l.ProductID,
			SKU:       l.SKU,
			Quantity:  l.Quantity,
		}
	}
	return out
}

// Validate implements entity.Validatable.
func (p *PurchaseOrder) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(p.SupplierID) {
		return apperror.NewValidation("supplier is required").WithDetail("field", "supplier_id")
	}
	return documents.ValidateLines(p.Lines)
}
