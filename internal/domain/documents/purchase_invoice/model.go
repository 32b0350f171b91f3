// Package purchase_invoice provides the proforma/purchase invoice (PI), the
// buyer-facing document that purchase orders and export invoices refer to.
package purchase_invoice

import (
	"context"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/entity"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain/documents"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known PI status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// PurchaseInvoice is a PI header with its line items.
type PurchaseInvoice struct {
	entity.Document

	BuyerID     id.ID       `db:"buyer_id" json:"buyer_id"`
	ConsigneeID *id.ID      `db:"consignee_id" json:"consignee_id,omitempty"`
	Status      Status      `db:"status" json:"status"`
	Currency    string      `db:"currency" json:"currency"`
	TotalAmount types.Money `db:"total_amount" json:"total_amount"`

	Lines []documents.Line `db:"-" json:"lines"`
}

// NewPurchaseInvoice creates a draft PI for a buyer.
func NewPurchaseInvoice(buyerID id.ID) *PurchaseInvoice {
	return &PurchaseInvoice{
		Document: entity.NewDocument(),
		BuyerID:  buyerID,
		Status:   StatusDraft,
		Currency: "USD",
	}
}

// Recalculate recomputes line amounts and the total.
func (p *PurchaseInvoice) Recalculate() {
	documents.PrepareLines(p.ID, p.Lines)
	p.TotalAmount = documents.TotalAmount(p.Lines)
}

// QuantityByProduct sums line quantities per product.
func (p *PurchaseInvoice) QuantityByProduct() map[id.ID]types.Quantity {
	out := make(map[id.ID]types.Quantity, len(p.Lines))
	for _, l := range p.Lines {
		out[l.ProductID] += l.Quantity
	}
	return out
}

// Validate implements entity.Validatable.
func (p *PurchaseInvoice) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(p.BuyerID) {
		return apperror.NewValidation("buyer is required").WithDetail("field", "buyer_id")
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if !p.Status.Valid() {
		return apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("value", string(p.Status))
	}
	return documents.ValidateLines(p.Lines)
}
