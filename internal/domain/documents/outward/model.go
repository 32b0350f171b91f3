// Package outward provides outward entries: dispatch plans, export invoices
// and direct exports leaving a warehouse.
package outward

import (
	"context"

	"github.com/shopspring/decimal"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/entity"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain/documents"
	"tradedesk/internal/domain/reconciliation"
)

type Kind string

const (
	KindDispatchPlan  Kind = "dispatch_plan"
	KindExportInvoice Kind = "export_invoice"
	KindDirectExport  Kind = "direct_export"
)

// Valid reports whether k is a known outward kind.
func (k Kind) Valid() bool {
	switch k {
	case KindDispatchPlan, KindExportInvoice, KindDirectExport:
		return true
	}
	return false
}

// Gated reports whether lines are checked against available stock.
func (k Kind) Gated() bool {
	return k == KindExportInvoice
}

// Line is an outward line with packing details.
type Line struct {
	documents.Line
	Dimensions  string          `db:"dimensions" json:"dimensions,omitempty"`
	NetWeight   decimal.Decimal `db:"net_weight" json:"net_weight"`
	GrossWeight decimal.Decimal `db:"gross_weight" json:"gross_weight"`
}

// Entry is an outward header with its lines.
type Entry struct {
	entity.Document

	Kind        Kind        `db:"kind" json:"kind"`
	WarehouseID *id.ID      `db:"warehouse_id" json:"warehouse_id,omitempty"`
	PIID        *id.ID      `db:"pi_id" json:"pi_id,omitempty"`
	BuyerID     *id.ID      `db:"buyer_id" json:"buyer_id,omitempty"`
	TotalAmount types.Money `db:"total_amount" json:"total_amount"`

	Lines []Line `db:"-" json:"lines"`
}

// NewEntry creates an outward entry dated today.
func NewEntry(kind Kind) *Entry {
	return &Entry{Document: entity.NewDocument(), Kind: kind}
}

// CountsAgainstStock reports whether the lines reduce warehouse stock.
// Dispatch plans are forward-looking and never do.
func (e *Entry) CountsAgainstStock() bool {
	switch e.Kind {
	case KindExportInvoice:
		return true
	case KindDirectExport:
		return e.WarehouseID != nil
	}
	return false
}

func (e *Entry) baseLines() []documents.Line {
	out := make([]documents.Line, len(e.Lines))
	for i, l := range e.Lines {
		out[i] = l.Line
	}
	return out
}

// ProductIDs returns the distinct product ids of the lines.
func (e *Entry) ProductIDs() []id.ID {
	return documents.ProductIDs(e.baseLines())
}

// ExportLines converts the lines for a stock check.
func (e *Entry) ExportLines() []reconciliation.ExportLine {
	out := make([]reconciliation.ExportLine, len(e.Lines))
	for i, l := range e.Lines {
		sku := l.SKU
		if sku == "" {
			sku = l.ProductID.String()
		}
		out[i] = reconciliation.ExportLine{ProductID: l.ProductID, SKU: sku, Quantity: l.Quantity}
	}
	return out
}

// Recalculate numbers the lines and recomputes amounts and the total.
func (e *Entry) Recalculate() {
	for i := range e.Lines {
		l := &e.Lines[i].Line
		l.DocumentID = e.ID
		l.LineNo = i + 1
		if id.IsNil(l.LineID) {
			l.LineID = id.New()
		}
		l.Recompute()
	}
	e.TotalAmount = documents.TotalAmount(e.baseLines())
}

// Validate applies the per-kind rules on PI, warehouse and weights.
func (e *Entry) Validate(ctx context.Context) error {
	if err := e.Document.Validate(ctx); err != nil {
		return err
	}
	if !e.Kind.Valid() {
		return apperror.NewValidation("invalid outward kind").
			WithDetail("field", "kind").
			WithDetail("value", string(e.Kind))
	}

	switch e.Kind {
	case KindExportInvoice:
		if e.PIID == nil || id.IsNil(*e.PIID) {
			return apperror.NewValidation("purchase invoice is required for an export invoice").WithDetail("field", "pi_id")
		}
		if e.WarehouseID == nil || id.IsNil(*e.WarehouseID) {
			return apperror.NewValidation("warehouse is required for an export invoice").WithDetail("field", "warehouse_id")
		}
	case KindDirectExport:
		if e.PIID != nil {
			return apperror.NewValidation("a direct export cannot reference a purchase invoice").WithDetail("field", "pi_id")
		}
	}

	if err := documents.ValidateLines(e.baseLines()); err != nil {
		return err
	}
	for i, l := range e.Lines {
		if l.NetWeight.IsNegative() || l.GrossWeight.IsNegative() {
			return apperror.NewValidation("weights must not be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !l.GrossWeight.IsZero() && l.GrossWeight.LessThan(l.NetWeight) {
			return apperror.NewValidation("gross weight is below net weight").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}
