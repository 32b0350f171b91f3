// Package pickup provides pickup entries: goods collected from a supplier
// against a PO and in transit until they are inwarded.
package pickup

import (
	"context"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/entity"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
)

// Line is a pickup line. Product and SKU are copied from the PO line.
type Line struct {
	LineID     id.ID          `db:"line_id" json:"line_id"`
	DocumentID id.ID          `db:"document_id" json:"-"`
	LineNo     int            `db:"line_no" json:"line_no"`
	POLineID   id.ID          `db:"po_line_id" json:"po_line_id"`
	ProductID  id.ID          `db:"product_id" json:"product_id"`
	SKU        string         `db:"sku" json:"sku"`
	Quantity   types.Quantity `db:"quantity" json:"quantity"`
}

// Pickup is a pickup header with its lines.
type Pickup struct {
	entity.Document

	POID        id.ID  `db:"po_id" json:"po_id"`
	WarehouseID id.ID  `db:"warehouse_id" json:"warehouse_id"`
	IsInwarded  bool   `db:"is_inwarded" json:"is_inwarded"`
	InwardID    *id.ID `db:"inward_id" json:"inward_id,omitempty"`

	Lines []Line `db:"-" json:"lines"`
}

// NewPickup creates a pickup against a PO, dated today.
func NewPickup(poID, warehouseID id.ID) *Pickup {
	return &Pickup{
		Document:    entity.NewDocument(),
		POID:        poID,
		WarehouseID: warehouseID,
	}
}

// CanModify rejects changes to a pickup that has been inwarded.
func (p *Pickup) CanModify() error {
	if p.IsInwarded {
		return apperror.NewBusinessRule(apperror.CodePickupInwarded, "pickup has already been inwarded").
			WithDetail("pickup_id", p.ID.String())
	}
	return nil
}

func (p *Pickup) prepareLines() {
	for i := range p.Lines {
		p.Lines[i].DocumentID = p.ID
		p.Lines[i].LineNo = i + 1
		if id.IsNil(p.Lines[i].LineID) {
			p.Lines[i].LineID = id.New()
		}
	}
}

// Validate checks the header and that every line names a PO line and a
// positive quantity.
func (p *Pickup) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(p.POID) {
		return apperror.NewValidation("purchase order is required").WithDetail("field", "po_id")
	}
	if id.IsNil(p.WarehouseID) {
		return apperror.NewValidation("warehouse is required").WithDetail("field", "warehouse_id")
	}
	if len(p.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").WithDetail("field", "lines")
	}
	for i, l := range p.Lines {
		if id.IsNil(l.POLineID) {
			return apperror.NewValidation("purchase order line is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}
