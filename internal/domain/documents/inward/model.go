// Package inward provides inward entries: goods received into a warehouse,
// either against POs or directly.
package inward

import (
	"context"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/entity"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain/documents"
)

// Kind says whether lines are booked against POs.
type Kind string

const (
	KindWarehouse Kind = "warehouse"
	KindDirect    Kind = "direct"
)

// Valid reports whether k is a known inward kind.
func (k Kind) Valid() bool {
	return k == KindWarehouse || k == KindDirect
}

// Line is an inward line. POID is set for warehouse entries only.
type Line struct {
	documents.Line
	POID *id.ID `db:"po_id" json:"po_id,omitempty"`
}

// Entry is an inward entry header with its lines.
type Entry struct {
	entity.Document

	Kind           Kind        `db:"kind" json:"kind"`
	WarehouseID    id.ID       `db:"warehouse_id" json:"warehouse_id"`
	SupplierID     *id.ID      `db:"supplier_id" json:"supplier_id,omitempty"`
	SourcePickupID *id.ID      `db:"source_pickup_id" json:"source_pickup_id,omitempty"`
	TotalAmount    types.Money `db:"total_amount" json:"total_amount"`

	Lines []Line `db:"-" json:"lines"`
}

// NewEntry creates an inward entry dated today.
func NewEntry(kind Kind, warehouseID id.ID) *Entry {
	return &Entry{
		Document:    entity.NewDocument(),
		Kind:        kind,
		WarehouseID: warehouseID,
	}
}

// POIDs returns the distinct PO ids of the lines.
func (e *Entry) POIDs() []id.ID {
	seen := make(map[id.ID]struct{})
	var out []id.ID
	for _, l := range e.Lines {
		if l.POID == nil {
			continue
		}
		if _, ok := seen[*l.POID]; ok {
			continue
		}
		seen[*l.POID] = struct{}{}
		out = append(out, *l.POID)
	}
	return out
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

// Validate checks the header and that lines reference a PO exactly when the
// kind is warehouse.
func (e *Entry) Validate(ctx context.Context) error {
	if err := e.Document.Validate(ctx); err != nil {
		return err
	}
	if !e.Kind.Valid() {
		return apperror.NewValidation("invalid inward kind").
			WithDetail("field", "kind").
			WithDetail("value", string(e.Kind))
	}
	if id.IsNil(e.WarehouseID) {
		return apperror.NewValidation("warehouse is required").WithDetail("field", "warehouse_id")
	}
	if err := documents.ValidateLines(e.baseLines()); err != nil {
		return err
	}
	for i, l := range e.Lines {
		switch {
		case e.Kind == KindWarehouse && (l.POID == nil || id.IsNil(*l.POID)):
			return apperror.NewValidation("purchase order is required on warehouse inward lines").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		case e.Kind == KindDirect && l.POID != nil:
			return apperror.NewValidation("direct inward lines cannot reference a purchase order").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}
