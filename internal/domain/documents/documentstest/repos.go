// Package documentstest wires the PO, pickup and inward services over
// in-memory repositories that sum quantities the way the SQL does.
package documentstest

import (
	"context"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/numerator"
	"tradedesk/internal/core/tx"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain/audit"
	"tradedesk/internal/domain/documents"
	"tradedesk/internal/domain/documents/inward"
	"tradedesk/internal/domain/documents/pickup"
	"tradedesk/internal/domain/documents/purchase_order"
	"tradedesk/internal/domain/domaintest"
	"tradedesk/internal/domain/reconciliation"
)

type PickupRepo struct {
	*domaintest.DocStore[*pickup.Pickup]
	Lines map[id.ID][]pickup.Line
}

func (r *PickupRepo) GetLines(ctx context.Context, docID id.ID) ([]pickup.Line, error) {
	return domaintest.CloneLines(r.Lines[docID]), nil
}

func (r *PickupRepo) SaveLines(ctx context.Context, docID id.ID, lines []pickup.Line) error {
	r.Lines[docID] = domaintest.CloneLines(lines)
	return nil
}

func (r *PickupRepo) Delete(ctx context.Context, docID id.ID) error {
	delete(r.Lines, docID)
	return r.DocStore.Delete(ctx, docID)
}

func (r *PickupRepo) MarkInwarded(ctx context.Context, pickupID, inwardID id.ID) error {
	p, ok := r.Docs[pickupID]
	if !ok {
		return apperror.NewNotFound("pickup", pickupID.String())
	}
	p.IsInwarded = true
	p.InwardID = &inwardID
	return nil
}

type InwardRepo struct {
	*domaintest.DocStore[*inward.Entry]
	Lines   map[id.ID][]inward.Line
	Pickups *PickupRepo
}

func (r *InwardRepo) GetLines(ctx context.Context, docID id.ID) ([]inward.Line, error) {
	return domaintest.CloneLines(r.Lines[docID]), nil
}

func (r *InwardRepo) SaveLines(ctx context.Context, docID id.ID, lines []inward.Line) error {
	r.Lines[docID] = domaintest.CloneLines(lines)
	return nil
}

func (r *InwardRepo) Delete(ctx context.Context, docID id.ID) error {
	delete(r.Lines, docID)
	return r.DocStore.Delete(ctx, docID)
}

func (r *InwardRepo) ReleasePickup(ctx context.Context, pickupID id.ID) error {
	p, ok := r.Pickups.Docs[pickupID]
	if !ok {
		return apperror.NewNotFound("pickup", pickupID.String())
	}
	p.IsInwarded = false
	p.InwardID = nil
	return nil
}

type PORepo struct {
	*domaintest.DocStore[*purchase_order.PurchaseOrder]
	Lines   map[id.ID][]documents.Line
	PIIDs   map[id.ID][]id.ID
	Pickups *PickupRepo
	Inwards *InwardRepo
	// Locks counts LockByIDs calls.
	Locks int
}

func (r *PORepo) GetLines(ctx context.Context, docID id.ID) ([]documents.Line, error) {
	return domaintest.CloneLines(r.Lines[docID]), nil
}

func (r *PORepo) SaveLines(ctx context.Context, docID id.ID, lines []documents.Line) error {
	r.Lines[docID] = domaintest.CloneLines(lines)
	return nil
}

func (r *PORepo) GetPIIDs(ctx context.Context, poID id.ID) ([]id.ID, error) {
	return domaintest.CloneLines(r.PIIDs[poID]), nil
}

func (r *PORepo) SavePIIDs(ctx context.Context, poID id.ID, piIDs []id.ID) error {
	r.PIIDs[poID] = domaintest.CloneLines(piIDs)
	return nil
}

func (r *PORepo) ReferencedLineIDs(ctx context.Context, poID id.ID) ([]id.ID, error) {
	var out []id.ID
	for docID, p := range r.Pickups.Docs {
		if p.POID != poID {
			continue
		}
		for _, l := range r.Pickups.Lines[docID] {
			out = append(out, l.POLineID)
		}
	}
	return out, nil
}

func (r *PORepo) LockByIDs(ctx context.Context, ids []id.ID) error {
	r.Locks++
	for _, poID := range ids {
		if _, ok := r.Docs[poID]; !ok {
			return apperror.NewNotFound("purchase_order", poID.String())
		}
	}
	return nil
}

// Totals counts inward lines by product and pickups that are not inwarded by
// PO line, skipping the excluded document.
func (r *PORepo) Totals(ctx context.Context, poID id.ID, excl purchase_order.Exclusion) (reconciliation.Totals, error) {
	totals := reconciliation.Totals{
		InwardedByProduct: map[id.ID]types.Quantity{},
		InTransitByLine:   map[id.ID]types.Quantity{},
	}
	for docID, lines := range r.Inwards.Lines {
		if excl.InwardID != nil && *excl.InwardID == docID {
			continue
		}
		for _, l := range lines {
			if l.POID != nil && *l.POID == poID {
				totals.InwardedByProduct[l.ProductID] += l.Quantity
			}
		}
	}
	for docID, p := range r.Pickups.Docs {
		if p.POID != poID || p.IsInwarded || (excl.PickupID != nil && *excl.PickupID == docID) {
			continue
		}
		for _, l := range r.Pickups.Lines[docID] {
			totals.InTransitByLine[l.POLineID] += l.Quantity
		}
	}
	return totals, nil
}

// Stock derives availability from the stored inward lines of a warehouse
// minus a fixed exported quantity per product.
type Stock struct {
	Inwards  *InwardRepo
	Exported map[id.ID]types.Quantity
}

func (s *Stock) Available(ctx context.Context, warehouseID id.ID, productIDs []id.ID, exclude *id.ID) (map[id.ID]types.Quantity, error) {
	out := make(map[id.ID]types.Quantity, len(productIDs))
	for _, p := range productIDs {
		out[p] = -s.Exported[p]
	}
	for docID, e := range s.Inwards.Docs {
		if e.WarehouseID != warehouseID {
			continue
		}
		for _, l := range s.Inwards.Lines[docID] {
			if _, ok := out[l.ProductID]; ok {
				out[l.ProductID] += l.Quantity
			}
		}
	}
	return out, nil
}

// Harness holds the three services and their shared stores.
type Harness struct {
	Orders  *purchase_order.Service
	Inwards *inward.Service
	Pickups *pickup.Service

	PORepo     *PORepo
	InwardRepo *InwardRepo
	PickupRepo *PickupRepo
	Stock      *Stock
	Tx         *tx.MockManager
}

// NewHarness wires the services over empty stores.
func NewHarness() *Harness {
	pk := &PickupRepo{DocStore: domaintest.NewDocStore[*pickup.Pickup](), Lines: map[id.ID][]pickup.Line{}}
	in := &InwardRepo{DocStore: domaintest.NewDocStore[*inward.Entry](), Lines: map[id.ID][]inward.Line{}, Pickups: pk}
	po := &PORepo{
		DocStore: domaintest.NewDocStore[*purchase_order.PurchaseOrder](),
		Lines:    map[id.ID][]documents.Line{},
		PIIDs:    map[id.ID][]id.ID{},
		Pickups:  pk,
		Inwards:  in,
	}
	st := &Stock{Inwards: in, Exported: map[id.ID]types.Quantity{}}

	txm := &tx.MockManager{}
	num := numerator.NewMockGenerator()
	orders := purchase_order.NewService(po, num, txm, audit.Nop{})
	inwards := inward.NewService(in, orders, st, num, txm, audit.Nop{})

	return &Harness{
		Orders:     orders,
		Inwards:    inwards,
		Pickups:    pickup.NewService(pk, orders, inwards, num, txm, audit.Nop{}),
		PORepo:     po,
		InwardRepo: in,
		PickupRepo: pk,
		Stock:      st,
		Tx:         txm,
	}
}

// NewOrder creates a PO with one line per quantity, all for product.
func (h *Harness) NewOrder(ctx context.Context, product id.ID, sku string, quantities ...int64) (*purchase_order.PurchaseOrder, error) {
	order := purchase_order.NewPurchaseOrder(id.New())
	for _, q := range quantities {
		order.Lines = append(order.Lines, documents.Line{
			ProductID: product,
			SKU:       sku,
			Quantity:  types.NewQuantity(q),
			Rate:      types.MustMoney("4.50"),
		})
	}
	if err := h.Orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}
