package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/domain/documents"
	"tradedesk/internal/domain/documents/inward"
	"tradedesk/internal/domain/documents/pickup"
	"tradedesk/internal/domain/documents/purchase_order"
	"tradedesk/internal/domain/reconciliation"
	"tradedesk/internal/infrastructure/storage/postgres"
)

const (
	purchaseOrdersTable     = "doc_purchase_orders"
	purchaseOrderLinesTable = "doc_purchase_order_lines"
	purchaseOrderPIsTable   = "doc_purchase_order_pis"
	pickupsTable            = "doc_pickups"
	pickupLinesTable        = "doc_pickup_lines"
	inwardsTable            = "doc_inwards"
	inwardLinesTable        = "doc_inward_lines"
)

type PurchaseOrderRepo struct {
	*BaseDocumentRepo[*purchase_order.PurchaseOrder]
}

// NewPurchaseOrderRepo creates a new purchase order repository.
func NewPurchaseOrderRepo(txm *postgres.TxManager) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{NewBaseDocumentRepo(txm, purchaseOrdersTable, "purchase_order",
		postgres.ExtractDBColumns[purchase_order.PurchaseOrder](),
		func() *purchase_order.PurchaseOrder { return &purchase_order.PurchaseOrder{} })}
}

// GetLines returns the PO lines in line order.
func (r *PurchaseOrderRepo) GetLines(ctx context.Context, docID id.ID) ([]documents.Line, error) {
	return getRows[documents.Line](ctx, r.db(ctx), purchaseOrderLinesTable, docID)
}

// SaveLines replaces the PO lines.
func (r *PurchaseOrderRepo) SaveLines(ctx context.Context, docID id.ID, lines []documents.Line) error {
	ensureLineIDs(docID, lines)
	return replaceRows(ctx, r.batch, purchaseOrderLinesTable, docID, lines)
}

// GetPIIDs returns the PIs linked to the PO.
func (r *PurchaseOrderRepo) GetPIIDs(ctx context.Context, poID id.ID) ([]id.ID, error) {
	sql, args, err := postgres.Builder().
		Select("pi_id").
		From(purchaseOrderPIsTable).
		Where(squirrel.Eq{"po_id": poID}).
		OrderBy("pi_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	ids := []id.ID{}
	if err := pgxscan.Select(ctx, r.db(ctx), &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("select pi ids: %w", err)
	}
	return ids, nil
}

// SavePIIDs replaces the PI links. An unknown PI fails the foreign key.
func (r *PurchaseOrderRepo) SavePIIDs(ctx context.Context, poID id.ID, piIDs []id.ID) error {
	del, delArgs, err := postgres.Builder().Delete(purchaseOrderPIsTable).Where(squirrel.Eq{"po_id": poID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	queries := []postgres.BatchQuery{{SQL: del, Args: delArgs}}

	if len(piIDs) > 0 {
		ins := postgres.Builder().Insert(purchaseOrderPIsTable).Columns("po_id", "pi_id")
		for _, piID := range piIDs {
			ins = ins.Values(poID, piID)
		}
		sql, args, err := ins.Suffix("ON CONFLICT DO NOTHING").ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
	}

	if err := r.batch.ExecuteBatch(ctx, queries); err != nil {
		return postgres.MapError(err, "purchase_invoice", piIDs)
	}
	return nil
}

// LockByIDs takes row locks in id order so concurrent reconciliations over
// overlapping POs cannot deadlock.
func (r *PurchaseOrderRepo) LockByIDs(ctx context.Context, ids []id.ID) error {
	if len(ids) == 0 {
		return nil
	}
	sql, args, err := postgres.Builder().
		Select("id").
		From(purchaseOrdersTable).
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id").
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("build lock: %w", err)
	}

	var locked []id.ID
	if err := pgxscan.Select(ctx, r.db(ctx), &locked, sql, args...); err != nil {
		return fmt.Errorf("lock purchase orders: %w", err)
	}

	found := make(map[id.ID]struct{}, len(locked))
	for _, l := range locked {
		found[l] = struct{}{}
	}
	for _, want := range ids {
		if _, ok := found[want]; !ok {
			return apperror.NewNotFound("purchase_order", want)
		}
	}
	return nil
}

// Totals sums, for one PO: PI quantities of linked PIs per product, inwarded
// quantities per product, and in-transit pickup quantities per PO line.
func (r *PurchaseOrderRepo) Totals(ctx context.Context, poID id.ID, excl purchase_order.Exclusion) (reconciliation.Totals, error) {
	db := r.db(ctx)

	piQ := postgres.Builder().
		Select("l.product_id AS key", postgres.SumQuantity("l.quantity")+" AS quantity").
		From(purchaseInvoiceLinesTable + " l").
		Join(purchaseOrderPIsTable + " p ON p.pi_id = l.document_id").
		Where(squirrel.Eq{"p.po_id": poID}).
		GroupBy("l.product_id")

	inwardQ := postgres.Builder().
		Select("l.product_id AS key", postgres.SumQuantity("l.quantity")+" AS quantity").
		From(inwardLinesTable + " l").
		Where(squirrel.Eq{"l.po_id": poID}).
		GroupBy("l.product_id")
	if excl.InwardID != nil {
		inwardQ = inwardQ.Where(squirrel.NotEq{"l.document_id": *excl.InwardID})
	}

	transitQ := postgres.Builder().
		Select("l.po_line_id AS key", postgres.SumQuantity("l.quantity")+" AS quantity").
		From(pickupLinesTable + " l").
		Join(pickupsTable + " p ON p.id = l.document_id").
		Where(squirrel.Eq{"p.po_id": poID, "p.is_inwarded": false}).
		GroupBy("l.po_line_id")
	if excl.PickupID != nil {
		transitQ = transitQ.Where(squirrel.NotEq{"p.id": *excl.PickupID})
	}

	var (
		totals reconciliation.Totals
		err    error
	)
	if totals.PIByProduct, err = postgres.SelectQuantities(ctx, db, piQ); err != nil {
		return totals, fmt.Errorf("pi totals: %w", err)
	}
	if totals.InwardedByProduct, err = postgres.SelectQuantities(ctx, db, inwardQ); err != nil {
		return totals, fmt.Errorf("inward totals: %w", err)
	}
	if totals.InTransitByLine, err = postgres.SelectQuantities(ctx, db, transitQ); err != nil {
		return totals, fmt.Errorf("in-transit totals: %w", err)
	}
	return totals, nil
}

// ReferencedLineIDs returns the PO lines that any pickup points at.
func (r *PurchaseOrderRepo) ReferencedLineIDs(ctx context.Context, poID id.ID) ([]id.ID, error) {
	sql, args, err := postgres.Builder().
		Select("DISTINCT l.po_line_id").
		From(pickupLinesTable + " l").
		Join(pickupsTable + " p ON p.id = l.document_id").
		Where(squirrel.Eq{"p.po_id": poID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	ids := []id.ID{}
	if err := pgxscan.Select(ctx, r.db(ctx), &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("select referenced lines: %w", err)
	}
	return ids, nil
}

type PickupRepo struct {
	*BaseDocumentRepo[*pickup.Pickup]
}

// NewPickupRepo creates a new pickup repository.
func NewPickupRepo(txm *postgres.TxManager) *PickupRepo {
	return &PickupRepo{NewBaseDocumentRepo(txm, pickupsTable, "pickup",
		postgres.ExtractDBColumns[pickup.Pickup](),
		func() *pickup.Pickup { return &pickup.Pickup{} })}
}

// GetLines returns the pickup lines in line order.
func (r *PickupRepo) GetLines(ctx context.Context, docID id.ID) ([]pickup.Line, error) {
	return getRows[pickup.Line](ctx, r.db(ctx), pickupLinesTable, docID)
}

// SaveLines replaces the pickup lines.
func (r *PickupRepo) SaveLines(ctx context.Context, docID id.ID, lines []pickup.Line) error {
	for i := range lines {
		lines[i].DocumentID = docID
		if id.IsNil(lines[i].LineID) {
			lines[i].LineID = id.New()
		}
	}
	return replaceRows(ctx, r.batch, pickupLinesTable, docID, lines)
}

// MarkInwarded links the pickup to the inward entry created from it.
func (r *PickupRepo) MarkInwarded(ctx context.Context, pickupID, inwardID id.ID) error {
	return r.setInwarded(ctx, pickupID, true, &inwardID)
}

func (r *PickupRepo) setInwarded(ctx context.Context, pickupID id.ID, inwarded bool, inwardID *id.ID) error {
	sql, args, err := postgres.Builder().
		Update(pickupsTable).
		Set("is_inwarded", inwarded).
		Set("inward_id", inwardID).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": pickupID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.db(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "pickup", pickupID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("pickup", pickupID)
	}
	return nil
}

type InwardRepo struct {
	*BaseDocumentRepo[*inward.Entry]
	pickups *PickupRepo
}

// NewInwardRepo creates a new inward entry repository.
func NewInwardRepo(txm *postgres.TxManager) *InwardRepo {
	return &InwardRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(txm, inwardsTable, "inward_entry",
			postgres.ExtractDBColumns[inward.Entry](),
			func() *inward.Entry { return &inward.Entry{} }),
		pickups: NewPickupRepo(txm),
	}
}

// GetLines returns the inward lines in line order.
func (r *InwardRepo) GetLines(ctx context.Context, docID id.ID) ([]inward.Line, error) {
	return getRows[inward.Line](ctx, r.db(ctx), inwardLinesTable, docID)
}

// SaveLines replaces the inward lines.
func (r *InwardRepo) SaveLines(ctx context.Context, docID id.ID, lines []inward.Line) error {
	for i := range lines {
		lines[i].DocumentID = docID
		if id.IsNil(lines[i].LineID) {
			lines[i].LineID = id.New()
		}
	}
	return replaceRows(ctx, r.batch, inwardLinesTable, docID, lines)
}

// ReleasePickup returns the pickup to in-transit.
func (r *InwardRepo) ReleasePickup(ctx context.Context, pickupID id.ID) error {
	return r.pickups.setInwarded(ctx, pickupID, false, nil)
}

var (
	_ purchase_order.Repository = (*PurchaseOrderRepo)(nil)
	_ pickup.Repository         = (*PickupRepo)(nil)
	_ inward.Repository         = (*InwardRepo)(nil)
)
