// Package stock_repo sums inward and outward lines into warehouse balances.
package stock_repo

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain/reconciliation"
	"tradedesk/internal/domain/stock"
	"tradedesk/internal/infrastructure/storage/postgres"
)

// countedKinds are the outward kinds that reduce stock. A direct export only
// counts when it names a warehouse, which the warehouse join enforces.
var countedKinds = []string{"export_invoice", "direct_export"}

type Repo struct {
	txm *postgres.TxManager
}

// New creates a stock repository.
func New(txm *postgres.TxManager) *Repo {
	return &Repo{txm: txm}
}

var _ stock.Repository = (*Repo)(nil)

func inwardSums(warehouseID id.ID, productIDs []id.ID) squirrel.SelectBuilder {
	return postgres.Builder().
		Select("l.product_id AS key", postgres.SumQuantity("l.quantity")+" AS quantity").
		From("doc_inward_lines l").
		Join("doc_inwards d ON d.id = l.document_id").
		Where(squirrel.Eq{"d.warehouse_id": warehouseID, "l.product_id": productIDs}).
		GroupBy("l.product_id")
}

func outwardSums(warehouseID id.ID, productIDs []id.ID, excludeOutwardID *id.ID) squirrel.SelectBuilder {
	q := postgres.Builder().
		Select("l.product_id AS key", postgres.SumQuantity("l.quantity")+" AS quantity").
		From("doc_outward_lines l").
		Join("doc_outwards d ON d.id = l.document_id").
		Where(squirrel.Eq{"d.warehouse_id": warehouseID, "l.product_id": productIDs, "d.kind": countedKinds}).
		GroupBy("l.product_id")
	if excludeOutwardID != nil {
		q = q.Where(squirrel.NotEq{"d.id": *excludeOutwardID})
	}
	return q
}

// Available returns an entry for every requested product, zero when it has
// no movements.
func (r *Repo) Available(ctx context.Context, warehouseID id.ID, productIDs []id.ID, excludeOutwardID *id.ID) (map[id.ID]types.Quantity, error) {
	out := make(map[id.ID]types.Quantity, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	db := r.txm.GetQuerier(ctx)

	in, err := postgres.SelectQuantities(ctx, db, inwardSums(warehouseID, productIDs))
	if err != nil {
		return nil, fmt.Errorf("inward sums: %w", err)
	}
	outw, err := postgres.SelectQuantities(ctx, db, outwardSums(warehouseID, productIDs, excludeOutwardID))
	if err != nil {
		return nil, fmt.Errorf("outward sums: %w", err)
	}

	for _, p := range productIDs {
		out[p] = reconciliation.Available(in[p], outw[p])
	}
	return out, nil
}

type movement struct {
	WarehouseID   id.ID          `db:"warehouse_id"`
	WarehouseCode string         `db:"warehouse_code"`
	ProductID     id.ID          `db:"product_id"`
	SKU           string         `db:"sku"`
	Quantity      types.Quantity `db:"quantity"`
}

func movements(lines, docs string, f stock.Filter, extra squirrel.Sqlizer) squirrel.SelectBuilder {
	q := postgres.Builder().
		Select("d.warehouse_id", "w.code AS warehouse_code", "l.product_id", "p.code AS sku",
			postgres.SumQuantity("l.quantity")+" AS quantity").
		From(lines + " l").
		Join(docs + " d ON d.id = l.document_id").
		Join("cat_warehouses w ON w.id = d.warehouse_id").
		Join("cat_products p ON p.id = l.product_id").
		GroupBy("d.warehouse_id", "w.code", "l.product_id", "p.code")
	if f.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"d.warehouse_id": *f.WarehouseID})
	}
	if f.ProductID != nil {
		q = q.Where(squirrel.Eq{"l.product_id": *f.ProductID})
	}
	if extra != nil {
		q = q.Where(extra)
	}
	return q
}

// Balances lists every warehouse and product with movements, sorted by
// warehouse code then SKU.
func (r *Repo) Balances(ctx context.Context, f stock.Filter) ([]stock.Balance, error) {
	db := r.txm.GetQuerier(ctx)

	var ins, outs []movement
	if err := selectMovements(ctx, db, movements("doc_inward_lines", "doc_inwards", f, nil), &ins); err != nil {
		return nil, fmt.Errorf("inward movements: %w", err)
	}
	if err := selectMovements(ctx, db, movements("doc_outward_lines", "doc_outwards", f, squirrel.Eq{"d.kind": countedKinds}), &outs); err != nil {
		return nil, fmt.Errorf("outward movements: %w", err)
	}

	type key struct{ w, p id.ID }
	byKey := make(map[key]*stock.Balance)
	get := func(m movement) *stock.Balance {
		k := key{m.WarehouseID, m.ProductID}
		b, ok := byKey[k]
		if !ok {
			b = &stock.Balance{WarehouseID: m.WarehouseID, WarehouseCode: m.WarehouseCode, ProductID: m.ProductID, SKU: m.SKU}
			byKey[k] = b
		}
		return b
	}
	for _, m := range ins {
		get(m).Inward += m.Quantity
	}
	for _, m := range outs {
		get(m).Outward += m.Quantity
	}

	out := make([]stock.Balance, 0, len(byKey))
	for _, b := range byKey {
		b.Available = reconciliation.Available(b.Inward, b.Outward)
		if f.OnlyNegative && !b.Available.IsNegative() {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WarehouseCode != out[j].WarehouseCode {
			return out[i].WarehouseCode < out[j].WarehouseCode
		}
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}

func selectMovements(ctx context.Context, db postgres.Querier, q squirrel.SelectBuilder, dst *[]movement) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Select(ctx, db, dst, sql, args...)
}
