// Package report_repo reads the inputs of the P&L and mapping reports.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain/reports"
	"tradedesk/internal/infrastructure/storage/postgres"
)

type Repo struct {
	txm *postgres.TxManager
}

// New creates a report repository.
func New(txm *postgres.TxManager) *Repo {
	return &Repo{txm: txm}
}

var _ reports.Repository = (*Repo)(nil)

func invoiceLinesQuery(f reports.PLFilter) squirrel.SelectBuilder {
	q := postgres.Builder().
		Select("d.id AS outward_id", "d.number", "d.date", "d.buyer_id", "d.pi_id",
			"l.product_id", "l.sku", "l.quantity", "l.amount").
		From("doc_outward_lines l").
		Join("doc_outwards d ON d.id = l.document_id").
		Where(squirrel.Eq{"d.kind": "export_invoice"}).
		OrderBy("d.date", "d.number", "l.line_no")

	if len(f.OutwardIDs) > 0 {
		q = q.Where(squirrel.Eq{"d.id": f.OutwardIDs})
	}
	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"d.date": *f.DateFrom})
	}
	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"d.date": *f.DateTo})
	}
	if f.BuyerID != nil {
		q = q.Where(squirrel.Eq{"d.buyer_id": *f.BuyerID})
	}
	if f.SKU != "" {
		q = q.Where(squirrel.ILike{"l.sku": f.SKU})
	}
	return q
}

// InvoiceLines returns export invoice lines matching f in date and number order.
func (r *Repo) InvoiceLines(ctx context.Context, f reports.PLFilter) ([]reports.InvoiceLine, error) {
	sql, args, err := invoiceLinesQuery(f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	lines := []reports.InvoiceLine{}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select invoice lines: %w", err)
	}
	return lines, nil
}

// POVolumes computes amounts from quantity and rate rather than the rounded
// line amount, so the averaged rate is exact.
func (r *Repo) POVolumes(ctx context.Context, piIDs []id.ID) ([]reports.POVolume, error) {
	sql, args, err := postgres.Builder().
		Select("pp.pi_id", "l.product_id",
			postgres.SumQuantity("l.quantity")+" AS quantity",
			"COALESCE(SUM(l.quantity::numeric * l.rate / 10000), 0) AS amount").
		From("doc_purchase_order_pis pp").
		Join("doc_purchase_order_lines l ON l.document_id = pp.po_id").
		Where(squirrel.Eq{"pp.pi_id": piIDs}).
		GroupBy("pp.pi_id", "l.product_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	out := []reports.POVolume{}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select po volumes: %w", err)
	}
	return out, nil
}

// ExpenseTotals sums expense records per outward entry.
func (r *Repo) ExpenseTotals(ctx context.Context, outwardIDs []id.ID) (map[id.ID]types.Money, error) {
	if len(outwardIDs) == 0 {
		return map[id.ID]types.Money{}, nil
	}
	q := postgres.Builder().
		Select("outward_id AS key", "COALESCE(SUM(total_amount), 0) AS amount").
		From("doc_expenses").
		Where(squirrel.Eq{"outward_id": outwardIDs}).
		GroupBy("outward_id")
	return postgres.SelectAmounts(ctx, r.txm.GetQuerier(ctx), q)
}

// InvoiceTotals reads the stored total of each outward entry.
func (r *Repo) InvoiceTotals(ctx context.Context, outwardIDs []id.ID) (map[id.ID]types.Money, error) {
	if len(outwardIDs) == 0 {
		return map[id.ID]types.Money{}, nil
	}
	q := postgres.Builder().
		Select("id AS key", "total_amount AS amount").
		From("doc_outwards").
		Where(squirrel.Eq{"id": outwardIDs})
	return postgres.SelectAmounts(ctx, r.txm.GetQuerier(ctx), q)
}

func mappingQuery(f reports.MappingFilter) squirrel.SelectBuilder {
	q := postgres.Builder().
		Select("pi.id AS pi_id", "pi.number AS pi_number", "po.id AS po_id", "po.number AS po_number",
			"pil.product_id", "pil.sku",
			"pil.quantity AS pi_quantity", "pil.rate AS pi_rate",
			"pol.quantity AS po_quantity", "pol.rate AS po_rate").
		From("doc_purchase_order_pis pp").
		Join("doc_purchase_invoices pi ON pi.id = pp.pi_id").
		Join("doc_purchase_orders po ON po.id = pp.po_id").
		Join("doc_purchase_invoice_lines pil ON pil.document_id = pi.id").
		Join("doc_purchase_order_lines pol ON pol.document_id = po.id AND pol.product_id = pil.product_id")

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"pi.number": pattern},
			squirrel.ILike{"po.number": pattern},
			squirrel.ILike{"pil.sku": pattern},
		})
	}
	return q
}

// PIPOMapping counts the matching rows and returns one page of them.
func (r *Repo) PIPOMapping(ctx context.Context, f reports.MappingFilter) (reports.MappingPage, error) {
	db := r.txm.GetQuerier(ctx)
	q := mappingQuery(f)
	page := reports.MappingPage{Items: []reports.MappingRow{}}

	countSQL, countArgs, err := postgres.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return page, fmt.Errorf("build count: %w", err)
	}
	if err := db.QueryRow(ctx, countSQL, countArgs...).Scan(&page.TotalCount); err != nil {
		return page, fmt.Errorf("count mapping: %w", err)
	}

	sql, args, err := q.
		OrderBy("pi.date DESC", "pi.number", "po.number", "pil.line_no", "pol.line_no").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return page, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, db, &page.Items, sql, args...); err != nil {
		return page, fmt.Errorf("select mapping: %w", err)
	}
	return page, nil
}
