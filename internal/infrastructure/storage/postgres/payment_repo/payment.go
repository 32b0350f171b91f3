// Package payment_repo stores payment records with their entries and extras.
package payment_repo

import (
	"context"
	"fmt"
	"slices"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain"
	"tradedesk/internal/domain/payment"
	"tradedesk/internal/infrastructure/storage/postgres"
)

const (
	recordsTable  = "pay_records"
	entriesTable  = "pay_entries"
	extrasTable   = "pay_extras"
	invoicesTable = "doc_purchase_invoices"
)

// Repo implements payment.Repository. Records are read joined with their PI
// so pi_number comes along.
type Repo struct {
	txm        *postgres.TxManager
	recordCols []string
}

// New creates a payment repository.
func New(txm *postgres.TxManager) *Repo {
	cols := slices.DeleteFunc(postgres.ExtractDBColumns[payment.Record](), func(c string) bool {
		return c == "pi_number"
	})
	return &Repo{txm: txm, recordCols: cols}
}

var _ payment.Repository = (*Repo)(nil)

func (r *Repo) db(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

func (r *Repo) selectRecords() squirrel.SelectBuilder {
	cols := make([]string, 0, len(r.recordCols)+1)
	for _, c := range r.recordCols {
		cols = append(cols, "r."+c)
	}
	cols = append(cols, "pi.number AS pi_number")
	return postgres.Builder().
		Select(cols...).
		From(recordsTable + " r").
		Join(invoicesTable + " pi ON pi.id = r.pi_id")
}

func (r *Repo) values(rec *payment.Record, skip ...string) map[string]any {
	data := postgres.StructToMap(rec)
	out := make(map[string]any, len(r.recordCols))
	for _, c := range r.recordCols {
		if !slices.Contains(skip, c) {
			out[c] = data[c]
		}
	}
	return out
}

// Create inserts a payment record. A second record for the same PI is a duplicate.
func (r *Repo) Create(ctx context.Context, rec *payment.Record) error {
	sql, args, err := postgres.Builder().Insert(recordsTable).SetMap(r.values(rec)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db(ctx).Exec(ctx, sql, args...); err != nil {
		if apperror.HasCode(postgres.MapError(err, "payment_record", rec.PIID), apperror.CodeDuplicate) {
			return apperror.NewConflict("payment record already exists for this purchase invoice").
				WithDetail("pi_id", rec.PIID)
		}
		return postgres.MapError(err, "payment_record", rec.PIID)
	}
	return nil
}

// Update checks the version but leaves rec.Version alone; the service bumps it.
func (r *Repo) Update(ctx context.Context, rec *payment.Record) error {
	sql, args, err := postgres.Builder().
		Update(recordsTable).
		SetMap(r.values(rec, "id", "version", "created_at", "created_by", "pi_id")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": rec.ID, "version": rec.Version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.db(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "payment_record", rec.ID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("payment_record", rec.ID)
	}
	return nil
}

// GetByID returns the record with recordID.
func (r *Repo) GetByID(ctx context.Context, recordID id.ID) (*payment.Record, error) {
	return r.get(ctx, r.selectRecords().Where(squirrel.Eq{"r.id": recordID}), recordID)
}

// GetByPIID returns the record of a PI.
func (r *Repo) GetByPIID(ctx context.Context, piID id.ID) (*payment.Record, error) {
	return r.get(ctx, r.selectRecords().Where(squirrel.Eq{"r.pi_id": piID}), piID)
}

// GetForUpdate reads the record with FOR UPDATE.
func (r *Repo) GetForUpdate(ctx context.Context, recordID id.ID) (*payment.Record, error) {
	return r.get(ctx, r.selectRecords().Where(squirrel.Eq{"r.id": recordID}).Suffix("FOR UPDATE OF r"), recordID)
}

func (r *Repo) get(ctx context.Context, q squirrel.SelectBuilder, key any) (*payment.Record, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rec payment.Record
	if err := pgxscan.Get(ctx, r.db(ctx), &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("payment_record", key)
		}
		return nil, fmt.Errorf("get payment record: %w", err)
	}
	return &rec, nil
}

// Delete removes the record; entries and extras cascade.
func (r *Repo) Delete(ctx context.Context, recordID id.ID) error {
	return r.deleteWhere(ctx, recordsTable, squirrel.Eq{"id": recordID}, "payment_record", recordID)
}

// List searches by PI number. Filtering by pi_id goes through advanced filters.
func (r *Repo) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*payment.Record], error) {
	q := r.selectRecords()
	if !f.IncludeDeleted {
		q = q.Where(squirrel.Eq{"r.deletion_mark": false})
	}
	if f.Search != "" {
		q = q.Where(squirrel.ILike{"pi.number": "%" + f.Search + "%"})
	}
	if len(f.IDs) > 0 {
		q = q.Where(squirrel.Eq{"r.id": f.IDs})
	}
	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"pi.date": *f.DateFrom})
	}
	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"pi.date": *f.DateTo})
	}

	q, err := postgres.ApplyFilters(q, []string{"r.pi_id", "r.short_payment_status"}, f.AdvancedFilters)
	if err != nil {
		return domain.ListResult[*payment.Record]{}, err
	}
	order, err := postgres.OrderBy(f.OrderBy, []string{"r.created_at", "r.updated_at", "pi.number", "r.total_amount"}, "r.created_at DESC")
	if err != nil {
		return domain.ListResult[*payment.Record]{}, err
	}
	return postgres.Page[*payment.Record](ctx, r.db(ctx), q, order, f)
}

// GetEntries returns the payment entries of a record.
func (r *Repo) GetEntries(ctx context.Context, recordID id.ID) ([]payment.Entry, error) {
	return selectChildren[payment.Entry](ctx, r.db(ctx), entriesTable, recordID)
}

// AddEntry inserts a payment entry.
func (r *Repo) AddEntry(ctx context.Context, e *payment.Entry) error {
	return r.insert(ctx, entriesTable, e, "payment_entry")
}

// DeleteEntry removes an entry of the record.
func (r *Repo) DeleteEntry(ctx context.Context, recordID, entryID id.ID) error {
	return r.deleteWhere(ctx, entriesTable, squirrel.Eq{"id": entryID, "record_id": recordID}, "payment_entry", entryID)
}

// GetExtras returns the extra payments of a record.
func (r *Repo) GetExtras(ctx context.Context, recordID id.ID) ([]payment.Extra, error) {
	return selectChildren[payment.Extra](ctx, r.db(ctx), extrasTable, recordID)
}

// AddExtra inserts an extra payment.
func (r *Repo) AddExtra(ctx context.Context, x *payment.Extra) error {
	return r.insert(ctx, extrasTable, x, "extra_payment")
}

// DeleteExtra removes an extra payment of the record.
func (r *Repo) DeleteExtra(ctx context.Context, recordID, extraID id.ID) error {
	return r.deleteWhere(ctx, extrasTable, squirrel.Eq{"id": extraID, "record_id": recordID}, "extra_payment", extraID)
}

// InvoiceTotal returns the current total of a PI.
func (r *Repo) InvoiceTotal(ctx context.Context, piID id.ID) (types.Money, error) {
	var total types.Money
	err := r.db(ctx).QueryRow(ctx, "SELECT total_amount FROM "+invoicesTable+" WHERE id = $1", piID).Scan(&total)
	if err != nil {
		return total, postgres.MapError(err, "purchase_invoice", piID)
	}
	return total, nil
}

func (r *Repo) insert(ctx context.Context, table string, row any, entity string) error {
	sql, args, err := postgres.Builder().Insert(table).SetMap(postgres.StructToMap(row)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, entity, nil)
	}
	return nil
}

func (r *Repo) deleteWhere(ctx context.Context, table string, where squirrel.Eq, entity string, key id.ID) error {
	sql, args, err := postgres.Builder().Delete(table).Where(where).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	tag, err := r.db(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, entity, key)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(entity, key)
	}
	return nil
}

func selectChildren[T any](ctx context.Context, db postgres.Querier, table string, recordID id.ID) ([]T, error) {
	sql, args, err := postgres.Builder().
		Select(postgres.ExtractDBColumns[T]()...).
		From(table).
		Where(squirrel.Eq{"record_id": recordID}).
		OrderBy("date", "created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	out := []T{}
	if err := pgxscan.Select(ctx, db, &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	return out, nil
}
