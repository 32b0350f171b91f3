// Package document_repo provides PostgreSQL repositories for trade documents.
package document_repo

import (
	"context"
	"fmt"
	"slices"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/entity"
	"tradedesk/internal/core/id"
	"tradedesk/internal/domain"
	"tradedesk/internal/infrastructure/storage/postgres"
)

// BaseDocumentRepo implements domain.DocumentRepository for headers.
type BaseDocumentRepo[T entity.DocumentRecord] struct {
	txm        *postgres.TxManager
	batch      *postgres.BatchExecutor
	tableName  string
	entityName string
	selectCols []string
	newFn      func() T
}

// NewBaseDocumentRepo creates a repository for one document header table.
func NewBaseDocumentRepo[T entity.DocumentRecord](
	txm *postgres.TxManager,
	tableName, entityName string,
	selectCols []string,
	newFn func() T,
) *BaseDocumentRepo[T] {
	return &BaseDocumentRepo[T]{
		txm:        txm,
		batch:      postgres.NewBatchExecutor(txm),
		tableName:  tableName,
		entityName: entityName,
		selectCols: selectCols,
		newFn:      newFn,
	}
}

func (r *BaseDocumentRepo[T]) db(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

func (r *BaseDocumentRepo[T]) baseSelect() squirrel.SelectBuilder {
	return postgres.Builder().Select(r.selectCols...).From(r.tableName)
}

func (r *BaseDocumentRepo[T]) columns(doc T, skip ...string) map[string]any {
	data := postgres.StructToMap(doc)
	out := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if slices.Contains(skip, col) {
			continue
		}
		if v, ok := data[col]; ok {
			out[col] = v
		}
	}
	return out
}

// Create inserts the header. A duplicate number maps to a duplicate error.
func (r *BaseDocumentRepo[T]) Create(ctx context.Context, doc T) error {
	sql, args, err := postgres.Builder().Insert(r.tableName).SetMap(r.columns(doc)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, r.entityName, doc.DocumentBase().Number)
	}
	return nil
}

// Update writes the header when the stored version matches. Creation
// columns are never rewritten.
func (r *BaseDocumentRepo[T]) Update(ctx context.Context, doc T) error {
	base := doc.DocumentBase()

	sql, args, err := postgres.Builder().
		Update(r.tableName).
		SetMap(r.columns(doc, "id", "version", "created_at", "created_by")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": base.ID, "version": base.Version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.db(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, r.entityName, base.ID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.entityName, base.ID)
	}
	base.Version++
	return nil
}

// Delete removes the header. Lines cascade.
func (r *BaseDocumentRepo[T]) Delete(ctx context.Context, docID id.ID) error {
	sql, args, err := postgres.Builder().
		Delete(r.tableName).
		Where(squirrel.Eq{"id": docID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.db(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, r.entityName, docID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, docID)
	}
	return nil
}

// GetByID returns the header with docID.
func (r *BaseDocumentRepo[T]) GetByID(ctx context.Context, docID id.ID) (T, error) {
	return r.findOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": docID}), docID)
}

// GetByNumber returns the header with the voucher number.
func (r *BaseDocumentRepo[T]) GetByNumber(ctx context.Context, number string) (T, error) {
	return r.findOne(ctx, r.baseSelect().Where(squirrel.Eq{"number": number}), number)
}

// GetForUpdate reads the header with FOR UPDATE. It must run in a transaction.
func (r *BaseDocumentRepo[T]) GetForUpdate(ctx context.Context, docID id.ID) (T, error) {
	return r.findOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": docID}).Suffix("FOR UPDATE"), docID)
}

func (r *BaseDocumentRepo[T]) findOne(ctx context.Context, q squirrel.SelectBuilder, key any) (T, error) {
	doc := r.newFn()
	sql, args, err := q.ToSql()
	if err != nil {
		return doc, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.db(ctx), doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return doc, apperror.NewNotFound(r.entityName, key)
		}
		return doc, fmt.Errorf("get %s: %w", r.entityName, err)
	}
	return doc, nil
}

// List filters by number search, business date range and advanced filters.
func (r *BaseDocumentRepo[T]) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[T], error) {
	q := r.baseSelect()
	if !f.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if f.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + f.Search + "%"})
	}
	if len(f.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": f.IDs})
	}
	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.DateFrom})
	}
	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *f.DateTo})
	}

	q, err := postgres.ApplyFilters(q, r.selectCols, f.AdvancedFilters)
	if err != nil {
		return domain.ListResult[T]{}, err
	}
	order, err := postgres.OrderBy(f.OrderBy, r.selectCols, "date DESC, number DESC")
	if err != nil {
		return domain.ListResult[T]{}, err
	}
	return postgres.Page[T](ctx, r.db(ctx), q, order, f)
}

// getRows loads child rows of one document ordered by line_no.
func getRows[L any](ctx context.Context, db postgres.Querier, table string, docID id.ID) ([]L, error) {
	sql, args, err := postgres.Builder().
		Select(postgres.ExtractDBColumns[L]()...).
		From(table).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows := []L{}
	if err := pgxscan.Select(ctx, db, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	return rows, nil
}

// replaceRows deletes the child rows of a document and inserts rows in one
// batch round-trip. It must run inside a transaction.
func replaceRows[L any](ctx context.Context, batch *postgres.BatchExecutor, table string, docID id.ID, rows []L) error {
	del, delArgs, err := postgres.Builder().
		Delete(table).
		Where(squirrel.Eq{"document_id": docID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	queries := []postgres.BatchQuery{{SQL: del, Args: delArgs}}

	if len(rows) > 0 {
		cols := postgres.ExtractDBColumns[L]()
		ins := postgres.Builder().Insert(table).Columns(cols...)
		for i := range rows {
			ins = ins.Values(postgres.StructToValues(&rows[i], cols)...)
		}
		sql, args, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
	}

	if err := batch.ExecuteBatch(ctx, queries); err != nil {
		return postgres.MapError(err, table, docID)
	}
	return nil
}
