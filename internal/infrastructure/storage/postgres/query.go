package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain"
	"tradedesk/internal/domain/filter"
)

// Builder returns a squirrel builder with $n placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// ApplyFilters adds advanced filter conditions. Fields outside columns are rejected.
func ApplyFilters(q squirrel.SelectBuilder, columns []string, items []filter.Item) (squirrel.SelectBuilder, error) {
	valid := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		valid[c] = struct{}{}
	}

	for _, item := range items {
		if _, ok := valid[item.Field]; !ok {
			return q, apperror.NewValidation("invalid filter column").WithDetail("field", item.Field)
		}

		switch item.Operator {
		case filter.Equal, filter.InList:
			q = q.Where(squirrel.Eq{item.Field: item.Value})
		case filter.NotEqual, filter.NotInList:
			q = q.Where(squirrel.NotEq{item.Field: item.Value})
		case filter.Less:
			q = q.Where(squirrel.Lt{item.Field: item.Value})
		case filter.LessOrEqual:
			q = q.Where(squirrel.LtOrEq{item.Field: item.Value})
		case filter.Greater:
			q = q.Where(squirrel.Gt{item.Field: item.Value})
		case filter.GreaterOrEqual:
			q = q.Where(squirrel.GtOrEq{item.Field: item.Value})
		case filter.IsNull:
			q = q.Where(squirrel.Eq{item.Field: nil})
		case filter.IsNotNull:
			q = q.Where(squirrel.NotEq{item.Field: nil})
		case filter.Contains:
			q = q.Where(squirrel.ILike{item.Field: fmt.Sprintf("%%%v%%", item.Value)})
		case filter.NotContains:
			q = q.Where(squirrel.NotILike{item.Field: fmt.Sprintf("%%%v%%", item.Value)})
		default:
			return q, apperror.NewValidation("invalid filter operator").WithDetail("operator", item.Operator)
		}
	}
	return q, nil
}

// OrderBy turns "field" or "-field" into an ORDER BY clause. Empty input
// yields def.
func OrderBy(orderBy string, allowed []string, def string) (string, error) {
	orderBy = strings.TrimSpace(orderBy)
	if orderBy == "" {
		return def, nil
	}

	direction := "ASC"
	field := orderBy
	switch {
	case strings.HasPrefix(orderBy, "-"):
		direction = "DESC"
		field = orderBy[1:]
	case strings.HasPrefix(orderBy, "+"):
		field = orderBy[1:]
	}
	field = strings.TrimSpace(field)

	for _, col := range allowed {
		if col == field {
			return field + " " + direction, nil
		}
	}
	return "", apperror.NewValidation("invalid order_by").WithDetail("order_by", orderBy)
}

// Page counts q, then fetches the requested page into a ListResult.
func Page[T any](ctx context.Context, db Querier, q squirrel.SelectBuilder, order string, f domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{Limit: f.Limit, Offset: f.Offset}

	countSQL, countArgs, err := Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := db.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy(order)
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build list: %w", err)
	}
	if err := pgxscan.Select(ctx, db, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}
	if result.Items == nil {
		result.Items = []T{}
	}
	return result, nil
}

type keyedQuantity struct {
	Key      id.ID          `db:"key"`
	Quantity types.Quantity `db:"quantity"`
}

// SelectQuantities runs a query returning (key, quantity) rows and folds them
// into a map. Repeated keys are added.
func SelectQuantities(ctx context.Context, db Querier, q squirrel.Sqlizer) (map[id.ID]types.Quantity, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sums: %w", err)
	}

	var rows []keyedQuantity
	if err := pgxscan.Select(ctx, db, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select sums: %w", err)
	}

	out := make(map[id.ID]types.Quantity, len(rows))
	for _, r := range rows {
		out[r.Key] += r.Quantity
	}
	return out, nil
}

type keyedMoney struct {
	Key    id.ID       `db:"key"`
	Amount types.Money `db:"amount"`
}

// SelectAmounts is SelectQuantities for money sums.
func SelectAmounts(ctx context.Context, db Querier, q squirrel.Sqlizer) (map[id.ID]types.Money, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sums: %w", err)
	}

	var rows []keyedMoney
	if err := pgxscan.Select(ctx, db, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select sums: %w", err)
	}

	out := make(map[id.ID]types.Money, len(rows))
	for _, r := range rows {
		out[r.Key] = out[r.Key].Add(r.Amount)
	}
	return out, nil
}

// SumQuantity is the SQL for a scaled quantity sum that never yields NULL.
func SumQuantity(col string) string {
	return "COALESCE(SUM(" + col + "), 0)::bigint"
}
