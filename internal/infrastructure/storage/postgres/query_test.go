package postgres

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/domain/filter"
)

func TestApplyFilters(t *testing.T) {
	cols := []string{"id", "sku", "rate"}
	base := Builder().Select("id").From("t")

	tests := []struct {
		name     string
		item     filter.Item
		wantSQL  string
		wantArgs []any
	}{
		{"greater", filter.Item{Field: "rate", Operator: filter.Greater, Value: 10}, "SELECT id FROM t WHERE rate > $1", []any{10}},
		{"less", filter.Item{Field: "rate", Operator: filter.Less, Value: 5}, "SELECT id FROM t WHERE rate < $1", []any{5}},
		{"in", filter.Item{Field: "sku", Operator: filter.InList, Value: []string{"A", "B"}}, "SELECT id FROM t WHERE sku IN ($1,$2)", []any{"A", "B"}},
		{"contains", filter.Item{Field: "sku", Operator: filter.Contains, Value: "ab"}, "SELECT id FROM t WHERE sku ILIKE $1", []any{"%ab%"}},
		{"null", filter.Item{Field: "sku", Operator: filter.IsNull}, "SELECT id FROM t WHERE sku IS NULL", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ApplyFilters(base, cols, []filter.Item{tt.item})
			require.NoError(t, err)

			sql, args, err := q.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			if tt.wantArgs == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestApplyFilters_RejectsUnknownColumn(t *testing.T) {
	_, err := ApplyFilters(Builder().Select("id").From("t"), []string{"id"},
		[]filter.Item{filter.Eq("password_hash", "x")})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestOrderBy(t *testing.T) {
	allowed := []string{"code", "name"}

	got, err := OrderBy("", allowed, "name ASC")
	require.NoError(t, err)
	assert.Equal(t, "name ASC", got)

	got, err = OrderBy("-code", allowed, "name ASC")
	require.NoError(t, err)
	assert.Equal(t, "code DESC", got)

	_, err = OrderBy("code; DROP TABLE x", allowed, "name ASC")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestSumQuantity(t *testing.T) {
	sql, _, err := Builder().
		Select("product_id AS key", SumQuantity("quantity")+" AS quantity").
		From("doc_inward_lines").
		Where(squirrel.Eq{"po_id": "x"}).
		GroupBy("product_id").
		ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT product_id AS key, COALESCE(SUM(quantity), 0)::bigint AS quantity FROM doc_inward_lines WHERE po_id = $1 GROUP BY product_id",
		sql)
}
