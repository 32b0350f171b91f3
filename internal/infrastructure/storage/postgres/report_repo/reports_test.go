package report_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradedesk/internal/core/id"
	"tradedesk/internal/domain/reports"
)

func TestInvoiceLinesQuery(t *testing.T) {
	buyer := id.New()
	sql, args, err := invoiceLinesQuery(reports.PLFilter{BuyerID: &buyer, SKU: "sku-1"}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE d.kind = $1 AND d.buyer_id = $2 AND l.sku ILIKE $3")
	assert.Contains(t, sql, "ORDER BY d.date, d.number, l.line_no")
	assert.Equal(t, []any{"export_invoice", buyer, "sku-1"}, args)
}

func TestMappingQuery_Search(t *testing.T) {
	sql, args, err := mappingQuery(reports.MappingFilter{Search: "PI-7"}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "pol.product_id = pil.product_id")
	assert.Contains(t, sql, "(pi.number ILIKE $1 OR po.number ILIKE $2 OR pil.sku ILIKE $3)")
	assert.Equal(t, []any{"%PI-7%", "%PI-7%", "%PI-7%"}, args)
}
