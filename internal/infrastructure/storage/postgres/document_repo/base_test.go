package document_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain/documents"
	"tradedesk/internal/domain/documents/inward"
	"tradedesk/internal/domain/documents/outward"
	"tradedesk/internal/infrastructure/storage/postgres"
)

func TestLineColumns(t *testing.T) {
	assert.Equal(t,
		[]string{"line_id", "document_id", "line_no", "product_id", "sku", "quantity", "rate", "amount", "po_id"},
		postgres.ExtractDBColumns[inward.Line]())
	assert.Equal(t,
		[]string{"line_id", "document_id", "line_no", "product_id", "sku", "quantity", "rate", "amount", "dimensions", "net_weight", "gross_weight"},
		postgres.ExtractDBColumns[outward.Line]())
}

func TestLineValues_FlattenEmbedded(t *testing.T) {
	poID := id.New()
	line := inward.Line{
		Line: documents.Line{LineNo: 2, SKU: "SKU-1", Quantity: types.NewQuantity(3)},
		POID: &poID,
	}
	cols := postgres.ExtractDBColumns[inward.Line]()
	vals := postgres.StructToValues(&line, cols)

	require.Len(t, vals, len(cols))
	assert.Equal(t, 2, vals[2])
	assert.Equal(t, "SKU-1", vals[4])
	assert.Equal(t, types.NewQuantity(3), vals[5])
	assert.Equal(t, &poID, vals[8])
}

func TestEnsureLineIDs(t *testing.T) {
	docID := id.New()
	kept := id.New()
	lines := []documents.Line{{LineID: kept}, {}}

	ensureLineIDs(docID, lines)

	assert.Equal(t, kept, lines[0].LineID)
	assert.False(t, id.IsNil(lines[1].LineID))
	assert.Equal(t, docID, lines[1].DocumentID)
}

func TestListOrderDefault(t *testing.T) {
	repo := NewPurchaseOrderRepo(nil)
	order, err := postgres.OrderBy("", repo.selectCols, "date DESC, number DESC")
	require.NoError(t, err)
	assert.Equal(t, "date DESC, number DESC", order)

	order, err = postgres.OrderBy("-total_amount", repo.selectCols, "")
	require.NoError(t, err)
	assert.Equal(t, "total_amount DESC", order)
}
