package purchase_order_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain/documents"
	"tradedesk/internal/domain/documents/documentstest"
	"tradedesk/internal/domain/documents/inward"
	"tradedesk/internal/domain/documents/pickup"
	"tradedesk/internal/domain/documents/purchase_order"
)

type fixture struct {
	*documentstest.Harness
	po        *purchase_order.PurchaseOrder
	product   id.ID
	warehouse id.ID
}

// newFixture creates a PO of 100 with a pickup of 30 in transit and 50
// inwarded against it.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	h := documentstest.NewHarness()
	product, warehouse := id.New(), id.New()
	order, err := h.NewOrder(ctx, product, "SKU-PO", 100)
	require.NoError(t, err)

	p := pickup.NewPickup(order.ID, warehouse)
	p.Lines = []pickup.Line{{POLineID: order.Lines[0].LineID, Quantity: types.NewQuantity(30)}}
	require.NoError(t, h.Pickups.Create(ctx, p))

	poID := order.ID
	e := inward.NewEntry(inward.KindWarehouse, warehouse)
	e.Lines = []inward.Line{{
		Line: documents.Line{ProductID: product, Quantity: types.NewQuantity(50), Rate: types.MustMoney("4.50")},
		POID: &poID,
	}}
	require.NoError(t, h.Inwards.Create(ctx, e))

	return &fixture{Harness: h, po: order, product: product, warehouse: warehouse}
}

func (f *fixture) reload(t *testing.T) *purchase_order.PurchaseOrder {
	t.Helper()
	doc, err := f.Orders.GetByID(context.Background(), f.po.ID)
	require.NoError(t, err)
	return doc
}

func TestCreate_AssignsNumberAndLines(t *testing.T) {
	f := newFixture(t)

	doc := f.reload(t)
	assert.NotEmpty(t, doc.Number)
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, 1, doc.Lines[0].LineNo)
	assert.Equal(t, "450.00", doc.TotalAmount.StringFixed(2))
}

func TestUpdate_CannotShrinkBelowCommitted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	doc := f.reload(t)
	doc.Lines[0].Quantity = types.NewQuantity(79)
	err := f.Orders.Update(ctx, doc)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeQuantityExceedsRemaining, appErr.Code)
	assert.Equal(t, "50", appErr.Details["already_inwarded"])
	assert.Equal(t, "30", appErr.Details["in_transit"])
	assert.Equal(t, types.NewQuantity(100), f.reload(t).Lines[0].Quantity)

	doc = f.reload(t)
	doc.Lines[0].Quantity = types.NewQuantity(80)
	require.NoError(t, f.Orders.Update(ctx, doc), "exactly committed is accepted")
	assert.Equal(t, types.NewQuantity(80), f.reload(t).Lines[0].Quantity)

	stats, err := f.Orders.LinesWithStats(ctx, f.po.Number)
	require.NoError(t, err)
	assert.True(t, stats[0].RemainingAllowed.IsZero())
}

func TestUpdate_KeepsLinesReferencedByPickups(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	doc := f.reload(t)
	referenced := doc.Lines[0].LineID
	doc.Lines = []documents.Line{{ProductID: f.product, SKU: "SKU-PO", Quantity: types.NewQuantity(200), Rate: types.MustMoney("4.50")}}

	err := f.Orders.Update(ctx, doc)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
	assert.Equal(t, referenced.String(), appErr.Details["po_line_id"])
	assert.Equal(t, referenced, f.reload(t).Lines[0].LineID)
}

func TestUpdate_AddsLineNextToReferencedOne(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	doc := f.reload(t)
	extra := id.New()
	doc.Lines = append(doc.Lines, documents.Line{ProductID: extra, SKU: "SKU-NEW", Quantity: types.NewQuantity(5), Rate: types.MustMoney("1")})
	require.NoError(t, f.Orders.Update(ctx, doc))

	stored := f.reload(t)
	require.Len(t, stored.Lines, 2)
	assert.Equal(t, 2, stored.Lines[1].LineNo)
	assert.Equal(t, "455.00", stored.TotalAmount.StringFixed(2))
}

func TestUpdate_NumberIsImmutable(t *testing.T) {
	f := newFixture(t)

	doc := f.reload(t)
	doc.Number = "PO-OTHER"
	assert.True(t, apperror.HasCode(f.Orders.Update(context.Background(), doc), apperror.CodeValidation))
}

func TestLockForReconciliation_ExcludesDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var inwardID id.ID
	for docID := range f.InwardRepo.Docs {
		inwardID = docID
	}

	locked, err := f.Orders.LockForReconciliation(ctx, []id.ID{f.po.ID, f.po.ID}, purchase_order.Exclusion{InwardID: &inwardID})
	require.NoError(t, err)
	require.Len(t, locked, 1)
	st := locked[f.po.ID].Stats[0]
	assert.True(t, st.AlreadyInwarded.IsZero())
	assert.Equal(t, types.NewQuantity(30), st.InTransit)
	assert.Equal(t, types.NewQuantity(70), st.RemainingAllowed)
}

func TestScanOverdrawn_CountsLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	n, err := f.Orders.ScanOverdrawn(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Stale data: the PO line shrinks behind the service's back.
	f.PORepo.Lines[f.po.ID][0].Quantity = types.NewQuantity(60)

	n, err = f.Orders.ScanOverdrawn(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
