package pickup_test

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
	"tradedesk/internal/domain/reconciliation"
)

type fixture struct {
	pickups   *pickup.Service
	inwards   *inward.Service
	orders    *purchase_order.Service
	pkRepo    *documentstest.PickupRepo
	po        *purchase_order.PurchaseOrder
	poLine    id.ID
	product   id.ID
	warehouse id.ID
}

func newFixture(t *testing.T, poQty int64) *fixture {
	t.Helper()

	h := documentstest.NewHarness()
	product := id.New()
	order, err := h.NewOrder(context.Background(), product, "SKU-X", poQty)
	require.NoError(t, err)

	return &fixture{
		pickups:   h.Pickups,
		inwards:   h.Inwards,
		orders:    h.Orders,
		pkRepo:    h.PickupRepo,
		po:        order,
		poLine:    order.Lines[0].LineID,
		product:   product,
		warehouse: id.New(),
	}
}

func (f *fixture) newPickup(qty int64) *pickup.Pickup {
	p := pickup.NewPickup(f.po.ID, f.warehouse)
	p.Lines = []pickup.Line{{POLineID: f.poLine, Quantity: types.NewQuantity(qty)}}
	return p
}

func (f *fixture) newInward(qty int64) *inward.Entry {
	poID := f.po.ID
	e := inward.NewEntry(inward.KindWarehouse, f.warehouse)
	e.Lines = []inward.Line{{
		Line: documents.Line{ProductID: f.product, Quantity: types.NewQuantity(qty), Rate: types.MustMoney("4.50")},
		POID: &poID,
	}}
	return e
}

func (f *fixture) stats(t *testing.T) reconciliation.LineStats {
	t.Helper()
	stats, err := f.orders.LinesWithStats(context.Background(), f.po.Number)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	return stats[0]
}

func TestPickupThenInward(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)

	p := f.newPickup(30)
	require.NoError(t, f.pickups.Create(ctx, p))
	assert.Equal(t, "SKU-X", p.Lines[0].SKU, "sku is copied from the PO line")
	assert.Equal(t, f.product, p.Lines[0].ProductID)

	st := f.stats(t)
	assert.Equal(t, types.NewQuantity(30), st.InTransit)
	assert.Equal(t, types.NewQuantity(70), st.RemainingAllowed)

	require.NoError(t, f.inwards.Create(ctx, f.newInward(70)))

	st = f.stats(t)
	assert.Equal(t, types.NewQuantity(70), st.AlreadyInwarded)
	assert.Equal(t, types.NewQuantity(30), st.InTransit)
	assert.True(t, st.RemainingAllowed.IsZero())

	err := f.inwards.Create(ctx, f.newInward(1))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeQuantityExceedsRemaining))
	assert.Contains(t, err.Error(), "exceeds remaining allowed")
}

func TestCreate_RejectsOverRemaining(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 50)

	require.NoError(t, f.pickups.Create(ctx, f.newPickup(40)))

	err := f.pickups.Create(ctx, f.newPickup(11))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeQuantityExceedsRemaining, appErr.Code)
	assert.Equal(t, "10", appErr.Details["remaining_allowed"])
	assert.Len(t, f.pkRepo.Docs, 1, "rejected pickup is not stored")
}

func TestUpdate_ExcludesOwnQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 50)

	p := f.newPickup(40)
	require.NoError(t, f.pickups.Create(ctx, p))

	p.Lines[0].Quantity = types.NewQuantity(50)
	require.NoError(t, f.pickups.Update(ctx, p))
	assert.True(t, f.stats(t).RemainingAllowed.IsZero())
	assert.Equal(t, types.NewQuantity(50), f.pkRepo.Lines[p.ID][0].Quantity)
	assert.Equal(t, types.NewQuantity(50), f.stats(t).InTransit)

	p.Lines[0].Quantity = types.NewQuantity(51)
	assert.True(t, apperror.HasCode(f.pickups.Update(ctx, p), apperror.CodeQuantityExceedsRemaining))
	assert.Equal(t, types.NewQuantity(50), f.pkRepo.Lines[p.ID][0].Quantity)
}

func TestInward_ConvertsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)

	p := f.newPickup(30)
	require.NoError(t, f.pickups.Create(ctx, p))

	entry, err := f.pickups.Inward(ctx, p.ID, pickup.InwardInput{})
	require.NoError(t, err)
	assert.Equal(t, inward.KindWarehouse, entry.Kind)
	require.Len(t, entry.Lines, 1)
	assert.Equal(t, "135.00", entry.Lines[0].Amount.StringFixed(2), "rate comes from the PO line")
	assert.Equal(t, p.ID, *entry.SourcePickupID)

	st := f.stats(t)
	assert.True(t, st.InTransit.IsZero())
	assert.Equal(t, types.NewQuantity(30), st.AlreadyInwarded)
	assert.Equal(t, types.NewQuantity(70), st.RemainingAllowed)

	_, err = f.pickups.Inward(ctx, p.ID, pickup.InwardInput{})
	assert.True(t, apperror.HasCode(err, apperror.CodePickupInwarded))

	p.Lines[0].Quantity = types.NewQuantity(1)
	assert.True(t, apperror.HasCode(f.pickups.Update(ctx, p), apperror.CodePickupInwarded))
	assert.True(t, apperror.HasCode(f.pickups.Delete(ctx, p.ID), apperror.CodePickupInwarded))
}

func TestDeletingConvertedInward_ReturnsPickupToTransit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)

	p := f.newPickup(30)
	require.NoError(t, f.pickups.Create(ctx, p))
	entry, err := f.pickups.Inward(ctx, p.ID, pickup.InwardInput{})
	require.NoError(t, err)

	require.NoError(t, f.inwards.Delete(ctx, entry.ID))

	st := f.stats(t)
	assert.Equal(t, types.NewQuantity(30), st.InTransit)
	assert.True(t, st.AlreadyInwarded.IsZero())
	assert.False(t, f.pkRepo.Docs[p.ID].IsInwarded)
}

func TestDelete_FreesInTransit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)

	p := f.newPickup(10)
	require.NoError(t, f.pickups.Create(ctx, p))
	assert.True(t, f.stats(t).RemainingAllowed.IsZero())

	require.NoError(t, f.pickups.Delete(ctx, p.ID))
	assert.Equal(t, types.NewQuantity(10), f.stats(t).RemainingAllowed)
}

func TestCreate_UnknownPO(t *testing.T) {
	f := newFixture(t, 10)
	p := pickup.NewPickup(id.New(), f.warehouse)
	p.Lines = []pickup.Line{{POLineID: id.New(), Quantity: types.NewQuantity(1)}}

	err := f.pickups.Create(context.Background(), p)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDuplicateProductLines_NotOverCommitted(t *testing.T) {
	ctx := context.Background()
	h := documentstest.NewHarness()
	product, warehouse := id.New(), id.New()
	order, err := h.NewOrder(ctx, product, "SKU-D", 10, 10)
	require.NoError(t, err)
	first, second := order.Lines[0].LineID, order.Lines[1].LineID

	p := pickup.NewPickup(order.ID, warehouse)
	p.Lines = []pickup.Line{{POLineID: first, Quantity: types.NewQuantity(10)}}
	require.NoError(t, h.Pickups.Create(ctx, p))

	poID := order.ID
	e := inward.NewEntry(inward.KindWarehouse, warehouse)
	e.Lines = []inward.Line{{
		Line: documents.Line{ProductID: product, Quantity: types.NewQuantity(10), Rate: types.MustMoney("4.50")},
		POID: &poID,
	}}
	require.NoError(t, h.Inwards.Create(ctx, e))

	stats, err := h.Orders.LinesWithStats(ctx, order.Number)
	require.NoError(t, err)
	assert.True(t, reconciliation.RemainingByProduct(stats)[product].IsZero())
	for _, st := range stats {
		assert.False(t, st.IsOverdrawn(), "line %s", st.POLineID)
	}

	late := pickup.NewPickup(order.ID, warehouse)
	late.Lines = []pickup.Line{{POLineID: second, Quantity: types.NewQuantity(10)}}
	err = h.Pickups.Create(ctx, late)
	assert.True(t, apperror.HasCode(err, apperror.CodeQuantityExceedsRemaining), "got %v", err)
	assert.Len(t, h.PickupRepo.Docs, 1)
}
