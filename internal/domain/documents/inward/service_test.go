package inward_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain/documents"
	"tradedesk/internal/domain/documents/documentstest"
	"tradedesk/internal/domain/documents/inward"
	"tradedesk/internal/domain/documents/pickup"
	"tradedesk/internal/domain/documents/purchase_order"
	"tradedesk/internal/domain/reconciliation"
	"tradedesk/pkg/logger"
)

type fixture struct {
	*documentstest.Harness
	po        *purchase_order.PurchaseOrder
	product   id.ID
	warehouse id.ID
}

func newFixture(t *testing.T, poQty int64) *fixture {
	t.Helper()

	h := documentstest.NewHarness()
	product := id.New()
	order, err := h.NewOrder(context.Background(), product, "SKU-IN", poQty)
	require.NoError(t, err)

	return &fixture{Harness: h, po: order, product: product, warehouse: id.New()}
}

func (f *fixture) warehouseEntry(qty int64) *inward.Entry {
	poID := f.po.ID
	e := inward.NewEntry(inward.KindWarehouse, f.warehouse)
	e.Lines = []inward.Line{{
		Line: documents.Line{ProductID: f.product, Quantity: types.NewQuantity(qty), Rate: types.MustMoney("4.50")},
		POID: &poID,
	}}
	return e
}

func (f *fixture) directEntry(qty int64) *inward.Entry {
	e := inward.NewEntry(inward.KindDirect, f.warehouse)
	e.Lines = []inward.Line{{
		Line: documents.Line{ProductID: f.product, SKU: "SKU-IN", Quantity: types.NewQuantity(qty), Rate: types.MustMoney("2")},
	}}
	return e
}

func (f *fixture) stats(t *testing.T) reconciliation.LineStats {
	t.Helper()
	stats, err := f.Orders.LinesWithStats(context.Background(), f.po.Number)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	return stats[0]
}

func observed(ctx context.Context) (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return logger.WithLogger(ctx, &logger.Logger{SugaredLogger: zap.New(core).Sugar()}), logs
}

func TestValidate_KindRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)

	noPO := f.warehouseEntry(1)
	noPO.Lines[0].POID = nil
	assert.True(t, apperror.HasCode(noPO.Validate(ctx), apperror.CodeValidation))

	withPO := f.directEntry(1)
	poID := f.po.ID
	withPO.Lines[0].POID = &poID
	assert.True(t, apperror.HasCode(withPO.Validate(ctx), apperror.CodeValidation))

	unknown := f.directEntry(1)
	unknown.Kind = "transfer"
	assert.True(t, apperror.HasCode(unknown.Validate(ctx), apperror.CodeValidation))

	noWarehouse := inward.NewEntry(inward.KindDirect, id.Nil())
	noWarehouse.Lines = f.directEntry(1).Lines
	assert.Error(t, noWarehouse.Validate(ctx))
}

func TestCreate_WarehouseCheckedAgainstPO(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 50)

	e := f.warehouseEntry(50)
	require.NoError(t, f.Inwards.Create(ctx, e))
	assert.Equal(t, "SKU-IN", e.Lines[0].SKU, "sku is filled from the PO line")
	assert.Equal(t, 1, f.PORepo.Locks)

	err := f.Inwards.Create(ctx, f.warehouseEntry(1))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeQuantityExceedsRemaining, appErr.Code)
	assert.Equal(t, f.po.Number, appErr.Details["po_number"])
	assert.Len(t, f.InwardRepo.Docs, 1)
}

func TestCreate_DirectIsNotCheckedAgainstPO(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)

	require.NoError(t, f.Inwards.Create(ctx, f.directEntry(500)))
	assert.Zero(t, f.PORepo.Locks)
	assert.Equal(t, types.NewQuantity(5), f.stats(t).RemainingAllowed, "direct entries do not count against the PO")
}

func TestCreate_UnknownPO(t *testing.T) {
	f := newFixture(t, 5)
	e := f.warehouseEntry(1)
	other := id.New()
	e.Lines[0].POID = &other

	assert.True(t, apperror.IsNotFound(f.Inwards.Create(context.Background(), e)))
}

func TestUpdate_ExcludesOwnQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)

	e := f.warehouseEntry(60)
	require.NoError(t, f.Inwards.Create(ctx, e))

	e.Lines[0].Quantity = types.NewQuantity(100)
	require.NoError(t, f.Inwards.Update(ctx, e))

	stored, err := f.Inwards.GetByID(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, types.NewQuantity(100), stored.Lines[0].Quantity)
	assert.Equal(t, "450.00", stored.TotalAmount.StringFixed(2))
	assert.True(t, f.stats(t).RemainingAllowed.IsZero())

	e.Lines[0].Quantity = types.NewQuantity(101)
	assert.True(t, apperror.HasCode(f.Inwards.Update(ctx, e), apperror.CodeQuantityExceedsRemaining))

	stored, err = f.Inwards.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(100), stored.Lines[0].Quantity)
}

func TestUpdate_KeepsNumber(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)

	e := f.directEntry(1)
	require.NoError(t, f.Inwards.Create(ctx, e))

	e.Number = "IN-OTHER"
	assert.True(t, apperror.HasCode(f.Inwards.Update(ctx, e), apperror.CodeValidation))
}

func TestUpdate_ConvertedPickupStaysOnItsPO(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)

	p := pickup.NewPickup(f.po.ID, f.warehouse)
	p.Lines = []pickup.Line{{POLineID: f.po.Lines[0].LineID, Quantity: types.NewQuantity(30)}}
	require.NoError(t, f.Pickups.Create(ctx, p))
	entry, err := f.Pickups.Inward(ctx, p.ID, pickup.InwardInput{})
	require.NoError(t, err)

	toDirect, err := f.Inwards.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	toDirect.Kind = inward.KindDirect
	for i := range toDirect.Lines {
		toDirect.Lines[i].POID = nil
	}
	assert.True(t, apperror.HasCode(f.Inwards.Update(ctx, toDirect), apperror.CodeValidation))

	other, err := f.NewOrder(ctx, f.product, "SKU-IN", 100)
	require.NoError(t, err)
	moved, err := f.Inwards.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	otherID := other.ID
	moved.Lines[0].POID = &otherID
	assert.True(t, apperror.HasCode(f.Inwards.Update(ctx, moved), apperror.CodeValidation))

	st := f.stats(t)
	assert.Equal(t, types.NewQuantity(30), st.AlreadyInwarded)
	assert.True(t, st.InTransit.IsZero())
	assert.Equal(t, types.NewQuantity(70), st.RemainingAllowed)

	late := pickup.NewPickup(f.po.ID, f.warehouse)
	late.Lines = []pickup.Line{{POLineID: f.po.Lines[0].LineID, Quantity: types.NewQuantity(100)}}
	assert.True(t, apperror.HasCode(f.Pickups.Create(ctx, late), apperror.CodeQuantityExceedsRemaining))

	resized, err := f.Inwards.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	resized.Lines[0].Quantity = types.NewQuantity(25)
	require.NoError(t, f.Inwards.Update(ctx, resized), "quantity may change while the PO stays")
	assert.Equal(t, p.ID, *f.InwardRepo.Docs[entry.ID].SourcePickupID)
}

func TestDelete_WarnsOnNegativeStock(t *testing.T) {
	ctx, logs := observed(context.Background())
	f := newFixture(t, 100)

	e := f.warehouseEntry(50)
	require.NoError(t, f.Inwards.Create(ctx, e))
	f.Stock.Exported[f.product] = types.NewQuantity(40)

	require.NoError(t, f.Inwards.Delete(ctx, e.ID))

	warned := logs.FilterMessage("negative stock after inward change").All()
	require.Len(t, warned, 1)
	assert.Equal(t, "-40", warned[0].ContextMap()["available"])
	assert.Contains(t, f.Tx.Locked, "stock:"+f.warehouse.String()+":"+f.product.String())
	assert.Empty(t, f.InwardRepo.Docs)
}

func TestDelete_NoWarningWhileStockCovers(t *testing.T) {
	ctx, logs := observed(context.Background())
	f := newFixture(t, 100)

	keep := f.warehouseEntry(30)
	require.NoError(t, f.Inwards.Create(ctx, keep))
	gone := f.warehouseEntry(20)
	require.NoError(t, f.Inwards.Create(ctx, gone))
	f.Stock.Exported[f.product] = types.NewQuantity(30)

	require.NoError(t, f.Inwards.Delete(ctx, gone.ID))
	assert.Zero(t, logs.FilterMessage("negative stock after inward change").Len())
}

func TestDelete_ConvertedPickupReturnsToTransit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)

	p := pickup.NewPickup(f.po.ID, f.warehouse)
	p.Lines = []pickup.Line{{POLineID: f.po.Lines[0].LineID, Quantity: types.NewQuantity(30)}}
	require.NoError(t, f.Pickups.Create(ctx, p))
	entry, err := f.Pickups.Inward(ctx, p.ID, pickup.InwardInput{})
	require.NoError(t, err)

	require.NoError(t, f.Inwards.Delete(ctx, entry.ID))

	assert.False(t, f.PickupRepo.Docs[p.ID].IsInwarded)
	assert.Nil(t, f.PickupRepo.Docs[p.ID].InwardID)
	assert.Equal(t, types.NewQuantity(30), f.stats(t).InTransit)
}
