package outward

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/numerator"
	"tradedesk/internal/core/tx"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain/audit"
	"tradedesk/internal/domain/documents"
	"tradedesk/internal/domain/domaintest"
)

type memRepo struct {
	*domaintest.DocStore[*Entry]
	lines map[id.ID][]Line
}

func (r *memRepo) GetLines(ctx context.Context, docID id.ID) ([]Line, error) {
	return domaintest.CloneLines(r.lines[docID]), nil
}

func (r *memRepo) SaveLines(ctx context.Context, docID id.ID, lines []Line) error {
	r.lines[docID] = append([]Line(nil), lines...)
	return nil
}

func (r *memRepo) Delete(ctx context.Context, docID id.ID) error {
	delete(r.lines, docID)
	return r.DocStore.Delete(ctx, docID)
}

// memStock computes availability from a fixed inward total and the stored
// outward lines that count against stock.
type memStock struct {
	inward map[id.ID]types.Quantity
	repo   *memRepo
}

func (s *memStock) Available(ctx context.Context, warehouseID id.ID, productIDs []id.ID, exclude *id.ID) (map[id.ID]types.Quantity, error) {
	out := make(map[id.ID]types.Quantity, len(productIDs))
	for _, p := range productIDs {
		out[p] = s.inward[p]
	}
	for docID, e := range s.repo.Docs {
		if !e.CountsAgainstStock() || *e.WarehouseID != warehouseID || (exclude != nil && *exclude == docID) {
			continue
		}
		for _, l := range s.repo.lines[docID] {
			if _, ok := out[l.ProductID]; ok {
				out[l.ProductID] -= l.Quantity
			}
		}
	}
	return out, nil
}

type fixture struct {
	svc       *Service
	txm       *tx.MockManager
	repo      *memRepo
	warehouse id.ID
	product   id.ID
	pi        id.ID
}

func newFixture(inward int64) *fixture {
	repo := &memRepo{DocStore: domaintest.NewDocStore[*Entry](), lines: map[id.ID][]Line{}}
	product := id.New()
	stock := &memStock{inward: map[id.ID]types.Quantity{product: types.NewQuantity(inward)}, repo: repo}
	txm := &tx.MockManager{}

	return &fixture{
		svc:       NewService(repo, stock, numerator.NewMockGenerator(), txm, audit.Nop{}),
		txm:       txm,
		repo:      repo,
		warehouse: id.New(),
		product:   product,
		pi:        id.New(),
	}
}

func (f *fixture) entry(kind Kind, qty int64) *Entry {
	e := NewEntry(kind)
	wh := f.warehouse
	e.WarehouseID = &wh
	if kind == KindExportInvoice {
		pi := f.pi
		e.PIID = &pi
	}
	e.Lines = []Line{{Line: documents.Line{ProductID: f.product, SKU: "X", Quantity: types.NewQuantity(qty), Rate: types.MustMoney("10")}}}
	return e
}

func TestExportInvoice_GatedByStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(50)

	require.NoError(t, f.svc.Create(ctx, f.entry(KindExportInvoice, 20)))
	require.NoError(t, f.svc.Create(ctx, f.entry(KindExportInvoice, 20)))

	err := f.svc.Create(ctx, f.entry(KindExportInvoice, 15))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, "Insufficient Stock: Available 10, Required 15", appErr.Message)
	assert.Len(t, f.repo.Docs, 2)

	require.NoError(t, f.svc.Create(ctx, f.entry(KindExportInvoice, 10)), "exactly available is accepted")
	assert.Contains(t, f.txm.Locked, "stock:"+f.warehouse.String()+":"+f.product.String())
}

func TestDispatchPlan_NotGatedNorCounted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(5)

	require.NoError(t, f.svc.Create(ctx, f.entry(KindDispatchPlan, 100)))
	assert.Empty(t, f.txm.Locked)
	require.NoError(t, f.svc.Create(ctx, f.entry(KindExportInvoice, 5)))
}

func TestDirectExport_CountsButIsNotGated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(5)

	require.NoError(t, f.svc.Create(ctx, f.entry(KindDirectExport, 4)))

	err := f.svc.Create(ctx, f.entry(KindExportInvoice, 2))
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	assert.Contains(t, err.Error(), "Available 1, Required 2")
}

func TestUpdate_ExcludesOwnLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture(30)

	e := f.entry(KindExportInvoice, 20)
	require.NoError(t, f.svc.Create(ctx, e))

	e.Lines[0].Quantity = types.NewQuantity(30)
	require.NoError(t, f.svc.Update(ctx, e))

	stored, err := f.svc.GetByID(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, types.NewQuantity(30), stored.Lines[0].Quantity)
	assert.Equal(t, "300.00", stored.TotalAmount.StringFixed(2))

	e.Lines[0].Quantity = types.NewQuantity(31)
	assert.True(t, apperror.HasCode(f.svc.Update(ctx, e), apperror.CodeInsufficientStock))

	stored, err = f.svc.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(30), stored.Lines[0].Quantity, "rejected update leaves the entry as it was")
}

func TestUpdate_DoesNotShareStateWithCaller(t *testing.T) {
	ctx := context.Background()
	f := newFixture(30)

	e := f.entry(KindExportInvoice, 10)
	require.NoError(t, f.svc.Create(ctx, e))
	e.Lines[0].Quantity = types.NewQuantity(25)

	stored, err := f.svc.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(10), stored.Lines[0].Quantity)
}

func TestDelete_FreesStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(10)

	e := f.entry(KindExportInvoice, 10)
	require.NoError(t, f.svc.Create(ctx, e))
	assert.Error(t, f.svc.Create(ctx, f.entry(KindExportInvoice, 1)))

	require.NoError(t, f.svc.Delete(ctx, e.ID))
	assert.NoError(t, f.svc.Create(ctx, f.entry(KindExportInvoice, 10)))
}

func TestValidate_KindRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(10)

	noPI := f.entry(KindExportInvoice, 1)
	noPI.PIID = nil
	assert.True(t, apperror.HasCode(noPI.Validate(ctx), apperror.CodeValidation))

	direct := f.entry(KindDirectExport, 1)
	pi := id.New()
	direct.PIID = &pi
	assert.Error(t, direct.Validate(ctx))

	heavy := f.entry(KindDispatchPlan, 1)
	heavy.Lines[0].NetWeight = types.MustMoney("10")
	heavy.Lines[0].GrossWeight = types.MustMoney("9")
	assert.Error(t, heavy.Validate(ctx))
}
