package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/tx"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain"
	"tradedesk/internal/domain/audit"
)

type memRepo struct {
	records map[id.ID]*Record
	entries map[id.ID][]Entry
	extras  map[id.ID][]Extra
	totals  map[id.ID]types.Money
	locked  []id.ID
}

func newMemRepo() *memRepo {
	return &memRepo{
		records: map[id.ID]*Record{},
		entries: map[id.ID][]Entry{},
		extras:  map[id.ID][]Extra{},
		totals:  map[id.ID]types.Money{},
	}
}

func (m *memRepo) Create(ctx context.Context, r *Record) error {
	for _, existing := range m.records {
		if existing.PIID == r.PIID {
			return apperror.NewDuplicate("payment", "pi_id", r.PIID.String())
		}
	}
	cp := *r
	m.records[r.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, recordID id.ID) (*Record, error) {
	r, ok := m.records[recordID]
	if !ok {
		return nil, apperror.NewNotFound("payment", recordID.String())
	}
	cp := *r
	return &cp, nil
}

func (m *memRepo) GetByPIID(ctx context.Context, piID id.ID) (*Record, error) {
	for _, r := range m.records {
		if r.PIID == piID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("payment", piID.String())
}

func (m *memRepo) GetForUpdate(ctx context.Context, recordID id.ID) (*Record, error) {
	m.locked = append(m.locked, recordID)
	return m.GetByID(ctx, recordID)
}

func (m *memRepo) Update(ctx context.Context, r *Record) error {
	stored, ok := m.records[r.ID]
	if !ok {
		return apperror.NewNotFound("payment", r.ID.String())
	}
	if stored.Version != r.Version {
		return apperror.NewConcurrentModification("payment", r.ID.String())
	}
	cp := *r
	cp.Entries, cp.Extras = nil, nil
	cp.Version++
	m.records[r.ID] = &cp
	return nil
}

func (m *memRepo) Delete(ctx context.Context, recordID id.ID) error {
	delete(m.records, recordID)
	delete(m.entries, recordID)
	delete(m.extras, recordID)
	return nil
}

func (m *memRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Record], error) {
	var res domain.ListResult[*Record]
	for _, r := range m.records {
		cp := *r
		res.Items = append(res.Items, &cp)
	}
	res.TotalCount = int64(len(res.Items))
	return res, nil
}

func (m *memRepo) GetEntries(ctx context.Context, recordID id.ID) ([]Entry, error) {
	return append([]Entry(nil), m.entries[recordID]...), nil
}

func (m *memRepo) AddEntry(ctx context.Context, e *Entry) error {
	m.entries[e.RecordID] = append(m.entries[e.RecordID], *e)
	return nil
}

func (m *memRepo) DeleteEntry(ctx context.Context, recordID, entryID id.ID) error {
	list := m.entries[recordID]
	for i, e := range list {
		if e.ID == entryID {
			m.entries[recordID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFound("payment entry", entryID.String())
}

func (m *memRepo) GetExtras(ctx context.Context, recordID id.ID) ([]Extra, error) {
	return append([]Extra(nil), m.extras[recordID]...), nil
}

func (m *memRepo) AddExtra(ctx context.Context, x *Extra) error {
	m.extras[x.RecordID] = append(m.extras[x.RecordID], *x)
	return nil
}

func (m *memRepo) DeleteExtra(ctx context.Context, recordID, extraID id.ID) error {
	list := m.extras[recordID]
	for i, x := range list {
		if x.ID == extraID {
			m.extras[recordID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFound("extra payment", extraID.String())
}

func (m *memRepo) InvoiceTotal(ctx context.Context, piID id.ID) (types.Money, error) {
	t, ok := m.totals[piID]
	if !ok {
		return types.Zero(), apperror.NewNotFound("purchase_invoice", piID.String())
	}
	return t, nil
}

func money(s string) types.Money { return types.MustMoney(s) }

func newService(t *testing.T, total string) (*Service, *memRepo, View) {
	t.Helper()
	repo := newMemRepo()
	piID := id.New()
	repo.totals[piID] = money(total)

	svc := NewService(repo, &tx.MockManager{}, audit.Nop{})
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	v, err := svc.Create(context.Background(), CreateInput{PIID: piID, AdvancePayment: money("200")})
	require.NoError(t, err)
	return svc, repo, v
}

func TestPaymentLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, repo, v := newService(t, "1000")
	assert.True(t, v.TotalAmount.Equal(money("1000")), "total comes from the PI")
	assert.True(t, v.RemainingPayment.Equal(money("800")))

	v, err := svc.AddEntry(ctx, v.ID, Entry{ReceivedAmount: money("300")})
	require.NoError(t, err)
	assert.True(t, v.RemainingPayment.Equal(money("500")))
	assert.False(t, v.IsFullyPaid)

	v, err = svc.AddEntry(ctx, v.ID, Entry{ReceivedAmount: money("500")})
	require.NoError(t, err)
	assert.True(t, v.RemainingPayment.IsZero())
	assert.True(t, v.IsFullyPaid)
	assert.True(t, v.TotalReceived.Equal(money("1000")))

	_, err = svc.AddEntry(ctx, v.ID, Entry{ReceivedAmount: money("1")})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeAlreadyFullyPaid, appErr.Code)
	assert.Equal(t, "already fully paid", appErr.Message)

	assert.Contains(t, repo.locked, v.ID, "writes lock the record row")
}

func TestDeleteEntry_RaisesRemaining(t *testing.T) {
	ctx := context.Background()
	svc, _, v := newService(t, "1000")

	v, err := svc.AddEntry(ctx, v.ID, Entry{ReceivedAmount: money("300")})
	require.NoError(t, err)
	before := v.Summary

	v, err = svc.DeleteEntry(ctx, v.ID, v.Entries[0].ID)
	require.NoError(t, err)
	assert.True(t, v.RemainingPayment.Equal(before.RemainingPayment.Add(money("300"))))
	assert.True(t, v.TotalReceived.Equal(before.TotalReceived.Sub(money("300"))))

	_, err = svc.DeleteEntry(ctx, v.ID, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestExtras_ReduceRemaining(t *testing.T) {
	ctx := context.Background()
	svc, _, v := newService(t, "1000")

	v, err := svc.AddExtra(ctx, v.ID, Extra{Description: "bank charges", Amount: money("50")})
	require.NoError(t, err)
	assert.True(t, v.ExtraPaymentsTotal.Equal(money("50")))
	assert.True(t, v.RemainingPayment.Equal(money("750")))

	v, err = svc.DeleteExtra(ctx, v.ID, v.Extras[0].ID)
	require.NoError(t, err)
	assert.True(t, v.RemainingPayment.Equal(money("800")))
}

func TestCloseShortAndReopen(t *testing.T) {
	ctx := context.Background()
	svc, _, v := newService(t, "1000")

	_, err := svc.CloseShort(ctx, v.ID, "  ")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	v, err = svc.CloseShort(ctx, v.ID, "buyer disputed quality")
	require.NoError(t, err)
	assert.True(t, v.ShortPaymentStatus)
	assert.False(t, v.IsFullyPaid, "closed records are never fully paid")
	require.NotNil(t, v.ShortPaymentClosedAt)

	_, err = svc.AddEntry(ctx, v.ID, Entry{ReceivedAmount: money("10")})
	assert.True(t, apperror.HasCode(err, apperror.CodePaymentClosed))

	v, err = svc.Reopen(ctx, v.ID)
	require.NoError(t, err)
	assert.False(t, v.ShortPaymentStatus)
	require.NotNil(t, v.ShortPaymentNote)
	assert.Equal(t, "buyer disputed quality", *v.ShortPaymentNote, "note is kept after reopen")
	require.NotNil(t, v.ReopenedAt)

	_, err = svc.Reopen(ctx, v.ID)
	assert.Error(t, err)

	_, err = svc.AddEntry(ctx, v.ID, Entry{ReceivedAmount: money("10")})
	assert.NoError(t, err)
}

func TestUpdate_RefreshTotal(t *testing.T) {
	ctx := context.Background()
	svc, repo, v := newService(t, "1000")

	repo.totals[v.PIID] = money("1200")
	v, err := svc.Update(ctx, v.ID, UpdateInput{RefreshTotal: true})
	require.NoError(t, err)
	assert.True(t, v.TotalAmount.Equal(money("1200")))

	negative := money("-1")
	_, err = svc.Update(ctx, v.ID, UpdateInput{AdvancePayment: &negative})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestAddEntry_RejectsNonPositive(t *testing.T) {
	svc, _, v := newService(t, "1000")
	_, err := svc.AddEntry(context.Background(), v.ID, Entry{ReceivedAmount: money("0")})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
