package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain/stock"
	"tradedesk/pkg/logger"
)

type fakeStock struct {
	filter   stock.Filter
	balances []stock.Balance
	err      error
}

func (f *fakeStock) AvailableStock(_ context.Context, filter stock.Filter) ([]stock.Balance, error) {
	f.filter = filter
	return f.balances, f.err
}

type fakeOrders struct{ overdrawn int }

func (f fakeOrders) ScanOverdrawn(context.Context, int) (int, error) { return f.overdrawn, nil }

type fakeCleaner struct{ n int64 }

func (f fakeCleaner) CleanupExpired(context.Context) (int64, error) { return f.n, nil }
func (f fakeCleaner) CleanupTokens(context.Context) (int64, error)  { return f.n, nil }

func TestScanIntegrity(t *testing.T) {
	st := &fakeStock{balances: []stock.Balance{
		{WarehouseID: id.New(), ProductID: id.New(), SKU: "A-1", Available: types.NewQuantity(-3)},
	}}
	jobs := &Jobs{Stock: st, Orders: fakeOrders{overdrawn: 2}}

	report, err := jobs.ScanIntegrity(context.Background())
	require.NoError(t, err)
	assert.True(t, st.filter.OnlyNegative)
	assert.Equal(t, IntegrityReport{NegativeStock: 1, OverdrawnLines: 2}, report)
}

func TestScanIntegrity_StockError(t *testing.T) {
	jobs := &Jobs{Stock: &fakeStock{err: errors.New("boom")}, Orders: fakeOrders{}}

	_, err := jobs.ScanIntegrity(context.Background())
	assert.ErrorContains(t, err, "scan stock")
}

func TestNewScheduler(t *testing.T) {
	jobs := &Jobs{Stock: &fakeStock{}, Orders: fakeOrders{}, Idempotency: fakeCleaner{}, Tokens: fakeCleaner{}}

	c, err := NewScheduler(context.Background(), logger.Nop(), jobs, Schedules{
		Integrity:          "0 */6 * * *",
		IdempotencyCleanup: "*/30 * * * *",
	})
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 2)

	_, err = NewScheduler(context.Background(), logger.Nop(), jobs, Schedules{Integrity: "every day"})
	assert.ErrorContains(t, err, "integrity_scan")
}
