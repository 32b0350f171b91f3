package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "tradedesk/internal/core/numerator"
)

type mockRow struct {
	val int64
}

func (m *mockRow) Scan(dest ...any) error {
	if ptr, ok := dest[0].(*int64); ok {
		*ptr = m.val
	}
	return nil
}

// mockQuerier emulates sys_sequences for a single key.
type mockQuerier struct {
	mu      sync.Mutex
	current int64
	calls   int
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.current += args[1].(int64)
	return &mockRow{val: m.current}
}

var period = time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

func TestGetNextNumber_Strict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	cfg := corenumerator.DefaultConfig("PO")

	num, err := svc.GetNextNumber(context.Background(), cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "PO-2026-00001", num)

	num, err = svc.GetNextNumber(context.Background(), cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "PO-2026-00002", num)
	assert.Equal(t, 2, q.calls)
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	cfg := corenumerator.DefaultConfig("PU")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}
	ctx := context.Background()

	num, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "PU-2026-00001", num)
	assert.Equal(t, int64(10), q.current)

	for i := 0; i < 9; i++ {
		_, err = svc.GetNextNumber(ctx, cfg, opts, period)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, q.calls, "range of 10 served from memory")

	num, err = svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "PU-2026-00011", num)
	assert.Equal(t, int64(20), q.current)
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name string
		cfg  corenumerator.Config
		num  int64
		want string
	}{
		{"default", corenumerator.DefaultConfig("PI"), 7, "PI-2026-00007"},
		{"no year", corenumerator.Config{Prefix: "EXP", PadWidth: 3}, 12, "EXP-012"},
		{"zero pad width", corenumerator.Config{Prefix: "IN"}, 3, "IN-00003"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatNumber(tt.cfg, period, tt.num))
		})
	}
}

func TestBuildKey(t *testing.T) {
	assert.Equal(t, "PO_2026", buildKey(corenumerator.DefaultConfig("PO"), period))
	assert.Equal(t, "PO_2026_03", buildKey(corenumerator.Config{Prefix: "PO", ResetPeriod: "month"}, period))
	assert.Equal(t, "PO", buildKey(corenumerator.Config{Prefix: "PO", ResetPeriod: "never"}, period))
}
