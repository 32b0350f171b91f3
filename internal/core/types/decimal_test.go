package types

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    Quantity
		wantErr bool
	}{
		{"10", NewQuantity(10), false},
		{"2.5", Quantity(25_000), false},
		{"-0.0001", Quantity(-1), false},
		{"+3.1415", Quantity(31_415), false},
		{".5", Quantity(5_000), false},
		{"1e2", NewQuantity(100), false},
		{"2.5E-3", Quantity(25), false},
		{"922337203685477.5807", Quantity(math.MaxInt64), false},
		{"", 0, true},
		{"abc", 0, true},
		{"+3.14159", 0, true},
		{"10.00009", 0, true},
		{"1e-5", 0, true},
		{"--5", 0, true},
		{"+-5", 0, true},
		{"1.-5", 0, true},
		{"1.", 0, true},
		{".", 0, true},
		{"-", 0, true},
		{"1 000", 0, true},
		{"2000000000000000", 0, true},
		{"922337203685477.5808", 0, true},
		{"1e30", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuantity(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuantity_Display(t *testing.T) {
	assert.Equal(t, "10", NewQuantity(10).Display())
	assert.Equal(t, "2.5", Quantity(25_000).Display())
	assert.Equal(t, "-1.25", Quantity(-12_500).Display())
	assert.Equal(t, "0", Quantity(0).Display())
	assert.Equal(t, "10.0000", NewQuantity(10).String())
	assert.Equal(t, "-0.0100", Quantity(-100).String())
}

func TestQuantity_JSON(t *testing.T) {
	var payload struct {
		Qty Quantity `json:"qty"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"qty": 12.75}`), &payload))
	assert.Equal(t, Quantity(127_500), payload.Qty)

	require.NoError(t, json.Unmarshal([]byte(`{"qty": "3"}`), &payload))
	assert.Equal(t, NewQuantity(3), payload.Qty)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"qty": 3}`, string(out))
}

func TestQuantity_Scan(t *testing.T) {
	var q Quantity
	require.NoError(t, q.Scan(int64(70_000)))
	assert.Equal(t, NewQuantity(7), q)

	require.NoError(t, q.Scan([]byte("5000")))
	assert.Equal(t, Quantity(5000), q)

	require.NoError(t, q.Scan(nil))
	assert.True(t, q.IsZero())

	assert.Error(t, q.Scan(3.5))
}

func TestLineAmount(t *testing.T) {
	amount := LineAmount(Quantity(25_000), MustMoney("12.34"))
	assert.Equal(t, "30.85", amount.StringFixed(2))

	assert.True(t, SumMoney(MustMoney("1.10"), MustMoney("2.20")).Equal(MustMoney("3.3")))
}
