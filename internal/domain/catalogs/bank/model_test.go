package bank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBank_Validate(t *testing.T) {
	ifsc := "HDFC0001234"
	badIFSC := "HDFC1234"
	swift := "hdfcinbb"

	b := NewBank("B-1", "HDFC Current", "50200012345678")
	b.IFSC = &ifsc
	b.SWIFT = &swift
	b.Currency = "usd"
	assert.NoError(t, b.Validate(context.Background()))
	assert.Equal(t, "USD", b.Currency)

	b.IFSC = &badIFSC
	assert.Error(t, b.Validate(context.Background()))

	noAccount := NewBank("B-2", "Empty", "")
	assert.Error(t, noAccount.Validate(context.Background()))
}
