package company

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"tradedesk/internal/core/apperror"
)

func strPtr(s string) *string { return &s }

func TestCompany_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Company)
		wantErr bool
	}{
		{"valid buyer", func(c *Company) {}, false},
		{"empty kind defaults", func(c *Company) { c.Kind = "" }, false},
		{"unknown kind", func(c *Company) { c.Kind = "partner" }, true},
		{"missing name", func(c *Company) { c.Name = " " }, true},
		{"bad email", func(c *Company) { c.Email = strPtr("not-an-email") }, true},
		{"good email", func(c *Company) { c.Email = strPtr("ops@example.com") }, false},
		{"indian gstin", func(c *Company) {
			c.Country = "IN"
			c.TaxID = strPtr("27AAPFU0939F1ZV")
		}, false},
		{"bad indian gstin", func(c *Company) {
			c.Country = "IN"
			c.TaxID = strPtr("12345")
		}, true},
		{"foreign tax id unchecked", func(c *Company) {
			c.Country = "DE"
			c.TaxID = strPtr("DE123")
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCompany("C-1", "Acme Exports", KindBuyer)
			tt.mutate(c)

			err := c.Validate(context.Background())
			if tt.wantErr {
				assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCompany_DefaultKind(t *testing.T) {
	c := NewCompany("C-2", "Consignee Ltd", "")
	assert.NoError(t, c.Validate(context.Background()))
	assert.Equal(t, KindOther, c.Kind)
}
