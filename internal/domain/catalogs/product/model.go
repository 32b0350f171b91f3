// Package product provides the Product catalog. A product's code is its SKU.
package product

import (
	"context"
	"strings"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/entity"
	"tradedesk/internal/core/types"
)

// Product is a traded item.
type Product struct {
	entity.Catalog

	HSNCode     string      `db:"hsn_code" json:"hsn_code,omitempty"`
	Unit        string      `db:"unit" json:"unit"`
	DefaultRate types.Money `db:"default_rate" json:"default_rate"`
	Description *string     `db:"description" json:"description,omitempty"`
}

// NewProduct creates a product. The SKU is its catalog code.
func NewProduct(sku, name string) *Product {
	return &Product{
		Catalog: entity.NewCatalog(sku, name),
		Unit:    "pcs",
	}
}

// SKU is an alias for Code.
func (p *Product) SKU() string {
	return p.Code
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}
	p.Code = strings.TrimSpace(p.Code)
	if p.Code == "" {
		return apperror.NewValidation("sku is required").WithDetail("field", "code")
	}
	if p.DefaultRate.IsNegative() {
		return apperror.NewValidation("default rate must not be negative").WithDetail("field", "default_rate")
	}
	if p.Unit == "" {
		p.Unit = "pcs"
	}
	return nil
}
