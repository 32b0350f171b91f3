package entity

import (
	"context"
	"strings"

	"tradedesk/internal/core/apperror"
)

// Catalog is the base type for master data: companies, products, warehouses, banks.
type Catalog struct {
	BaseEntity

	// Code is unique per catalog. For products it is the SKU.
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// NewCatalog creates a catalog base with code and name.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		BaseEntity: NewBaseEntity(),
		Code:       strings.TrimSpace(code),
		Name:       strings.TrimSpace(name),
	}
}

// Validate implements Validatable.
func (c *Catalog) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// CatalogBase exposes the embedded Catalog through any catalog record.
func (c *Catalog) CatalogBase() *Catalog {
	return c
}

// CatalogRecord is implemented by every catalog type via its embedded Catalog.
type CatalogRecord interface {
	Validatable
	CatalogBase() *Catalog
}
