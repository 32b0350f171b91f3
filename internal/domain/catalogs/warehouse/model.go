// Package warehouse provides the Warehouse catalog.
package warehouse

import (
	"context"

	"tradedesk/internal/core/entity"
)

// Warehouse is a stock location. Inactive warehouses keep their history but
// accept no new movements.
type Warehouse struct {
	entity.Catalog

	Location *string `db:"location" json:"location,omitempty"`
	IsActive bool    `db:"is_active" json:"is_active"`
}

// NewWarehouse creates an active warehouse.
func NewWarehouse(code, name string) *Warehouse {
	return &Warehouse{
		Catalog:  entity.NewCatalog(code, name),
		IsActive: true,
	}
}

// Validate implements entity.Validatable.
func (w *Warehouse) Validate(ctx context.Context) error {
	return w.Catalog.Validate(ctx)
}

// CanMoveStock reports whether inward and outward entries may reference w.
func (w *Warehouse) CanMoveStock() bool {
	return w.IsActive && !w.DeletionMark
}
