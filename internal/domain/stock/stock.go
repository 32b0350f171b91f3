// Package stock reads warehouse balances. Balances are never stored: they are
// summed from inward and outward lines on every read.
package stock

import (
	"context"

	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain/reconciliation"
	"tradedesk/pkg/logger"
)

// Balance is the stock of one product in one warehouse.
type Balance struct {
	WarehouseID   id.ID          `db:"warehouse_id" json:"warehouse_id"`
	WarehouseCode string         `db:"warehouse_code" json:"warehouse_code"`
	ProductID     id.ID          `db:"product_id" json:"product_id"`
	SKU           string         `db:"sku" json:"sku"`
	Inward        types.Quantity `db:"inward" json:"inward"`
	Outward       types.Quantity `db:"outward" json:"outward"`
	Available     types.Quantity `db:"available" json:"available"`
}

// Filter narrows AvailableStock. Nil ids mean all.
type Filter struct {
	WarehouseID  *id.ID
	ProductID    *id.ID
	OnlyNegative bool
}

// Repository sums movements.
type Repository interface {
	// Available returns inward minus counted outward per product in one
	// warehouse. Lines of excludeOutwardID are left out.
	Available(ctx context.Context, warehouseID id.ID, productIDs []id.ID, excludeOutwardID *id.ID) (map[id.ID]types.Quantity, error)
	Balances(ctx context.Context, filter Filter) ([]Balance, error)
}

type Service struct {
	repo Repository
}

// NewService creates a stock service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AvailableQuantity returns the available quantity of a product in a
// warehouse. A missing id yields zero.
func (s *Service) AvailableQuantity(ctx context.Context, productID, warehouseID *id.ID) (types.Quantity, error) {
	if productID == nil || warehouseID == nil || id.IsNil(*productID) || id.IsNil(*warehouseID) {
		return 0, nil
	}
	avail, err := s.repo.Available(ctx, *warehouseID, []id.ID{*productID}, nil)
	if err != nil {
		return 0, err
	}
	q := avail[*productID]
	if q.IsNegative() {
		logger.Warn(ctx, "negative stock", "warehouse_id", *warehouseID, "product_id", *productID, "available", q.Display())
	}
	return q, nil
}

// AvailableStock lists balances matching the filter.
func (s *Service) AvailableStock(ctx context.Context, filter Filter) ([]Balance, error) {
	balances, err := s.repo.Balances(ctx, filter)
	if err != nil {
		return nil, err
	}
	WarnNegative(ctx, balances)
	return balances, nil
}

// Available returns per-product availability for a warehouse. Callers that
// gate writes must hold the stock locks of every key before calling it.
func (s *Service) Available(ctx context.Context, warehouseID id.ID, productIDs []id.ID, excludeOutwardID *id.ID) (map[id.ID]types.Quantity, error) {
	return s.repo.Available(ctx, warehouseID, productIDs, excludeOutwardID)
}

// LockKeys returns the advisory lock names for the pairs. The locker sorts them.
func LockKeys(warehouseID id.ID, productIDs []id.ID) []string {
	keys := make([]string, len(productIDs))
	for i, p := range productIDs {
		keys[i] = reconciliation.StockKey{WarehouseID: warehouseID, ProductID: p}.LockKey()
	}
	return keys
}

// WarnNegative logs every negative balance as a data-integrity event.
func WarnNegative(ctx context.Context, balances []Balance) int {
	n := 0
	for _, b := range balances {
		if b.Available.IsNegative() {
			n++
			logger.Warn(ctx, "negative stock",
				"warehouse_id", b.WarehouseID,
				"product_id", b.ProductID,
				"sku", b.SKU,
				"available", b.Available.Display())
		}
	}
	return n
}
