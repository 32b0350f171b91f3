package product

import (
	"context"

	"tradedesk/internal/core/id"
	"tradedesk/internal/domain"
)

// Repository defines persistence for products.
type Repository interface {
	domain.CatalogRepository[*Product]

	// SKUs resolves product ids to SKUs; unknown ids are omitted.
	SKUs(ctx context.Context, ids []id.ID) (map[id.ID]string, error)
}
