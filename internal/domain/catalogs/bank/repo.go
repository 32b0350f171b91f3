package bank

import "tradedesk/internal/domain"

// Repository defines persistence for banks.
type Repository interface {
	domain.CatalogRepository[*Bank]
}
