package company

import "tradedesk/internal/domain"

// Repository defines persistence for companies.
type Repository interface {
	domain.CatalogRepository[*Company]
}
