package product

import (
	"context"

	"tradedesk/internal/core/id"
	"tradedesk/internal/core/tx"
	"tradedesk/internal/domain"
)

// Service provides business logic for products.
type Service struct {
	*domain.CatalogService[*Product]
	repo Repository
}

// NewService creates a product service.
func NewService(repo Repository, txm tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
			Repo:       repo,
			TxManager:  txm,
			EntityName: "product",
		}),
		repo: repo,
	}
}

// SKUs resolves product ids to SKUs for error messages and exports.
func (s *Service) SKUs(ctx context.Context, ids []id.ID) (map[id.ID]string, error) {
	if len(ids) == 0 {
		return map[id.ID]string{}, nil
	}
	return s.repo.SKUs(ctx, ids)
}
