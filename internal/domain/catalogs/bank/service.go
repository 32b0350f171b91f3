package bank

import (
	"tradedesk/internal/core/tx"
	"tradedesk/internal/domain"
)

// Service is the generic catalog workflow for banks.
type Service struct {
	*domain.CatalogService[*Bank]
}

// NewService creates a bank service.
func NewService(repo Repository, txm tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Bank]{
			Repo:       repo,
			TxManager:  txm,
			EntityName: "bank",
		}),
	}
}
