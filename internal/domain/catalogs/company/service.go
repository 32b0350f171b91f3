package company

import (
	"context"
	"fmt"
	"time"

	"tradedesk/internal/core/numerator"
	"tradedesk/internal/core/tx"
	"tradedesk/internal/domain"
)

// Service adds code generation on top of the generic catalog workflow.
type Service struct {
	*domain.CatalogService[*Company]
	numerator numerator.Generator
}

// NewService creates a company service. Codes left empty are numbered CMP-.
func NewService(repo Repository, txm tx.Manager, num numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Company]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "company",
	})

	svc := &Service{CatalogService: base, numerator: num}
	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, c *Company) error {
	if c.Code != "" {
		return nil
	}
	code, err := s.numerator.GetNextNumber(ctx, numerator.Config{Prefix: "CMP", PadWidth: 5, ResetPeriod: "never"}, nil, time.Now())
	if err != nil {
		return fmt.Errorf("generate company code: %w", err)
	}
	c.Code = code
	return nil
}
