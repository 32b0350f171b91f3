package warehouse

import (
	"context"
	"fmt"
	"time"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/numerator"
	"tradedesk/internal/core/tx"
	"tradedesk/internal/domain"
)

// Service provides business logic for warehouses.
type Service struct {
	*domain.CatalogService[*Warehouse]
	numerator numerator.Generator
}

// NewService creates a warehouse service. Codes left empty are numbered WH-.
func NewService(repo Repository, txm tx.Manager, num numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Warehouse]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "warehouse",
	})

	svc := &Service{CatalogService: base, numerator: num}
	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, w *Warehouse) error {
	if w.Code != "" {
		return nil
	}
	code, err := s.numerator.GetNextNumber(ctx, numerator.Config{Prefix: "WH", PadWidth: 3, ResetPeriod: "never"}, nil, time.Now())
	if err != nil {
		return fmt.Errorf("generate warehouse code: %w", err)
	}
	w.Code = code
	return nil
}

// RequireActive loads a warehouse and rejects inactive or deleted ones.
func (s *Service) RequireActive(ctx context.Context, warehouseID id.ID) (*Warehouse, error) {
	w, err := s.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if !w.CanMoveStock() {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "warehouse is not active").
			WithDetail("warehouse_id", warehouseID.String())
	}
	return w, nil
}
