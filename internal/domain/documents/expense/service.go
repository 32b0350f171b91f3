package expense

import (
	"context"
	"fmt"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/numerator"
	"tradedesk/internal/core/tx"
	"tradedesk/internal/domain"
	"tradedesk/internal/domain/audit"
	"tradedesk/internal/domain/documents"
	"tradedesk/pkg/logger"
)

// EntityName labels audit entries.
const EntityName = "expense"

type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
	audit     audit.Recorder
}

// NewService creates an expense service.
func NewService(repo Repository, num numerator.Generator, txm tx.Manager, rec audit.Recorder) *Service {
	return &Service{repo: repo, numerator: num, txManager: txm, audit: rec}
}

// Create numbers and stores a record with its charges.
func (s *Service) Create(ctx context.Context, r *Record) error {
	if err := r.Validate(ctx); err != nil {
		return err
	}
	if err := documents.AssignNumber(ctx, s.numerator, documents.PrefixExpense, r.Date, &r.Number); err != nil {
		return err
	}
	r.EnsureID()
	r.Recalculate()
	audit.StampCreated(ctx, &r.BaseDocument)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, r); err != nil {
			return fmt.Errorf("create expense: %w", err)
		}
		if err := s.repo.SaveCharges(ctx, r.ID, r.Charges); err != nil {
			return fmt.Errorf("save charges: %w", err)
		}
		return s.audit.Record(ctx, EntityName, r.ID, audit.ActionCreate, map[string]any{
			"number": r.Number,
			"total":  r.TotalAmount.String(),
		})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "expense recorded", "id", r.ID, "number", r.Number, "total", r.TotalAmount.String())
	return nil
}

// GetByID returns the record with its charges.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Record, error) {
	r, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if r.Charges, err = s.repo.GetCharges(ctx, docID); err != nil {
		return nil, fmt.Errorf("get charges: %w", err)
	}
	return r, nil
}

// Update replaces the record and its charges.
func (s *Service) Update(ctx context.Context, r *Record) error {
	if err := r.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, r.ID)
		if err != nil {
			return err
		}
		if r.Number != "" && r.Number != current.Number {
			return apperror.NewValidation("voucher number cannot be changed").WithDetail("field", "number")
		}
		r.Number = current.Number
		r.CreatedAt = current.CreatedAt
		r.CreatedBy = current.CreatedBy
		r.Recalculate()
		audit.StampUpdated(ctx, &r.BaseDocument)

		if err := s.repo.Update(ctx, r); err != nil {
			return fmt.Errorf("update expense: %w", err)
		}
		if err := s.repo.SaveCharges(ctx, r.ID, r.Charges); err != nil {
			return fmt.Errorf("save charges: %w", err)
		}
		return s.audit.Record(ctx, EntityName, r.ID, audit.ActionUpdate, map[string]any{"total": r.TotalAmount.String()})
	})
}

// Delete removes the record. Charges cascade.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, docID); err != nil {
			return err
		}
		return s.audit.Record(ctx, EntityName, docID, audit.ActionDelete, map[string]any{"number": current.Number})
	})
}

// BulkDelete deletes each record independently and reports per-id results.
func (s *Service) BulkDelete(ctx context.Context, ids []id.ID) domain.BulkDeleteResult {
	return domain.BulkDelete(ctx, ids, s.Delete)
}

// List returns one page of record headers.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Record], error) {
	return s.repo.List(ctx, filter)
}
