package purchase_invoice

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
const EntityName = "purchase_invoice"

// Service provides business operations for PIs.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
	audit     audit.Recorder
	hooks     *domain.HookRegistry[*PurchaseInvoice]
}

// NewService creates a purchase invoice service.
func NewService(repo Repository, num numerator.Generator, txm tx.Manager, rec audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		numerator: num,
		txManager: txm,
		audit:     rec,
		hooks:     domain.NewHookRegistry[*PurchaseInvoice](),
	}
}

// Hooks exposes the lifecycle hooks.
func (s *Service) Hooks() *domain.HookRegistry[*PurchaseInvoice] {
	return s.hooks
}

// Create assigns a voucher number when missing and stores the PI with its lines.
func (s *Service) Create(ctx context.Context, doc *PurchaseInvoice) error {
	if err := s.hooks.Run(ctx, domain.BeforeCreate, doc); err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := documents.AssignNumber(ctx, s.numerator, documents.PrefixPurchaseInvoice, doc.Date, &doc.Number); err != nil {
		return err
	}
	doc.EnsureID()
	doc.Recalculate()
	audit.StampCreated(ctx, &doc.BaseDocument)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create purchase invoice: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return s.audit.Record(ctx, EntityName, doc.ID, audit.ActionCreate, map[string]any{
			"number": doc.Number,
			"total":  doc.TotalAmount.String(),
		})
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, domain.AfterCreate, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "entity", EntityName, "error", err)
	}
	logger.Info(ctx, "purchase invoice created", "id", doc.ID, "number", doc.Number)
	return nil
}

// GetByID loads the header and lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*PurchaseInvoice, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.Lines, err = s.repo.GetLines(ctx, docID); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return doc, nil
}

// GetByNumber returns the PI with its lines.
func (s *Service) GetByNumber(ctx context.Context, number string) (*PurchaseInvoice, error) {
	doc, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if doc.Lines, err = s.repo.GetLines(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return doc, nil
}

// Update replaces header fields and lines. The voucher number never changes.
func (s *Service) Update(ctx context.Context, doc *PurchaseInvoice) error {
	if err := s.hooks.Run(ctx, domain.BeforeUpdate, doc); err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, doc.ID)
		if err != nil {
			return err
		}
		if doc.Number != "" && doc.Number != current.Number {
			return apperror.NewValidation("voucher number cannot be changed").
				WithDetail("field", "number")
		}
		doc.Number = current.Number
		doc.CreatedAt = current.CreatedAt
		doc.CreatedBy = current.CreatedBy
		doc.Recalculate()
		audit.StampUpdated(ctx, &doc.BaseDocument)

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update purchase invoice: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return s.audit.Record(ctx, EntityName, doc.ID, audit.ActionUpdate, map[string]any{
			"total": doc.TotalAmount.String(),
		})
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, domain.AfterUpdate, doc); err != nil {
		logger.Warn(ctx, "after-update hook failed", "entity", EntityName, "error", err)
	}
	return nil
}

// Delete removes the PI. A PI still linked to a PO, export or payment record
// is rejected by the foreign keys.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, domain.BeforeDelete, doc); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, docID); err != nil {
			return err
		}
		return s.audit.Record(ctx, EntityName, docID, audit.ActionDelete, map[string]any{"number": doc.Number})
	})
}

// BulkDelete deletes each PI independently and reports per-id results.
func (s *Service) BulkDelete(ctx context.Context, ids []id.ID) domain.BulkDeleteResult {
	return domain.BulkDelete(ctx, ids, s.Delete)
}

// List returns one page of PI headers.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*PurchaseInvoice], error) {
	return s.repo.List(ctx, filter)
}
