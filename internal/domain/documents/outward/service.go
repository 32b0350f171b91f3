package outward

import (
	"context"
	"fmt"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/numerator"
	"tradedesk/internal/core/tx"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain"
	"tradedesk/internal/domain/audit"
	"tradedesk/internal/domain/documents"
	"tradedesk/internal/domain/reconciliation"
	"tradedesk/internal/domain/stock"
	"tradedesk/pkg/logger"
)

// EntityName labels audit entries.
const EntityName = "outward"

// StockReader reads availability under the caller's stock locks.
type StockReader interface {
	Available(ctx context.Context, warehouseID id.ID, productIDs []id.ID, excludeOutwardID *id.ID) (map[id.ID]types.Quantity, error)
}

// Service provides business operations for outward entries.
type Service struct {
	repo      Repository
	stock     StockReader
	numerator numerator.Generator
	txManager tx.LockingManager
	audit     audit.Recorder
}

// NewService creates an outward service.
func NewService(repo Repository, stockReader StockReader, num numerator.Generator, txm tx.LockingManager, rec audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		stock:     stockReader,
		numerator: num,
		txManager: txm,
		audit:     rec,
	}
}

// Create stores an outward entry. For an export invoice the stock of every
// (warehouse, product) pair is locked, summed and checked before the insert,
// so two exports can not both spend the same stock.
func (s *Service) Create(ctx context.Context, e *Entry) error {
	if err := e.Validate(ctx); err != nil {
		return err
	}
	if err := documents.AssignNumber(ctx, s.numerator, documents.PrefixOutward, e.Date, &e.Number); err != nil {
		return err
	}
	e.EnsureID()
	audit.StampCreated(ctx, &e.BaseDocument)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if e.CountsAgainstStock() {
			if err := s.txManager.LockKeys(ctx, stock.LockKeys(*e.WarehouseID, e.ProductIDs())...); err != nil {
				return err
			}
		}
		if err := s.checkStock(ctx, e, nil); err != nil {
			return err
		}

		e.Recalculate()
		if err := s.repo.Create(ctx, e); err != nil {
			return fmt.Errorf("create outward entry: %w", err)
		}
		if err := s.repo.SaveLines(ctx, e.ID, e.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return s.audit.Record(ctx, EntityName, e.ID, audit.ActionCreate, map[string]any{
			"number": e.Number,
			"kind":   e.Kind,
		})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "outward entry created", "id", e.ID, "number", e.Number, "kind", e.Kind)
	return nil
}

func (s *Service) checkStock(ctx context.Context, e *Entry, exclude *id.ID) error {
	if !e.Kind.Gated() {
		return nil
	}
	available, err := s.stock.Available(ctx, *e.WarehouseID, e.ProductIDs(), exclude)
	if err != nil {
		return err
	}
	return reconciliation.CheckExport(available, e.ExportLines())
}

// GetByID returns the entry with its lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Entry, error) {
	e, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if e.Lines, err = s.repo.GetLines(ctx, docID); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return e, nil
}

// Update replaces an entry. The entry's own previous lines are excluded from
// the stock check.
func (s *Service) Update(ctx context.Context, e *Entry) error {
	if err := e.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, e.ID)
		if err != nil {
			return err
		}
		if current.Lines, err = s.repo.GetLines(ctx, e.ID); err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		if e.Number != "" && e.Number != current.Number {
			return apperror.NewValidation("voucher number cannot be changed").WithDetail("field", "number")
		}
		e.Number = current.Number
		e.CreatedAt = current.CreatedAt
		e.CreatedBy = current.CreatedBy

		var keys []string
		if current.CountsAgainstStock() {
			keys = append(keys, stock.LockKeys(*current.WarehouseID, current.ProductIDs())...)
		}
		if e.CountsAgainstStock() {
			keys = append(keys, stock.LockKeys(*e.WarehouseID, e.ProductIDs())...)
		}
		if err := s.txManager.LockKeys(ctx, keys...); err != nil {
			return err
		}
		if err := s.checkStock(ctx, e, &e.ID); err != nil {
			return err
		}

		e.Recalculate()
		audit.StampUpdated(ctx, &e.BaseDocument)
		if err := s.repo.Update(ctx, e); err != nil {
			return fmt.Errorf("update outward entry: %w", err)
		}
		if err := s.repo.SaveLines(ctx, e.ID, e.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return s.audit.Record(ctx, EntityName, e.ID, audit.ActionUpdate, map[string]any{"total": e.TotalAmount.String()})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "outward entry updated", "id", e.ID, "number", e.Number)
	return nil
}

// Delete removes an entry; its quantity becomes available again.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if current.CountsAgainstStock() {
			if current.Lines, err = s.repo.GetLines(ctx, docID); err != nil {
				return fmt.Errorf("get lines: %w", err)
			}
			if err := s.txManager.LockKeys(ctx, stock.LockKeys(*current.WarehouseID, current.ProductIDs())...); err != nil {
				return err
			}
		}
		if err := s.repo.Delete(ctx, docID); err != nil {
			return err
		}
		return s.audit.Record(ctx, EntityName, docID, audit.ActionDelete, map[string]any{"number": current.Number})
	})
}

// BulkDelete deletes each entry independently and reports per-id results.
func (s *Service) BulkDelete(ctx context.Context, ids []id.ID) domain.BulkDeleteResult {
	return domain.BulkDelete(ctx, ids, s.Delete)
}

// List returns one page of entry headers.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Entry], error) {
	return s.repo.List(ctx, filter)
}
