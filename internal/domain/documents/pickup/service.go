package pickup

import (
	"context"
	"fmt"
	"time"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/numerator"
	"tradedesk/internal/core/tx"
	"tradedesk/internal/domain"
	"tradedesk/internal/domain/audit"
	"tradedesk/internal/domain/documents"
	"tradedesk/internal/domain/documents/inward"
	"tradedesk/internal/domain/documents/purchase_order"
	"tradedesk/internal/domain/reconciliation"
	"tradedesk/pkg/logger"
)

// EntityName labels audit entries.
const EntityName = "pickup"

// InwardCreator stores the inward entry a pickup converts into.
type InwardCreator interface {
	CreateFromPickup(ctx context.Context, e *inward.Entry) error
}

// Service provides business operations for pickups.
type Service struct {
	repo      Repository
	orders    inward.POLocker
	inwards   InwardCreator
	numerator numerator.Generator
	txManager tx.Manager
	audit     audit.Recorder
}

// NewService creates a pickup service.
func NewService(repo Repository, orders inward.POLocker, inwards InwardCreator, num numerator.Generator, txm tx.Manager, rec audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		orders:    orders,
		inwards:   inwards,
		numerator: num,
		txManager: txm,
		audit:     rec,
	}
}

// Create stores a pickup after checking each line against the remaining
// quantity of its PO line, with the PO row locked.
func (s *Service) Create(ctx context.Context, p *Pickup) error {
	p.IsInwarded = false
	p.InwardID = nil
	if err := p.Validate(ctx); err != nil {
		return err
	}
	if err := documents.AssignNumber(ctx, s.numerator, documents.PrefixPickup, p.Date, &p.Number); err != nil {
		return err
	}
	p.EnsureID()
	audit.StampCreated(ctx, &p.BaseDocument)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkAgainstOrder(ctx, p, purchase_order.Exclusion{}); err != nil {
			return err
		}
		p.prepareLines()
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create pickup: %w", err)
		}
		if err := s.repo.SaveLines(ctx, p.ID, p.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return s.audit.Record(ctx, EntityName, p.ID, audit.ActionCreate, map[string]any{"number": p.Number})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "pickup created", "id", p.ID, "number", p.Number, "po_id", p.POID)
	return nil
}

// checkAgainstOrder locks the PO, copies product and SKU from its lines and
// validates the requested quantities.
func (s *Service) checkAgainstOrder(ctx context.Context, p *Pickup, excl purchase_order.Exclusion) error {
	locked, err := s.orders.LockForReconciliation(ctx, []id.ID{p.POID}, excl)
	if err != nil {
		return err
	}
	po := locked[p.POID]

	requested := make([]reconciliation.Requested, len(p.Lines))
	for i := range p.Lines {
		l := &p.Lines[i]
		if poLine, ok := po.Order.Line(l.POLineID); ok {
			l.ProductID = poLine.ProductID
			l.SKU = poLine.SKU
		}
		requested[i] = reconciliation.Requested{Key: l.POLineID, SKU: l.SKU, Quantity: l.Quantity}
	}
	return reconciliation.ValidatePickup(po.Stats, requested)
}

// GetByID returns the pickup with its lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Pickup, error) {
	p, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if p.Lines, err = s.repo.GetLines(ctx, docID); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return p, nil
}

// Update replaces a pickup that has not been inwarded.
func (s *Service) Update(ctx context.Context, p *Pickup) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		if err := current.CanModify(); err != nil {
			return err
		}
		if p.Number != "" && p.Number != current.Number {
			return apperror.NewValidation("voucher number cannot be changed").WithDetail("field", "number")
		}
		p.Number = current.Number
		p.CreatedAt = current.CreatedAt
		p.CreatedBy = current.CreatedBy
		p.IsInwarded = false
		p.InwardID = nil

		if err := s.checkAgainstOrder(ctx, p, purchase_order.Exclusion{PickupID: &p.ID}); err != nil {
			return err
		}

		p.prepareLines()
		audit.StampUpdated(ctx, &p.BaseDocument)
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update pickup: %w", err)
		}
		if err := s.repo.SaveLines(ctx, p.ID, p.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return s.audit.Record(ctx, EntityName, p.ID, audit.ActionUpdate, nil)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "pickup updated", "id", p.ID, "number", p.Number)
	return nil
}

// Delete removes a pickup that has not been inwarded. Its in-transit
// quantity is freed because statistics are computed from the remaining rows.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := current.CanModify(); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, docID); err != nil {
			return err
		}
		return s.audit.Record(ctx, EntityName, docID, audit.ActionDelete, map[string]any{"number": current.Number})
	})
}

// InwardInput carries the optional header fields of the inward entry a
// pickup converts into.
type InwardInput struct {
	Number  string
	Date    time.Time
	Comment string
}

// Inward converts a pickup into a warehouse inward entry in one transaction.
// A pickup can be inwarded once.
func (s *Service) Inward(ctx context.Context, pickupID id.ID, in InwardInput) (*inward.Entry, error) {
	var entry *inward.Entry

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, pickupID)
		if err != nil {
			return err
		}
		if err := p.CanModify(); err != nil {
			return err
		}
		if p.Lines, err = s.repo.GetLines(ctx, pickupID); err != nil {
			return fmt.Errorf("get lines: %w", err)
		}

		locked, err := s.orders.LockForReconciliation(ctx, []id.ID{p.POID}, purchase_order.Exclusion{})
		if err != nil {
			return err
		}
		po := locked[p.POID].Order

		entry = inward.NewEntry(inward.KindWarehouse, p.WarehouseID)
		entry.Number = in.Number
		entry.Comment = in.Comment
		if !in.Date.IsZero() {
			entry.Date = in.Date
		}
		supplierID := po.SupplierID
		entry.SupplierID = &supplierID
		entry.SourcePickupID = &p.ID

		for _, l := range p.Lines {
			poLine, _ := po.Line(l.POLineID)
			poID := p.POID
			entry.Lines = append(entry.Lines, inward.Line{
				Line: documents.Line{
					ProductID: l.ProductID,
					SKU:       l.SKU,
					Quantity:  l.Quantity,
					Rate:      poLine.Rate,
				},
				POID: &poID,
			})
		}

		if err := s.inwards.CreateFromPickup(ctx, entry); err != nil {
			return err
		}
		if err := s.repo.MarkInwarded(ctx, p.ID, entry.ID); err != nil {
			return fmt.Errorf("mark pickup inwarded: %w", err)
		}
		return s.audit.Record(ctx, EntityName, p.ID, audit.ActionInward, map[string]any{
			"inward_id":     entry.ID.String(),
			"inward_number": entry.Number,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "pickup inwarded", "id", pickupID, "inward_id", entry.ID, "inward_number", entry.Number)
	return entry, nil
}

// BulkDelete deletes each pickup independently and reports per-id results.
func (s *Service) BulkDelete(ctx context.Context, ids []id.ID) domain.BulkDeleteResult {
	return domain.BulkDelete(ctx, ids, s.Delete)
}

// List returns one page of pickup headers.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Pickup], error) {
	return s.repo.List(ctx, filter)
}
