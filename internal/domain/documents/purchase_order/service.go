package purchase_order

import (
	"context"
	"fmt"
	"slices"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/numerator"
	"tradedesk/internal/core/tx"
	"tradedesk/internal/domain"
	"tradedesk/internal/domain/audit"
	"tradedesk/internal/domain/documents"
	"tradedesk/internal/domain/reconciliation"
	"tradedesk/pkg/logger"
)

// EntityName labels audit entries.
const EntityName = "purchase_order"

// Service provides business operations for POs and their line statistics.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
	audit     audit.Recorder
	hooks     *domain.HookRegistry[*PurchaseOrder]
}

// NewService creates a purchase order service.
func NewService(repo Repository, num numerator.Generator, txm tx.Manager, rec audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		numerator: num,
		txManager: txm,
		audit:     rec,
		hooks:     domain.NewHookRegistry[*PurchaseOrder](),
	}
}

// Hooks exposes the lifecycle hooks.
func (s *Service) Hooks() *domain.HookRegistry[*PurchaseOrder] {
	return s.hooks
}

// Create numbers and stores a PO with its lines and linked PIs.
func (s *Service) Create(ctx context.Context, doc *PurchaseOrder) error {
	if err := s.hooks.Run(ctx, domain.BeforeCreate, doc); err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := documents.AssignNumber(ctx, s.numerator, documents.PrefixPurchaseOrder, doc.Date, &doc.Number); err != nil {
		return err
	}
	doc.EnsureID()
	doc.Recalculate()
	audit.StampCreated(ctx, &doc.BaseDocument)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create purchase order: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if err := s.repo.SavePIIDs(ctx, doc.ID, doc.PIIDs); err != nil {
			return fmt.Errorf("link purchase invoices: %w", err)
		}
		return s.audit.Record(ctx, EntityName, doc.ID, audit.ActionCreate, map[string]any{
			"number": doc.Number,
			"pi_ids": doc.PIIDs,
		})
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, domain.AfterCreate, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "entity", EntityName, "error", err)
	}
	logger.Info(ctx, "purchase order created", "id", doc.ID, "number", doc.Number)
	return nil
}

func (s *Service) load(ctx context.Context, doc *PurchaseOrder) (*PurchaseOrder, error) {
	var err error
	if doc.Lines, err = s.repo.GetLines(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	if doc.PIIDs, err = s.repo.GetPIIDs(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("get linked purchase invoices: %w", err)
	}
	return doc, nil
}

// GetByID returns the PO with its lines and linked PIs.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*PurchaseOrder, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, doc)
}

// GetByNumber returns the PO with its lines and linked PIs.
func (s *Service) GetByNumber(ctx context.Context, number string) (*PurchaseOrder, error) {
	doc, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, doc)
}

// Update replaces the PO. Lines referenced by pickups must stay, and no line
// may drop below what is already inwarded or in transit.
func (s *Service) Update(ctx context.Context, doc *PurchaseOrder) error {
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
			return apperror.NewValidation("voucher number cannot be changed").WithDetail("field", "number")
		}
		doc.Number = current.Number
		doc.CreatedAt = current.CreatedAt
		doc.CreatedBy = current.CreatedBy
		doc.Recalculate()

		referenced, err := s.repo.ReferencedLineIDs(ctx, doc.ID)
		if err != nil {
			return err
		}
		for _, lineID := range referenced {
			if _, ok := doc.Line(lineID); !ok {
				return apperror.NewConflict("purchase order line is referenced by a pickup").
					WithDetail("po_line_id", lineID.String())
			}
		}

		totals, err := s.repo.Totals(ctx, doc.ID, Exclusion{})
		if err != nil {
			return err
		}
		for _, st := range reconciliation.ComputeLineStats(doc.ReconciliationLines(), totals) {
			if st.IsOverdrawn() {
				return apperror.NewBusinessRule(apperror.CodeQuantityExceedsRemaining,
					fmt.Sprintf("Quantity for %s is below already inwarded plus in transit", st.SKU)).
					WithDetail("sku", st.SKU).
					WithDetail("already_inwarded", st.AlreadyInwarded.Display()).
					WithDetail("in_transit", st.InTransit.Display())
			}
		}

		audit.StampUpdated(ctx, &doc.BaseDocument)
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if err := s.repo.SavePIIDs(ctx, doc.ID, doc.PIIDs); err != nil {
			return fmt.Errorf("link purchase invoices: %w", err)
		}
		return s.audit.Record(ctx, EntityName, doc.ID, audit.ActionUpdate, map[string]any{"pi_ids": doc.PIIDs})
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, domain.AfterUpdate, doc); err != nil {
		logger.Warn(ctx, "after-update hook failed", "entity", EntityName, "error", err)
	}
	return nil
}

// Delete removes the PO. Pickups and inward lines referencing it block the delete.
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

// BulkDelete deletes each PO independently and reports per-id results.
func (s *Service) BulkDelete(ctx context.Context, ids []id.ID) domain.BulkDeleteResult {
	return domain.BulkDelete(ctx, ids, s.Delete)
}

// List returns one page of PO headers.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*PurchaseOrder], error) {
	return s.repo.List(ctx, filter)
}

// LinesWithStats returns reconciliation statistics for every line of the PO
// with the given voucher number.
func (s *Service) LinesWithStats(ctx context.Context, voucher string) ([]reconciliation.LineStats, error) {
	doc, err := s.GetByNumber(ctx, voucher)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.Totals(ctx, doc.ID, Exclusion{})
	if err != nil {
		return nil, err
	}
	stats := reconciliation.ComputeLineStats(doc.ReconciliationLines(), totals)
	warnOverdrawn(ctx, doc, stats)
	return stats, nil
}

// Locked is a PO whose row is locked by the current transaction, with
// statistics computed under that lock.
type Locked struct {
	Order *PurchaseOrder
	Stats []reconciliation.LineStats
}

// LockForReconciliation locks the given POs in id order and computes their
// statistics. It must run inside a transaction; the caller validates and
// writes before the lock is released at commit.
func (s *Service) LockForReconciliation(ctx context.Context, poIDs []id.ID, excl Exclusion) (map[id.ID]*Locked, error) {
	ids := slices.Clone(poIDs)
	slices.SortFunc(ids, func(a, b id.ID) int { return slices.Compare(a[:], b[:]) })
	ids = slices.Compact(ids)

	if err := s.repo.LockByIDs(ctx, ids); err != nil {
		return nil, err
	}

	out := make(map[id.ID]*Locked, len(ids))
	for _, poID := range ids {
		doc, err := s.GetByID(ctx, poID)
		if err != nil {
			return nil, err
		}
		totals, err := s.repo.Totals(ctx, poID, excl)
		if err != nil {
			return nil, err
		}
		stats := reconciliation.ComputeLineStats(doc.ReconciliationLines(), totals)
		warnOverdrawn(ctx, doc, stats)
		out[poID] = &Locked{Order: doc, Stats: stats}
	}
	return out, nil
}

// ScanOverdrawn walks every PO in pages of pageSize and logs each overdrawn
// line. It returns the number of overdrawn lines.
func (s *Service) ScanOverdrawn(ctx context.Context, pageSize int) (int, error) {
	if pageSize <= 0 {
		pageSize = 200
	}
	filter := domain.ListFilter{Limit: pageSize}

	overdrawn := 0
	for {
		page, err := s.repo.List(ctx, filter)
		if err != nil {
			return overdrawn, fmt.Errorf("list purchase orders: %w", err)
		}
		for _, doc := range page.Items {
			if doc.Lines, err = s.repo.GetLines(ctx, doc.ID); err != nil {
				return overdrawn, fmt.Errorf("get lines of %s: %w", doc.Number, err)
			}
			totals, err := s.repo.Totals(ctx, doc.ID, Exclusion{})
			if err != nil {
				return overdrawn, err
			}
			overdrawn += warnOverdrawn(ctx, doc, reconciliation.ComputeLineStats(doc.ReconciliationLines(), totals))
		}
		if len(page.Items) < pageSize {
			return overdrawn, nil
		}
		filter.Offset += pageSize
	}
}

func warnOverdrawn(ctx context.Context, doc *PurchaseOrder, stats []reconciliation.LineStats) int {
	n := 0
	for _, st := range stats {
		if st.IsOverdrawn() {
			n++
			logger.Warn(ctx, "purchase order line overdrawn",
				"po_id", doc.ID,
				"po_number", doc.Number,
				"sku", st.SKU,
				"remaining_allowed", st.RemainingAllowed.Display())
		}
	}
	return n
}
