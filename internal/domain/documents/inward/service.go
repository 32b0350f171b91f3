package inward

import (
	"context"
	"fmt"
	"slices"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/numerator"
	"tradedesk/internal/core/tx"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain"
	"tradedesk/internal/domain/audit"
	"tradedesk/internal/domain/documents"
	"tradedesk/internal/domain/documents/purchase_order"
	"tradedesk/internal/domain/reconciliation"
	"tradedesk/internal/domain/stock"
	"tradedesk/pkg/logger"
)

// EntityName labels audit entries.
const EntityName = "inward"

// POLocker locks POs and computes their line statistics.
type POLocker interface {
	LockForReconciliation(ctx context.Context, poIDs []id.ID, excl purchase_order.Exclusion) (map[id.ID]*purchase_order.Locked, error)
}

// StockReader reads availability after a delete.
type StockReader interface {
	Available(ctx context.Context, warehouseID id.ID, productIDs []id.ID, excludeOutwardID *id.ID) (map[id.ID]types.Quantity, error)
}

// Service provides business operations for inward entries.
type Service struct {
	repo      Repository
	orders    POLocker
	stock     StockReader
	numerator numerator.Generator
	txManager tx.LockingManager
	audit     audit.Recorder
}

// NewService creates an inward service.
func NewService(repo Repository, orders POLocker, stockReader StockReader, num numerator.Generator, txm tx.LockingManager, rec audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		orders:    orders,
		stock:     stockReader,
		numerator: num,
		txManager: txm,
		audit:     rec,
	}
}

// Create stores an inward entry. Warehouse entries are checked against the
// remaining quantity of every referenced PO while those POs are locked.
func (s *Service) Create(ctx context.Context, e *Entry) error {
	if err := e.Validate(ctx); err != nil {
		return err
	}
	if err := documents.AssignNumber(ctx, s.numerator, documents.PrefixInward, e.Date, &e.Number); err != nil {
		return err
	}
	e.EnsureID()
	audit.StampCreated(ctx, &e.BaseDocument)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkAgainstOrders(ctx, e, purchase_order.Exclusion{}); err != nil {
			return err
		}
		return s.insert(ctx, e, audit.ActionCreate)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "inward entry created", "id", e.ID, "number", e.Number, "kind", e.Kind)
	return nil
}

// CreateFromPickup stores an entry converted from a pickup. It must run in the
// caller's transaction, which already holds the PO lock. The quantities move
// from in transit to inwarded one-for-one and are not checked again.
func (s *Service) CreateFromPickup(ctx context.Context, e *Entry) error {
	if e.SourcePickupID == nil {
		return apperror.NewValidation("source pickup is required")
	}
	if err := e.Validate(ctx); err != nil {
		return err
	}
	if err := documents.AssignNumber(ctx, s.numerator, documents.PrefixInward, e.Date, &e.Number); err != nil {
		return err
	}
	e.EnsureID()
	audit.StampCreated(ctx, &e.BaseDocument)

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.insert(ctx, e, audit.ActionInward)
	})
}

func (s *Service) insert(ctx context.Context, e *Entry, action audit.Action) error {
	e.Recalculate()
	if err := s.repo.Create(ctx, e); err != nil {
		return fmt.Errorf("create inward entry: %w", err)
	}
	if err := s.repo.SaveLines(ctx, e.ID, e.Lines); err != nil {
		return fmt.Errorf("save lines: %w", err)
	}
	changes := map[string]any{"number": e.Number, "kind": e.Kind}
	if e.SourcePickupID != nil {
		changes["pickup_id"] = e.SourcePickupID.String()
	}
	return s.audit.Record(ctx, EntityName, e.ID, action, changes)
}

// checkAgainstOrders locks the POs of a warehouse entry and validates the
// lines per PO. Missing SKUs are filled from the PO lines.
func (s *Service) checkAgainstOrders(ctx context.Context, e *Entry, excl purchase_order.Exclusion) error {
	if e.Kind != KindWarehouse {
		return nil
	}

	locked, err := s.orders.LockForReconciliation(ctx, e.POIDs(), excl)
	if err != nil {
		return err
	}

	requested := make(map[id.ID][]reconciliation.Requested)
	for i := range e.Lines {
		l := &e.Lines[i]
		po := locked[*l.POID]
		if l.SKU == "" {
			for _, st := range po.Stats {
				if st.ProductID == l.ProductID {
					l.SKU = st.SKU
					break
				}
			}
		}
		requested[*l.POID] = append(requested[*l.POID], reconciliation.Requested{
			Key:      l.ProductID,
			SKU:      l.SKU,
			Quantity: l.Quantity,
		})
	}

	for _, poID := range e.POIDs() {
		if err := reconciliation.ValidateInward(locked[poID].Stats, requested[poID]); err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return appErr.WithDetail("po_number", locked[poID].Order.Number)
			}
			return err
		}
	}
	return nil
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

// Update replaces an entry. Its own previous quantities are excluded before
// the lines are checked again, and the stock it held is locked because the
// update may lower it.
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
		e.SourcePickupID = current.SourcePickupID
		if current.SourcePickupID != nil {
			if err := keepsSourceOrders(current, e); err != nil {
				return err
			}
		}

		keys := append(stock.LockKeys(current.WarehouseID, current.ProductIDs()), stock.LockKeys(e.WarehouseID, e.ProductIDs())...)
		if err := s.txManager.LockKeys(ctx, keys...); err != nil {
			return err
		}

		if err := s.checkAgainstOrders(ctx, e, purchase_order.Exclusion{InwardID: &e.ID}); err != nil {
			return err
		}

		e.Recalculate()
		audit.StampUpdated(ctx, &e.BaseDocument)
		if err := s.repo.Update(ctx, e); err != nil {
			return fmt.Errorf("update inward entry: %w", err)
		}
		if err := s.repo.SaveLines(ctx, e.ID, e.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if err := s.audit.Record(ctx, EntityName, e.ID, audit.ActionUpdate, map[string]any{"total": e.TotalAmount.String()}); err != nil {
			return err
		}
		return s.warnNegative(ctx, current.WarehouseID, current.ProductIDs())
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "inward entry updated", "id", e.ID, "number", e.Number)
	return nil
}

// keepsSourceOrders rejects an update that moves the lines of a converted
// pickup off its PO. The pickup stays marked as inwarded, so its quantity
// would drop out of both inwarded and in transit for that PO.
func keepsSourceOrders(current, e *Entry) error {
	if e.Kind != current.Kind {
		return apperror.NewValidation("kind of an entry converted from a pickup cannot be changed").
			WithDetail("field", "kind").
			WithDetail("value", string(e.Kind))
	}
	orders := current.POIDs()
	for i, l := range e.Lines {
		if l.POID == nil || !slices.Contains(orders, *l.POID) {
			return apperror.NewValidation("lines of an entry converted from a pickup must stay on its purchase order").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

// Delete removes an entry and returns a converted pickup to in transit.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if current.Lines, err = s.repo.GetLines(ctx, docID); err != nil {
			return fmt.Errorf("get lines: %w", err)
		}

		products := current.ProductIDs()
		if err := s.txManager.LockKeys(ctx, stock.LockKeys(current.WarehouseID, products)...); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, docID); err != nil {
			return err
		}
		if current.SourcePickupID != nil {
			if err := s.repo.ReleasePickup(ctx, *current.SourcePickupID); err != nil {
				return fmt.Errorf("release pickup: %w", err)
			}
		}
		if err := s.audit.Record(ctx, EntityName, docID, audit.ActionDelete, map[string]any{"number": current.Number}); err != nil {
			return err
		}
		return s.warnNegative(ctx, current.WarehouseID, products)
	})
}

// warnNegative logs stock that went negative because inward quantities were
// removed after goods had been exported. The write is not blocked.
func (s *Service) warnNegative(ctx context.Context, warehouseID id.ID, productIDs []id.ID) error {
	avail, err := s.stock.Available(ctx, warehouseID, productIDs, nil)
	if err != nil {
		return err
	}
	for _, p := range productIDs {
		if q := avail[p]; q.IsNegative() {
			logger.Warn(ctx, "negative stock after inward change",
				"warehouse_id", warehouseID,
				"product_id", p,
				"available", q.Display())
		}
	}
	return nil
}

// BulkDelete deletes each entry independently and reports per-id results.
func (s *Service) BulkDelete(ctx context.Context, ids []id.ID) domain.BulkDeleteResult {
	return domain.BulkDelete(ctx, ids, s.Delete)
}

// List returns one page of entry headers.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Entry], error) {
	return s.repo.List(ctx, filter)
}
