package payment

import (
	"context"
	"fmt"
	"time"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/tx"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain"
	"tradedesk/internal/domain/audit"
	"tradedesk/pkg/logger"
)

// EntityName labels audit entries.
const EntityName = "payment"

// Service provides payment operations. Every write locks the record row,
// reloads entries under the lock and only then checks the rules.
type Service struct {
	repo      Repository
	txManager tx.Manager
	audit     audit.Recorder
	now       func() time.Time
}

// NewService creates a payment service.
func NewService(repo Repository, txm tx.Manager, rec audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		txManager: txm,
		audit:     rec,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput opens a payment record for a PI. TotalAmount overrides the PI total.
type CreateInput struct {
	PIID           id.ID
	AdvancePayment types.Money
	TotalAmount    *types.Money
}

// Create opens the payment record of a PI. Without an explicit total the PI
// total is used.
func (s *Service) Create(ctx context.Context, in CreateInput) (View, error) {
	var rec *Record
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		total := types.Zero()
		if in.TotalAmount != nil {
			total = *in.TotalAmount
		} else {
			t, err := s.repo.InvoiceTotal(ctx, in.PIID)
			if err != nil {
				return err
			}
			total = t
		}

		rec = NewRecord(in.PIID, total, in.AdvancePayment)
		if err := rec.ValidateAmounts(); err != nil {
			return err
		}
		audit.StampCreated(ctx, &rec.BaseDocument)
		if err := s.repo.Create(ctx, rec); err != nil {
			return err
		}
		return s.audit.Record(ctx, EntityName, rec.ID, audit.ActionCreate, map[string]any{
			"pi_id": in.PIID.String(),
			"total": total.String(),
		})
	})
	if err != nil {
		return View{}, err
	}

	logger.Info(ctx, "payment record opened", "id", rec.ID, "pi_id", rec.PIID)
	return rec.View(), nil
}

func (s *Service) load(ctx context.Context, rec *Record) (*Record, error) {
	var err error
	if rec.Entries, err = s.repo.GetEntries(ctx, rec.ID); err != nil {
		return nil, fmt.Errorf("get entries: %w", err)
	}
	if rec.Extras, err = s.repo.GetExtras(ctx, rec.ID); err != nil {
		return nil, fmt.Errorf("get extras: %w", err)
	}
	return rec, nil
}

// Get returns a record with entries, extras and summary.
func (s *Service) Get(ctx context.Context, recordID id.ID) (View, error) {
	rec, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return View{}, err
	}
	if rec, err = s.load(ctx, rec); err != nil {
		return View{}, err
	}
	return rec.View(), nil
}

// GetByPI returns the record of a PI.
func (s *Service) GetByPI(ctx context.Context, piID id.ID) (View, error) {
	rec, err := s.repo.GetByPIID(ctx, piID)
	if err != nil {
		return View{}, err
	}
	if rec, err = s.load(ctx, rec); err != nil {
		return View{}, err
	}
	return rec.View(), nil
}

// mutate locks the record, loads its children and runs fn, then saves the header.
func (s *Service) mutate(ctx context.Context, recordID id.ID, action audit.Action, fn func(ctx context.Context, rec *Record) (map[string]any, error)) (View, error) {
	var rec *Record
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		if rec, err = s.repo.GetForUpdate(ctx, recordID); err != nil {
			return err
		}
		if rec, err = s.load(ctx, rec); err != nil {
			return err
		}
		changes, err := fn(ctx, rec)
		if err != nil {
			return err
		}
		audit.StampUpdated(ctx, &rec.BaseDocument)
		if err := s.repo.Update(ctx, rec); err != nil {
			return err
		}
		rec.Version++
		return s.audit.Record(ctx, EntityName, rec.ID, action, changes)
	})
	if err != nil {
		return View{}, err
	}
	return rec.View(), nil
}

// UpdateInput changes header amounts. RefreshTotal reloads the total from the PI.
type UpdateInput struct {
	AdvancePayment *types.Money
	TotalAmount    *types.Money
	RefreshTotal   bool
}

// Update changes the advance or total of a record.
func (s *Service) Update(ctx context.Context, recordID id.ID, in UpdateInput) (View, error) {
	return s.mutate(ctx, recordID, audit.ActionUpdate, func(ctx context.Context, rec *Record) (map[string]any, error) {
		if in.AdvancePayment != nil {
			rec.AdvancePayment = *in.AdvancePayment
		}
		switch {
		case in.TotalAmount != nil:
			rec.TotalAmount = *in.TotalAmount
		case in.RefreshTotal:
			total, err := s.repo.InvoiceTotal(ctx, rec.PIID)
			if err != nil {
				return nil, err
			}
			rec.TotalAmount = total
		}
		if err := rec.ValidateAmounts(); err != nil {
			return nil, err
		}
		return map[string]any{
			"total":   rec.TotalAmount.String(),
			"advance": rec.AdvancePayment.String(),
		}, nil
	})
}

// AddEntry records a received payment.
func (s *Service) AddEntry(ctx context.Context, recordID id.ID, e Entry) (View, error) {
	if !e.ReceivedAmount.IsPositive() {
		return View{}, apperror.NewValidation("received amount must be positive").WithDetail("field", "received_amount")
	}
	return s.mutate(ctx, recordID, audit.ActionPayment, func(ctx context.Context, rec *Record) (map[string]any, error) {
		if err := rec.CanAddEntry(); err != nil {
			return nil, err
		}
		e.ID = id.New()
		e.RecordID = rec.ID
		e.CreatedAt = s.now()
		if e.Date.IsZero() {
			e.Date = e.CreatedAt
		}
		if err := s.repo.AddEntry(ctx, &e); err != nil {
			return nil, fmt.Errorf("add entry: %w", err)
		}
		rec.Entries = append(rec.Entries, e)
		return map[string]any{"entry_id": e.ID.String(), "amount": e.ReceivedAmount.String()}, nil
	})
}

// DeleteEntry removes a received payment; remaining rises by its amount.
func (s *Service) DeleteEntry(ctx context.Context, recordID, entryID id.ID) (View, error) {
	return s.mutate(ctx, recordID, audit.ActionUpdate, func(ctx context.Context, rec *Record) (map[string]any, error) {
		idx := -1
		for i, e := range rec.Entries {
			if e.ID == entryID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, apperror.NewNotFound("payment entry", entryID.String())
		}
		removed := rec.Entries[idx]
		if err := s.repo.DeleteEntry(ctx, recordID, entryID); err != nil {
			return nil, err
		}
		rec.Entries = append(rec.Entries[:idx], rec.Entries[idx+1:]...)
		return map[string]any{"deleted_entry_id": entryID.String(), "amount": removed.ReceivedAmount.String()}, nil
	})
}

// AddExtra records an extra settlement amount.
func (s *Service) AddExtra(ctx context.Context, recordID id.ID, x Extra) (View, error) {
	if x.Amount.IsZero() {
		return View{}, apperror.NewValidation("amount is required").WithDetail("field", "amount")
	}
	return s.mutate(ctx, recordID, audit.ActionPayment, func(ctx context.Context, rec *Record) (map[string]any, error) {
		if rec.ShortPaymentStatus {
			return nil, apperror.NewBusinessRule(apperror.CodePaymentClosed, "payment record is closed as short payment")
		}
		x.ID = id.New()
		x.RecordID = rec.ID
		x.CreatedAt = s.now()
		if x.Date.IsZero() {
			x.Date = x.CreatedAt
		}
		if err := s.repo.AddExtra(ctx, &x); err != nil {
			return nil, fmt.Errorf("add extra payment: %w", err)
		}
		rec.Extras = append(rec.Extras, x)
		return map[string]any{"extra_id": x.ID.String(), "amount": x.Amount.String()}, nil
	})
}

// DeleteExtra removes an extra payment from a record.
func (s *Service) DeleteExtra(ctx context.Context, recordID, extraID id.ID) (View, error) {
	return s.mutate(ctx, recordID, audit.ActionUpdate, func(ctx context.Context, rec *Record) (map[string]any, error) {
		idx := -1
		for i, x := range rec.Extras {
			if x.ID == extraID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, apperror.NewNotFound("extra payment", extraID.String())
		}
		if err := s.repo.DeleteExtra(ctx, recordID, extraID); err != nil {
			return nil, err
		}
		rec.Extras = append(rec.Extras[:idx], rec.Extras[idx+1:]...)
		return map[string]any{"deleted_extra_id": extraID.String()}, nil
	})
}

// CloseShort settles the record below its total.
func (s *Service) CloseShort(ctx context.Context, recordID id.ID, note string) (View, error) {
	v, err := s.mutate(ctx, recordID, audit.ActionCloseShort, func(ctx context.Context, rec *Record) (map[string]any, error) {
		if err := rec.CloseShort(note, s.now()); err != nil {
			return nil, err
		}
		return map[string]any{"note": *rec.ShortPaymentNote, "remaining": rec.Summary().RemainingPayment.String()}, nil
	})
	if err == nil {
		logger.Info(ctx, "payment closed short", "id", recordID, "remaining", v.RemainingPayment.String())
	}
	return v, err
}

// Reopen clears the short-payment flag and keeps the note.
func (s *Service) Reopen(ctx context.Context, recordID id.ID) (View, error) {
	return s.mutate(ctx, recordID, audit.ActionReopen, func(ctx context.Context, rec *Record) (map[string]any, error) {
		if err := rec.Reopen(s.now()); err != nil {
			return nil, err
		}
		return map[string]any{"reopened_at": rec.ReopenedAt}, nil
	})
}

// Delete removes a record with its entries and extras.
func (s *Service) Delete(ctx context.Context, recordID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetForUpdate(ctx, recordID); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, recordID); err != nil {
			return err
		}
		return s.audit.Record(ctx, EntityName, recordID, audit.ActionDelete, nil)
	})
}

// BulkDelete deletes each record independently and reports per-id results.
func (s *Service) BulkDelete(ctx context.Context, ids []id.ID) domain.BulkDeleteResult {
	return domain.BulkDelete(ctx, ids, s.Delete)
}

// List returns records with their summaries.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[View], error) {
	page, err := s.repo.List(ctx, filter)
	if err != nil {
		return domain.ListResult[View]{}, err
	}
	out := domain.ListResult[View]{
		Items:      make([]View, 0, len(page.Items)),
		TotalCount: page.TotalCount,
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	for _, rec := range page.Items {
		if rec, err = s.load(ctx, rec); err != nil {
			return domain.ListResult[View]{}, err
		}
		out.Items = append(out.Items, rec.View())
	}
	return out, nil
}
