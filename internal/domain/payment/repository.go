package payment

import (
	"context"

	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain"
)

// Repository defines persistence for payment records.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, recordID id.ID) (*Record, error)
	GetByPIID(ctx context.Context, piID id.ID) (*Record, error)
	// GetForUpdate locks the record row until the transaction ends.
	GetForUpdate(ctx context.Context, recordID id.ID) (*Record, error)
	// Update saves header fields with optimistic locking on version.
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, recordID id.ID) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Record], error)

	GetEntries(ctx context.Context, recordID id.ID) ([]Entry, error)
	AddEntry(ctx context.Context, e *Entry) error
	DeleteEntry(ctx context.Context, recordID, entryID id.ID) error

	GetExtras(ctx context.Context, recordID id.ID) ([]Extra, error)
	AddExtra(ctx context.Context, x *Extra) error
	DeleteExtra(ctx context.Context, recordID, extraID id.ID) error

	// InvoiceTotal returns the total amount of a PI.
	InvoiceTotal(ctx context.Context, piID id.ID) (types.Money, error)
}
