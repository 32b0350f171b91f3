package purchase_order

import (
	"context"

	"tradedesk/internal/core/id"
	"tradedesk/internal/domain"
	"tradedesk/internal/domain/documents"
	"tradedesk/internal/domain/reconciliation"
)

// Exclusion leaves one pickup or inward entry out of the totals, so an
// update is checked without counting its own previous quantities.
type Exclusion struct {
	PickupID *id.ID
	InwardID *id.ID
}

// Repository defines persistence for POs and the sums reconciled against them.
type Repository interface {
	domain.DocumentRepository[*PurchaseOrder]

	GetLines(ctx context.Context, docID id.ID) ([]documents.Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []documents.Line) error

	GetPIIDs(ctx context.Context, poID id.ID) ([]id.ID, error)
	SavePIIDs(ctx context.Context, poID id.ID, piIDs []id.ID) error

	// LockByIDs locks PO rows in id order until the transaction ends.
	// A missing id yields NotFound.
	LockByIDs(ctx context.Context, ids []id.ID) error

	// Totals sums PI, inward and in-transit pickup quantities for one PO.
	Totals(ctx context.Context, poID id.ID, excl Exclusion) (reconciliation.Totals, error)

	// ReferencedLineIDs returns PO line ids that pickup lines point at.
	ReferencedLineIDs(ctx context.Context, poID id.ID) ([]id.ID, error)
}
