package purchase_invoice

import (
	"context"

	"tradedesk/internal/core/id"
	"tradedesk/internal/domain"
	"tradedesk/internal/domain/documents"
)

// Repository defines persistence for PIs.
type Repository interface {
	domain.DocumentRepository[*PurchaseInvoice]

	GetLines(ctx context.Context, docID id.ID) ([]documents.Line, error)
	// SaveLines replaces all lines of the document.
	SaveLines(ctx context.Context, docID id.ID, lines []documents.Line) error
}
