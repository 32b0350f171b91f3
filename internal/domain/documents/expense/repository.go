package expense

import (
	"context"

	"tradedesk/internal/core/id"
	"tradedesk/internal/domain"
)

// Repository defines persistence for expense records.
type Repository interface {
	domain.DocumentRepository[*Record]

	GetCharges(ctx context.Context, docID id.ID) ([]Charge, error)
	SaveCharges(ctx context.Context, docID id.ID, charges []Charge) error
}
