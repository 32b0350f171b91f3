package pickup

import (
	"context"

	"tradedesk/internal/core/id"
	"tradedesk/internal/domain"
)

// Repository defines persistence for pickups.
type Repository interface {
	domain.DocumentRepository[*Pickup]

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	// MarkInwarded sets is_inwarded and the inward entry id.
	MarkInwarded(ctx context.Context, pickupID, inwardID id.ID) error
}
