package inward

import (
	"context"

	"tradedesk/internal/core/id"
	"tradedesk/internal/domain"
)

// Repository defines persistence for inward entries.
type Repository interface {
	domain.DocumentRepository[*Entry]

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	// ReleasePickup clears the inwarded flag of the pickup an entry came from.
	ReleasePickup(ctx context.Context, pickupID id.ID) error
}
