package outward

import (
	"context"

	"tradedesk/internal/core/id"
	"tradedesk/internal/domain"
)

// Repository defines persistence for outward entries.
type Repository interface {
	domain.DocumentRepository[*Entry]

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error
}
