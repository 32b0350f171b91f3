// Package domain provides the repository contracts and generic services
// shared by catalogs and documents.
package domain

import (
	"context"
	"time"

	"tradedesk/internal/core/entity"
	"tradedesk/internal/core/id"
	"tradedesk/internal/domain/filter"
)

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search matches code/name for catalogs and number for documents.
	Search         string
	IDs            []id.ID
	IncludeDeleted bool

	// DateFrom/DateTo bound documents by business date, inclusive.
	DateFrom *time.Time
	DateTo   *time.Time

	AdvancedFilters []filter.Item

	// OrderBy is a column name, "-" prefix for descending.
	OrderBy string

	Limit  int
	Offset int
}

// DefaultListFilter returns the first page of 50.
func DefaultListFilter() ListFilter {
	return ListFilter{Limit: 50}
}

// Where appends an advanced filter and returns the updated copy.
func (f ListFilter) Where(items ...filter.Item) ListFilter {
	f.AdvancedFilters = append(append([]filter.Item(nil), f.AdvancedFilters...), items...)
	return f
}

// ListResult contains one page of results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// CatalogRepository defines persistence for master data.
type CatalogRepository[T entity.Validatable] interface {
	Create(ctx context.Context, entity T) error
	GetByID(ctx context.Context, id id.ID) (T, error)
	// GetByCode finds a non-deleted entity by its unique code.
	GetByCode(ctx context.Context, code string) (T, error)
	// Update uses optimistic locking on version.
	Update(ctx context.Context, entity T) error
	SetDeletionMark(ctx context.Context, id id.ID, marked bool) error
	List(ctx context.Context, filter ListFilter) (ListResult[T], error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// DocumentRepository defines persistence for document headers. Line items
// are handled by the concrete repositories.
type DocumentRepository[T entity.Validatable] interface {
	Create(ctx context.Context, doc T) error
	GetByID(ctx context.Context, id id.ID) (T, error)
	GetByNumber(ctx context.Context, number string) (T, error)
	// GetForUpdate locks the header row until the transaction ends.
	GetForUpdate(ctx context.Context, id id.ID) (T, error)
	Update(ctx context.Context, doc T) error
	// Delete removes the header; lines go with it via ON DELETE CASCADE.
	Delete(ctx context.Context, id id.ID) error
	List(ctx context.Context, filter ListFilter) (ListResult[T], error)
}
