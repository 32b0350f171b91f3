package reports

import (
	"context"

	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
)

// Repository reads the report inputs.
type Repository interface {
	// InvoiceLines returns export invoice lines matching the filter.
	InvoiceLines(ctx context.Context, filter PLFilter) ([]InvoiceLine, error)
	// POVolumes sums PO lines per PI and product over the POs linked to the PIs.
	POVolumes(ctx context.Context, piIDs []id.ID) ([]POVolume, error)
	// ExpenseTotals sums charges of expense records per outward entry.
	ExpenseTotals(ctx context.Context, outwardIDs []id.ID) (map[id.ID]types.Money, error)
	// InvoiceTotals returns the stored total amount of each outward entry.
	InvoiceTotals(ctx context.Context, outwardIDs []id.ID) (map[id.ID]types.Money, error)
	// PIPOMapping returns one page of PI lines paired with PO lines.
	PIPOMapping(ctx context.Context, filter MappingFilter) (MappingPage, error)
}
