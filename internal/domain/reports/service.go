package reports

import (
	"context"
	"fmt"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
)

// Service builds reports.
type Service struct {
	repo Repository
}

// NewService creates a report service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CalculatePL builds the P&L statement for the selected export invoices.
// With a SKU filter only the matching lines count, and each invoice's
// expenses are pro-rated by the export value of those lines.
func (s *Service) CalculatePL(ctx context.Context, filter PLFilter) (PLReport, error) {
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		return PLReport{}, apperror.NewValidation("date_from must not be after date_to")
	}

	lines, err := s.repo.InvoiceLines(ctx, filter)
	if err != nil {
		return PLReport{}, fmt.Errorf("load invoice lines: %w", err)
	}

	seenPI := make(map[id.ID]struct{})
	seenOut := make(map[id.ID]struct{})
	var piIDs, outwardIDs []id.ID
	for _, l := range lines {
		if l.PIID != nil {
			if _, ok := seenPI[*l.PIID]; !ok {
				seenPI[*l.PIID] = struct{}{}
				piIDs = append(piIDs, *l.PIID)
			}
		}
		if _, ok := seenOut[l.OutwardID]; !ok {
			seenOut[l.OutwardID] = struct{}{}
			outwardIDs = append(outwardIDs, l.OutwardID)
		}
	}

	var volumes []POVolume
	if len(piIDs) > 0 {
		if volumes, err = s.repo.POVolumes(ctx, piIDs); err != nil {
			return PLReport{}, fmt.Errorf("load PO volumes: %w", err)
		}
	}
	expenses, err := s.repo.ExpenseTotals(ctx, outwardIDs)
	if err != nil {
		return PLReport{}, fmt.Errorf("load expenses: %w", err)
	}
	if filter.SKU != "" && len(expenses) > 0 {
		full, err := s.repo.InvoiceTotals(ctx, outwardIDs)
		if err != nil {
			return PLReport{}, fmt.Errorf("load invoice totals: %w", err)
		}
		included := make(map[id.ID]types.Money, len(outwardIDs))
		for _, l := range lines {
			included[l.OutwardID] = included[l.OutwardID].Add(l.Amount)
		}
		expenses = ProrateExpenses(expenses, included, full)
	}

	return CalculatePL(lines, volumes, expenses), nil
}

// PIPOMapping returns one page of the mapping, at most 500 rows.
func (s *Service) PIPOMapping(ctx context.Context, filter MappingFilter) (MappingPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	page, err := s.repo.PIPOMapping(ctx, filter)
	if err != nil {
		return MappingPage{}, fmt.Errorf("get pi-po mapping: %w", err)
	}
	page.Limit = filter.Limit
	page.Offset = filter.Offset
	return page, nil
}
