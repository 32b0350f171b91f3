// Package expense provides expense records: charges incurred for an export
// invoice, such as freight, customs or insurance.
package expense

import (
	"context"
	"strings"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/entity"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
)

// Charge is one expense line.
type Charge struct {
	ChargeID    id.ID       `db:"charge_id" json:"charge_id"`
	DocumentID  id.ID       `db:"document_id" json:"-"`
	LineNo      int         `db:"line_no" json:"line_no"`
	Category    string      `db:"category" json:"category"`
	Description string      `db:"description" json:"description,omitempty"`
	Amount      types.Money `db:"amount" json:"amount"`
}

// Record is an expense header with its charges.
type Record struct {
	entity.Document

	OutwardID   *id.ID      `db:"outward_id" json:"outward_id,omitempty"`
	CompanyID   *id.ID      `db:"company_id" json:"company_id,omitempty"`
	TotalAmount types.Money `db:"total_amount" json:"total_amount"`

	Charges []Charge `db:"-" json:"charges"`
}

// NewRecord creates an expense record, optionally tied to an outward entry.
func NewRecord(outwardID *id.ID) *Record {
	return &Record{Document: entity.NewDocument(), OutwardID: outwardID}
}

// Recalculate numbers the charges and sums the total.
func (r *Record) Recalculate() {
	total := types.Zero()
	for i := range r.Charges {
		c := &r.Charges[i]
		c.DocumentID = r.ID
		c.LineNo = i + 1
		if id.IsNil(c.ChargeID) {
			c.ChargeID = id.New()
		}
		c.Amount = c.Amount.Round(types.MoneyScale)
		total = total.Add(c.Amount)
	}
	r.TotalAmount = total
}

// Validate implements entity.Validatable.
func (r *Record) Validate(ctx context.Context) error {
	if err := r.Document.Validate(ctx); err != nil {
		return err
	}
	if len(r.Charges) == 0 {
		return apperror.NewValidation("at least one charge is required").WithDetail("field", "charges")
	}
	for i, c := range r.Charges {
		if strings.TrimSpace(c.Category) == "" {
			return apperror.NewValidation("category is required").
				WithDetail("field", "charges").
				WithDetail("lineNo", i+1)
		}
		if c.Amount.IsNegative() {
			return apperror.NewValidation("amount must not be negative").
				WithDetail("field", "charges").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}
