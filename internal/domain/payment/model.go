// Package payment tracks what a buyer has paid against a PI. All totals are
// derived from the entries on read; nothing derived is stored.
package payment

import (
	"strings"
	"time"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/entity"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
)

// Entry is a received payment.
type Entry struct {
	ID             id.ID       `db:"id" json:"id"`
	RecordID       id.ID       `db:"record_id" json:"-"`
	Date           time.Time   `db:"date" json:"date"`
	ReceivedAmount types.Money `db:"received_amount" json:"received_amount"`
	ReceiptNumber  string      `db:"receipt_number" json:"receipt_number,omitempty"`
	BankID         *id.ID      `db:"bank_id" json:"bank_id,omitempty"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
}

// Extra is an additional amount settled outside the normal receipts, such as
// bank charges or a discount.
type Extra struct {
	ID          id.ID       `db:"id" json:"id"`
	RecordID    id.ID       `db:"record_id" json:"-"`
	Date        time.Time   `db:"date" json:"date"`
	Description string      `db:"description" json:"description"`
	Amount      types.Money `db:"amount" json:"amount"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// Record is the payment record of one PI.
type Record struct {
	entity.BaseDocument

	PIID           id.ID       `db:"pi_id" json:"pi_id"`
	PINumber       string      `db:"pi_number" json:"pi_number,omitempty"`
	TotalAmount    types.Money `db:"total_amount" json:"total_amount"`
	AdvancePayment types.Money `db:"advance_payment" json:"advance_payment"`

	ShortPaymentStatus   bool       `db:"short_payment_status" json:"short_payment_status"`
	ShortPaymentNote     *string    `db:"short_payment_note" json:"short_payment_note,omitempty"`
	ShortPaymentClosedAt *time.Time `db:"short_payment_closed_at" json:"short_payment_closed_at,omitempty"`
	ReopenedAt           *time.Time `db:"reopened_at" json:"reopened_at,omitempty"`

	Entries []Entry `db:"-" json:"entries"`
	Extras  []Extra `db:"-" json:"extra_payments"`
}

// NewRecord creates an open record for a PI.
func NewRecord(piID id.ID, total, advance types.Money) *Record {
	return &Record{
		BaseDocument:   entity.NewBaseDocument(),
		PIID:           piID,
		TotalAmount:    total,
		AdvancePayment: advance,
	}
}

// Summary holds the derived figures.
type Summary struct {
	TotalReceived      types.Money `json:"total_received"`
	ExtraPaymentsTotal types.Money `json:"extra_payments_total"`
	RemainingPayment   types.Money `json:"remaining_payment"`
	IsFullyPaid        bool        `json:"is_fully_paid"`
}

// Summary computes
//
//	total_received    = advance + Σ entries
//	remaining_payment = total − total_received − Σ extras
//	is_fully_paid     = remaining ≤ 0 and not closed as short payment
func (r *Record) Summary() Summary {
	received := r.AdvancePayment
	for _, e := range r.Entries {
		received = received.Add(e.ReceivedAmount)
	}
	extras := types.Zero()
	for _, x := range r.Extras {
		extras = extras.Add(x.Amount)
	}
	remaining := r.TotalAmount.Sub(received).Sub(extras)

	return Summary{
		TotalReceived:      received,
		ExtraPaymentsTotal: extras,
		RemainingPayment:   remaining,
		IsFullyPaid:        !remaining.IsPositive() && !r.ShortPaymentStatus,
	}
}

// View is a record with its summary, as returned to clients.
type View struct {
	*Record
	Summary
}

// View pairs the record with its computed summary.
func (r *Record) View() View {
	return View{Record: r, Summary: r.Summary()}
}

// CanAddEntry rejects payments on closed or settled records.
func (r *Record) CanAddEntry() error {
	if r.ShortPaymentStatus {
		return apperror.NewBusinessRule(apperror.CodePaymentClosed, "payment record is closed as short payment").
			WithDetail("record_id", r.ID.String())
	}
	if r.Summary().IsFullyPaid {
		return apperror.NewBusinessRule(apperror.CodeAlreadyFullyPaid, "already fully paid").
			WithDetail("record_id", r.ID.String())
	}
	return nil
}

// CloseShort marks the record settled short. A note is required.
func (r *Record) CloseShort(note string, at time.Time) error {
	note = strings.TrimSpace(note)
	if note == "" {
		return apperror.NewValidation("a note is required to close as short payment").
			WithDetail("field", "note")
	}
	if r.ShortPaymentStatus {
		return apperror.NewBusinessRule(apperror.CodePaymentClosed, "payment record is already closed").
			WithDetail("record_id", r.ID.String())
	}
	r.ShortPaymentStatus = true
	r.ShortPaymentNote = &note
	r.ShortPaymentClosedAt = &at
	return nil
}

// Reopen clears the short-payment flag. The note stays as history.
func (r *Record) Reopen(at time.Time) error {
	if !r.ShortPaymentStatus {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "payment record is not closed").
			WithDetail("record_id", r.ID.String())
	}
	r.ShortPaymentStatus = false
	r.ReopenedAt = &at
	return nil
}

// ValidateAmounts checks header amounts.
func (r *Record) ValidateAmounts() error {
	if id.IsNil(r.PIID) {
		return apperror.NewValidation("purchase invoice is required").WithDetail("field", "pi_id")
	}
	if r.TotalAmount.IsNegative() {
		return apperror.NewValidation("total amount must not be negative").WithDetail("field", "total_amount")
	}
	if r.AdvancePayment.IsNegative() {
		return apperror.NewValidation("advance payment must not be negative").WithDetail("field", "advance_payment")
	}
	return nil
}
