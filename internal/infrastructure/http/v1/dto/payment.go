package dto

import (
	"strings"

	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain/payment"
)

type CreatePaymentRequest struct {
	PIID           id.ID        `json:"pi_id"`
	AdvancePayment types.Money  `json:"advance_payment" binding:"decimal_gte0"`
	TotalAmount    *types.Money `json:"total_amount" binding:"omitempty,decimal_gte0"`
}

// ToInput converts the request for payment.Service.Create.
func (r CreatePaymentRequest) ToInput() payment.CreateInput {
	return payment.CreateInput{PIID: r.PIID, AdvancePayment: r.AdvancePayment, TotalAmount: r.TotalAmount}
}

// UpdatePaymentRequest changes header amounts. RefreshTotal reloads the total
// from the purchase invoice.
type UpdatePaymentRequest struct {
	AdvancePayment *types.Money `json:"advance_payment" binding:"omitempty,decimal_gte0"`
	TotalAmount    *types.Money `json:"total_amount" binding:"omitempty,decimal_gte0"`
	RefreshTotal   bool         `json:"refresh_total"`
}

// ToInput converts the request for payment.Service.Update.
func (r UpdatePaymentRequest) ToInput() payment.UpdateInput {
	return payment.UpdateInput{AdvancePayment: r.AdvancePayment, TotalAmount: r.TotalAmount, RefreshTotal: r.RefreshTotal}
}

type PaymentEntryRequest struct {
	Date           Date        `json:"date"`
	ReceivedAmount types.Money `json:"received_amount" binding:"decimal_gte0"`
	ReceiptNumber  string      `json:"receipt_number" binding:"omitempty,max=64"`
	BankID         *id.ID      `json:"bank_id"`
}

// ToEntry converts the request into a payment entry.
func (r PaymentEntryRequest) ToEntry() payment.Entry {
	return payment.Entry{
		Date:           r.Date.Time,
		ReceivedAmount: r.ReceivedAmount,
		ReceiptNumber:  strings.TrimSpace(r.ReceiptNumber),
		BankID:         r.BankID,
	}
}

type ExtraPaymentRequest struct {
	Date        Date        `json:"date"`
	Description string      `json:"description" binding:"required,max=500"`
	Amount      types.Money `json:"amount"`
}

// ToExtra converts the request into an extra payment.
func (r ExtraPaymentRequest) ToExtra() payment.Extra {
	return payment.Extra{Date: r.Date.Time, Description: r.Description, Amount: r.Amount}
}

type CloseShortRequest struct {
	Note string `json:"note" binding:"required"`
}
