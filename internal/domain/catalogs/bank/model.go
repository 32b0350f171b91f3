// Package bank provides the Bank catalog: accounts that receive payments.
package bank

import (
	"context"
	"regexp"
	"strings"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/entity"
)

var (
	ifscRE  = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	swiftRE = regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`)
)

// Bank is a bank account.
type Bank struct {
	entity.Catalog

	AccountNumber string  `db:"account_number" json:"account_number"`
	IFSC          *string `db:"ifsc" json:"ifsc,omitempty"`
	SWIFT         *string `db:"swift" json:"swift,omitempty"`
	Branch        *string `db:"branch" json:"branch,omitempty"`
	Currency      string  `db:"currency" json:"currency"`
}

// NewBank creates a bank account record.
func NewBank(code, name, account string) *Bank {
	return &Bank{
		Catalog:       entity.NewCatalog(code, name),
		AccountNumber: account,
		Currency:      "INR",
	}
}

// Validate implements entity.Validatable.
func (b *Bank) Validate(ctx context.Context) error {
	if err := b.Catalog.Validate(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(b.AccountNumber) == "" {
		return apperror.NewValidation("account number is required").WithDetail("field", "account_number")
	}
	if b.IFSC != nil && *b.IFSC != "" && !ifscRE.MatchString(strings.ToUpper(*b.IFSC)) {
		return apperror.NewValidation("invalid IFSC").WithDetail("field", "ifsc")
	}
	if b.SWIFT != nil && *b.SWIFT != "" && !swiftRE.MatchString(strings.ToUpper(*b.SWIFT)) {
		return apperror.NewValidation("invalid SWIFT code").WithDetail("field", "swift")
	}
	if b.Currency == "" {
		b.Currency = "INR"
	}
	if len(b.Currency) != 3 {
		return apperror.NewValidation("currency must be an ISO 4217 code").WithDetail("field", "currency")
	}
	b.Currency = strings.ToUpper(b.Currency)
	return nil
}
