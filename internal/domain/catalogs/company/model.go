// Package company provides the Company catalog: buyers, suppliers and
// consignees named on trade documents.
package company

import (
	"context"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/entity"
)

var (
	validate = validator.New()
	gstinRE  = regexp.MustCompile(`^[0-9]{2}[A-Z0-9]{13}$`)
)

// Kind is the role a company plays on documents.
type Kind string

const (
	KindBuyer     Kind = "buyer"
	KindSupplier  Kind = "supplier"
	KindConsignee Kind = "consignee"
	KindOther     Kind = "other"
)

// Valid reports whether k is a known company kind.
func (k Kind) Valid() bool {
	switch k {
	case KindBuyer, KindSupplier, KindConsignee, KindOther:
		return true
	}
	return false
}

// Company is a trading partner.
type Company struct {
	entity.Catalog

	Kind Kind `db:"kind" json:"kind"`

	// TaxID is the GSTIN for Indian companies, free-form otherwise.
	TaxID   *string `db:"tax_id" json:"tax_id,omitempty"`
	Country string  `db:"country" json:"country,omitempty"`
	Address *string `db:"address" json:"address,omitempty"`
	Email   *string `db:"email" json:"email,omitempty"`
	Phone   *string `db:"phone" json:"phone,omitempty"`
}

// NewCompany creates a company of the given kind.
func NewCompany(code, name string, kind Kind) *Company {
	return &Company{
		Catalog: entity.NewCatalog(code, name),
		Kind:    kind,
	}
}

// Validate implements entity.Validatable.
func (c *Company) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if c.Kind == "" {
		c.Kind = KindOther
	}
	if !c.Kind.Valid() {
		return apperror.NewValidation("invalid company kind").
			WithDetail("field", "kind").
			WithDetail("value", string(c.Kind))
	}

	if c.Email != nil && *c.Email != "" {
		if err := validate.Var(*c.Email, "email"); err != nil {
			return apperror.NewValidation("invalid email").WithDetail("field", "email")
		}
	}

	// GSTIN is only checked for Indian companies.
	if c.TaxID != nil && strings.EqualFold(c.Country, "IN") {
		if !gstinRE.MatchString(strings.ToUpper(*c.TaxID)) {
			return apperror.NewValidation("invalid GSTIN").WithDetail("field", "tax_id")
		}
	}
	return nil
}
