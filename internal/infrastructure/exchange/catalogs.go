package exchange

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain/catalogs/bank"
	"tradedesk/internal/domain/catalogs/company"
	"tradedesk/internal/domain/catalogs/product"
	"tradedesk/internal/domain/catalogs/warehouse"
)

var rowValidate = newRowValidator()

func newRowValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("col")
	})
	return v
}

type productRow struct {
	SKU         string `col:"sku" validate:"required,max=64"`
	Name        string `col:"name" validate:"required,max=255"`
	DefaultRate string `col:"default_rate" validate:"omitempty,numeric"`
}

type companyRow struct {
	Code  string `col:"code" validate:"required,max=64"`
	Name  string `col:"name" validate:"required,max=255"`
	Kind  string `col:"kind" validate:"omitempty,oneof=buyer supplier consignee other"`
	Email string `col:"email" validate:"omitempty,email"`
}

// rowError turns the first validator failure into a validation error naming the row.
func rowError(row int, err error) error {
	appErr := apperror.NewValidation("invalid row").WithDetail("row", row)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		appErr.Message = fe.Field() + " is invalid (" + fe.Tag() + ")"
		if fe.Tag() == "required" {
			appErr.Message = fe.Field() + " is required"
		}
		appErr.WithDetail("field", fe.Field())
	}
	return appErr
}

// ProductsFromRecords maps upload rows to products. The sku column may be
// headed "sku" or "code".
func ProductsFromRecords(records []Record) ([]*product.Product, error) {
	out := make([]*product.Product, 0, len(records))
	for _, rec := range records {
		row := productRow{
			SKU:         rec.Get("sku", "code"),
			Name:        rec.Get("name", "product_name"),
			DefaultRate: rec.Get("default_rate", "rate"),
		}
		if err := rowValidate.Struct(row); err != nil {
			return nil, rowError(rec.Row, err)
		}

		p := product.NewProduct(row.SKU, row.Name)
		p.HSNCode = rec.Get("hsn_code", "hsn")
		if unit := rec.Get("unit"); unit != "" {
			p.Unit = unit
		}
		if row.DefaultRate != "" {
			rate, err := types.NewMoneyFromString(row.DefaultRate)
			if err != nil {
				return nil, apperror.NewValidation("default_rate is invalid").WithDetail("row", rec.Row)
			}
			p.DefaultRate = rate
		}
		p.Description = rec.Optional("description")
		out = append(out, p)
	}
	return out, nil
}

// CompaniesFromRecords maps upload rows to companies. Kind defaults to other.
func CompaniesFromRecords(records []Record) ([]*company.Company, error) {
	out := make([]*company.Company, 0, len(records))
	for _, rec := range records {
		row := companyRow{
			Code:  rec.Get("code"),
			Name:  rec.Get("name", "company_name"),
			Kind:  strings.ToLower(rec.Get("kind", "type")),
			Email: rec.Get("email"),
		}
		if err := rowValidate.Struct(row); err != nil {
			return nil, rowError(rec.Row, err)
		}

		kind := company.Kind(row.Kind)
		if kind == "" {
			kind = company.KindOther
		}
		c := company.NewCompany(row.Code, row.Name, kind)
		c.TaxID = rec.Optional("tax_id", "gstin")
		c.Country = strings.ToUpper(rec.Get("country"))
		c.Address = rec.Optional("address")
		c.Email = rec.Optional("email")
		c.Phone = rec.Optional("phone")
		out = append(out, c)
	}
	return out, nil
}

var ProductColumns = []Column[*product.Product]{
	{"SKU", func(p *product.Product) any { return p.Code }},
	{"Name", func(p *product.Product) any { return p.Name }},
	{"HSN Code", func(p *product.Product) any { return p.HSNCode }},
	{"Unit", func(p *product.Product) any { return p.Unit }},
	{"Default Rate", func(p *product.Product) any { return p.DefaultRate }},
	{"Description", func(p *product.Product) any { return p.Description }},
}

var CompanyColumns = []Column[*company.Company]{
	{"Code", func(c *company.Company) any { return c.Code }},
	{"Name", func(c *company.Company) any { return c.Name }},
	{"Kind", func(c *company.Company) any { return string(c.Kind) }},
	{"Tax ID", func(c *company.Company) any { return c.TaxID }},
	{"Country", func(c *company.Company) any { return c.Country }},
	{"Address", func(c *company.Company) any { return c.Address }},
	{"Email", func(c *company.Company) any { return c.Email }},
	{"Phone", func(c *company.Company) any { return c.Phone }},
}

var WarehouseColumns = []Column[*warehouse.Warehouse]{
	{"Code", func(w *warehouse.Warehouse) any { return w.Code }},
	{"Name", func(w *warehouse.Warehouse) any { return w.Name }},
	{"Location", func(w *warehouse.Warehouse) any { return w.Location }},
	{"Active", func(w *warehouse.Warehouse) any { return w.IsActive }},
}

var BankColumns = []Column[*bank.Bank]{
	{"Code", func(b *bank.Bank) any { return b.Code }},
	{"Name", func(b *bank.Bank) any { return b.Name }},
	{"Account Number", func(b *bank.Bank) any { return b.AccountNumber }},
	{"IFSC", func(b *bank.Bank) any { return b.IFSC }},
	{"SWIFT", func(b *bank.Bank) any { return b.SWIFT }},
	{"Branch", func(b *bank.Bank) any { return b.Branch }},
	{"Currency", func(b *bank.Bank) any { return b.Currency }},
}
