package dto

import (
	"strings"

	"tradedesk/internal/core/entity"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain/catalogs/bank"
	"tradedesk/internal/domain/catalogs/company"
	"tradedesk/internal/domain/catalogs/product"
	"tradedesk/internal/domain/catalogs/warehouse"
)

// CatalogFields are the fields every catalog request carries. Version is
// required on update.
type CatalogFields struct {
	Code       string            `json:"code" binding:"omitempty,max=64"`
	Name       string            `json:"name" binding:"required,max=255"`
	Attributes entity.Attributes `json:"attributes"`
	Version    int               `json:"version" binding:"omitempty,min=1"`
}

// Catalog returns the shared catalog fields of a request.
func (f CatalogFields) Catalog() CatalogFields {
	return f
}

// ApplyTo copies the fields onto c. An empty code keeps the current one.
func (f CatalogFields) ApplyTo(c *entity.Catalog) {
	if code := strings.TrimSpace(f.Code); code != "" {
		c.Code = code
	}
	c.Name = strings.TrimSpace(f.Name)
	if f.Attributes != nil {
		c.Attributes = f.Attributes.Clone()
	}
}

// CatalogRequest is a create/update body for catalog T.
type CatalogRequest[T any] interface {
	Catalog() CatalogFields
	Apply(T)
}

type CompanyRequest struct {
	CatalogFields
	Kind    string  `json:"kind" binding:"omitempty,oneof=buyer supplier consignee other"`
	TaxID   *string `json:"tax_id" binding:"omitempty,max=32"`
	Country string  `json:"country" binding:"omitempty,len=2"`
	Address *string `json:"address"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone" binding:"omitempty,max=32"`
}

// Apply copies the request onto c.
func (r CompanyRequest) Apply(c *company.Company) {
	r.ApplyTo(&c.Catalog)
	if r.Kind != "" {
		c.Kind = company.Kind(r.Kind)
	}
	c.TaxID = r.TaxID
	c.Country = strings.ToUpper(r.Country)
	c.Address = r.Address
	c.Email = r.Email
	c.Phone = r.Phone
}

type ProductRequest struct {
	CatalogFields
	HSNCode     string      `json:"hsn_code" binding:"omitempty,max=16"`
	Unit        string      `json:"unit" binding:"omitempty,max=16"`
	DefaultRate types.Money `json:"default_rate" binding:"decimal_gte0"`
	Description *string     `json:"description"`
}

// Apply copies the request onto p.
func (r ProductRequest) Apply(p *product.Product) {
	r.ApplyTo(&p.Catalog)
	p.HSNCode = r.HSNCode
	p.Unit = r.Unit
	p.DefaultRate = r.DefaultRate
	p.Description = r.Description
}

type WarehouseRequest struct {
	CatalogFields
	Location *string `json:"location"`
	IsActive *bool   `json:"is_active"`
}

// Apply copies the request onto w.
func (r WarehouseRequest) Apply(w *warehouse.Warehouse) {
	r.ApplyTo(&w.Catalog)
	w.Location = r.Location
	if r.IsActive != nil {
		w.IsActive = *r.IsActive
	}
}

type BankRequest struct {
	CatalogFields
	AccountNumber string  `json:"account_number" binding:"required,max=64"`
	IFSC          *string `json:"ifsc" binding:"omitempty,len=11"`
	SWIFT         *string `json:"swift" binding:"omitempty,min=8,max=11"`
	Branch        *string `json:"branch"`
	Currency      string  `json:"currency" binding:"omitempty,len=3"`
}

// Apply copies the request onto b.
func (r BankRequest) Apply(b *bank.Bank) {
	r.ApplyTo(&b.Catalog)
	b.AccountNumber = r.AccountNumber
	b.IFSC = r.IFSC
	b.SWIFT = r.SWIFT
	b.Branch = r.Branch
	if r.Currency != "" {
		b.Currency = strings.ToUpper(r.Currency)
	}
}
