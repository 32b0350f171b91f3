package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"tradedesk/internal/core/entity"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain/documents"
	"tradedesk/internal/domain/documents/expense"
	"tradedesk/internal/domain/documents/inward"
	"tradedesk/internal/domain/documents/outward"
	"tradedesk/internal/domain/documents/pickup"
	"tradedesk/internal/domain/documents/purchase_invoice"
	"tradedesk/internal/domain/documents/purchase_order"
)

// DocumentFields are the header fields every document request carries. An
// empty number is generated on create and kept on update.
type DocumentFields struct {
	Number  string `json:"number" binding:"omitempty,max=64"`
	Date    Date   `json:"date"`
	Comment string `json:"comment" binding:"omitempty,max=2000"`
	Version int    `json:"version" binding:"omitempty,min=1"`
}

// Header returns the shared document header fields of a request.
func (f DocumentFields) Header() DocumentFields {
	return f
}

// ApplyTo copies the header onto d. An empty number or date keeps the current value.
func (f DocumentFields) ApplyTo(d *entity.Document) {
	if number := strings.TrimSpace(f.Number); number != "" {
		d.Number = number
	}
	if !f.Date.IsZero() {
		d.Date = f.Date.Time
	}
	d.Comment = f.Comment
}

// DocumentRequest is a create/update body for document T. ProductIDs lists
// the products whose SKUs the handler resolves before Apply.
type DocumentRequest[T any] interface {
	Header() DocumentFields
	ProductIDs() []id.ID
	Apply(doc T, skus map[id.ID]string)
}

// LineRequest is a priced line. LineID keeps an existing line on update.
type LineRequest struct {
	LineID    *id.ID         `json:"line_id"`
	ProductID id.ID          `json:"product_id"`
	SKU       string         `json:"sku" binding:"omitempty,max=64"`
	Quantity  types.Quantity `json:"quantity" binding:"qty_positive"`
	Rate      types.Money    `json:"rate" binding:"decimal_gte0"`
}

func (l LineRequest) toLine(skus map[id.ID]string) documents.Line {
	line := documents.Line{
		ProductID: l.ProductID,
		SKU:       strings.TrimSpace(l.SKU),
		Quantity:  l.Quantity,
		Rate:      l.Rate,
	}
	if l.LineID != nil {
		line.LineID = *l.LineID
	}
	if sku, ok := skus[l.ProductID]; ok && line.SKU == "" {
		line.SKU = sku
	}
	return line
}

func lineProducts(lines []LineRequest) []id.ID {
	out := make([]id.ID, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.ProductID)
	}
	return out
}

func toLines(in []LineRequest, skus map[id.ID]string) []documents.Line {
	out := make([]documents.Line, 0, len(in))
	for _, l := range in {
		out = append(out, l.toLine(skus))
	}
	return out
}

type PurchaseInvoiceRequest struct {
	DocumentFields
	BuyerID     id.ID         `json:"buyer_id"`
	ConsigneeID *id.ID        `json:"consignee_id"`
	Status      string        `json:"status" binding:"omitempty,oneof=draft confirmed cancelled"`
	Currency    string        `json:"currency" binding:"omitempty,len=3"`
	Lines       []LineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ProductIDs lists the products whose SKU must be resolved.
func (r PurchaseInvoiceRequest) ProductIDs() []id.ID { return lineProducts(r.Lines) }

// Apply copies the request onto doc. Missing SKUs come from skus.
func (r PurchaseInvoiceRequest) Apply(doc *purchase_invoice.PurchaseInvoice, skus map[id.ID]string) {
	r.ApplyTo(&doc.Document)
	doc.BuyerID = r.BuyerID
	doc.ConsigneeID = r.ConsigneeID
	if r.Status != "" {
		doc.Status = purchase_invoice.Status(r.Status)
	}
	if r.Currency != "" {
		doc.Currency = strings.ToUpper(r.Currency)
	}
	doc.Lines = toLines(r.Lines, skus)
}

type PurchaseOrderRequest struct {
	DocumentFields
	SupplierID id.ID         `json:"supplier_id"`
	Currency   string        `json:"currency" binding:"omitempty,len=3"`
	PIIDs      []id.ID       `json:"pi_ids"`
	Lines      []LineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ProductIDs lists the products whose SKU must be resolved.
func (r PurchaseOrderRequest) ProductIDs() []id.ID { return lineProducts(r.Lines) }

// Apply copies the request onto doc, including the linked PI ids.
func (r PurchaseOrderRequest) Apply(doc *purchase_order.PurchaseOrder, skus map[id.ID]string) {
	r.ApplyTo(&doc.Document)
	doc.SupplierID = r.SupplierID
	if r.Currency != "" {
		doc.Currency = strings.ToUpper(r.Currency)
	}
	doc.PIIDs = r.PIIDs
	doc.Lines = toLines(r.Lines, skus)
}

// PickupLineRequest names a PO line; product and SKU are copied from it.
type PickupLineRequest struct {
	LineID   *id.ID         `json:"line_id"`
	POLineID id.ID          `json:"po_line_id"`
	Quantity types.Quantity `json:"quantity" binding:"qty_positive"`
}

type PickupRequest struct {
	DocumentFields
	POID        id.ID               `json:"po_id"`
	WarehouseID id.ID               `json:"warehouse_id"`
	Lines       []PickupLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ProductIDs is empty; pickup lines take product and SKU from the PO line.
func (r PickupRequest) ProductIDs() []id.ID { return nil }

// Apply copies the request onto doc.
func (r PickupRequest) Apply(doc *pickup.Pickup, _ map[id.ID]string) {
	r.ApplyTo(&doc.Document)
	doc.POID = r.POID
	doc.WarehouseID = r.WarehouseID
	doc.Lines = make([]pickup.Line, 0, len(r.Lines))
	for _, l := range r.Lines {
		line := pickup.Line{POLineID: l.POLineID, Quantity: l.Quantity}
		if l.LineID != nil {
			line.LineID = *l.LineID
		}
		doc.Lines = append(doc.Lines, line)
	}
}

// PickupInwardRequest sets the header of the inward entry created from a pickup.
type PickupInwardRequest struct {
	Number  string `json:"number" binding:"omitempty,max=64"`
	Date    Date   `json:"date"`
	Comment string `json:"comment"`
}

// ToInput converts the request into the header of the new inward entry.
func (r PickupInwardRequest) ToInput() pickup.InwardInput {
	return pickup.InwardInput{Number: strings.TrimSpace(r.Number), Date: r.Date.Time, Comment: r.Comment}
}

type InwardLineRequest struct {
	LineRequest
	POID *id.ID `json:"po_id"`
}

type InwardRequest struct {
	DocumentFields
	Kind        string              `json:"kind" binding:"required,oneof=warehouse direct"`
	WarehouseID id.ID               `json:"warehouse_id"`
	SupplierID  *id.ID              `json:"supplier_id"`
	Lines       []InwardLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ProductIDs lists the products of lines without a SKU.
func (r InwardRequest) ProductIDs() []id.ID {
	out := make([]id.ID, 0, len(r.Lines))
	for _, l := range r.Lines {
		out = append(out, l.ProductID)
	}
	return out
}

// Apply copies the request onto doc. Missing SKUs come from skus.
func (r InwardRequest) Apply(doc *inward.Entry, skus map[id.ID]string) {
	r.ApplyTo(&doc.Document)
	doc.Kind = inward.Kind(r.Kind)
	doc.WarehouseID = r.WarehouseID
	doc.SupplierID = r.SupplierID
	doc.Lines = make([]inward.Line, 0, len(r.Lines))
	for _, l := range r.Lines {
		doc.Lines = append(doc.Lines, inward.Line{Line: l.toLine(skus), POID: l.POID})
	}
}

type OutwardLineRequest struct {
	LineRequest
	Dimensions  string          `json:"dimensions" binding:"omitempty,max=128"`
	NetWeight   decimal.Decimal `json:"net_weight" binding:"decimal_gte0"`
	GrossWeight decimal.Decimal `json:"gross_weight" binding:"decimal_gte0"`
}

type OutwardRequest struct {
	DocumentFields
	Kind        string               `json:"kind" binding:"required,oneof=dispatch_plan export_invoice direct_export"`
	WarehouseID *id.ID               `json:"warehouse_id"`
	PIID        *id.ID               `json:"pi_id"`
	BuyerID     *id.ID               `json:"buyer_id"`
	Lines       []OutwardLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ProductIDs lists the products of lines without a SKU.
func (r OutwardRequest) ProductIDs() []id.ID {
	out := make([]id.ID, 0, len(r.Lines))
	for _, l := range r.Lines {
		out = append(out, l.ProductID)
	}
	return out
}

// Apply copies the request onto doc. Missing SKUs come from skus.
func (r OutwardRequest) Apply(doc *outward.Entry, skus map[id.ID]string) {
	r.ApplyTo(&doc.Document)
	doc.Kind = outward.Kind(r.Kind)
	doc.WarehouseID = r.WarehouseID
	doc.PIID = r.PIID
	doc.BuyerID = r.BuyerID
	doc.Lines = make([]outward.Line, 0, len(r.Lines))
	for _, l := range r.Lines {
		doc.Lines = append(doc.Lines, outward.Line{
			Line:        l.toLine(skus),
			Dimensions:  l.Dimensions,
			NetWeight:   l.NetWeight,
			GrossWeight: l.GrossWeight,
		})
	}
}

type ChargeRequest struct {
	ChargeID    *id.ID      `json:"charge_id"`
	Category    string      `json:"category" binding:"required,max=64"`
	Description string      `json:"description" binding:"omitempty,max=500"`
	Amount      types.Money `json:"amount" binding:"decimal_gte0"`
}

type ExpenseRequest struct {
	DocumentFields
	OutwardID *id.ID          `json:"outward_id"`
	CompanyID *id.ID          `json:"company_id"`
	Charges   []ChargeRequest `json:"charges" binding:"required,min=1,dive"`
}

// ProductIDs is empty; expense records have no product lines.
func (r ExpenseRequest) ProductIDs() []id.ID { return nil }

// Apply copies the request and its charges onto doc.
func (r ExpenseRequest) Apply(doc *expense.Record, _ map[id.ID]string) {
	r.ApplyTo(&doc.Document)
	doc.OutwardID = r.OutwardID
	doc.CompanyID = r.CompanyID
	doc.Charges = make([]expense.Charge, 0, len(r.Charges))
	for _, ch := range r.Charges {
		charge := expense.Charge{Category: ch.Category, Description: ch.Description, Amount: ch.Amount}
		if ch.ChargeID != nil {
			charge.ChargeID = *ch.ChargeID
		}
		doc.Charges = append(doc.Charges, charge)
	}
}
