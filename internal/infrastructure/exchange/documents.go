package exchange

import (
	"tradedesk/internal/domain/documents"
	"tradedesk/internal/domain/documents/expense"
	"tradedesk/internal/domain/documents/inward"
	"tradedesk/internal/domain/documents/outward"
	"tradedesk/internal/domain/documents/pickup"
	"tradedesk/internal/domain/documents/purchase_invoice"
	"tradedesk/internal/domain/documents/purchase_order"
	"tradedesk/internal/domain/payment"
)

// DocLine pairs a document with one of its lines. Documents are exported one
// row per line.
type DocLine[D, L any] struct {
	Doc  D
	Line L
}

// Flatten expands docs into line rows. A document without lines still gets one row.
func Flatten[D, L any](docs []D, lines func(D) []L) []DocLine[D, L] {
	out := make([]DocLine[D, L], 0, len(docs))
	for _, d := range docs {
		ls := lines(d)
		if len(ls) == 0 {
			var zero L
			out = append(out, DocLine[D, L]{Doc: d, Line: zero})
			continue
		}
		for _, l := range ls {
			out = append(out, DocLine[D, L]{Doc: d, Line: l})
		}
	}
	return out
}

type (
	PIRow      = DocLine[*purchase_invoice.PurchaseInvoice, documents.Line]
	PORow      = DocLine[*purchase_order.PurchaseOrder, documents.Line]
	PickupRow  = DocLine[*pickup.Pickup, pickup.Line]
	InwardRow  = DocLine[*inward.Entry, inward.Line]
	OutwardRow = DocLine[*outward.Entry, outward.Line]
	ExpenseRow = DocLine[*expense.Record, expense.Charge]
)

var PurchaseInvoiceColumns = []Column[PIRow]{
	{"Voucher No", func(r PIRow) any { return r.Doc.Number }},
	{"Date", func(r PIRow) any { return r.Doc.Date }},
	{"Buyer ID", func(r PIRow) any { return r.Doc.BuyerID }},
	{"Consignee ID", func(r PIRow) any { return r.Doc.ConsigneeID }},
	{"Status", func(r PIRow) any { return string(r.Doc.Status) }},
	{"Currency", func(r PIRow) any { return r.Doc.Currency }},
	{"SKU", func(r PIRow) any { return r.Line.SKU }},
	{"Quantity", func(r PIRow) any { return r.Line.Quantity }},
	{"Rate", func(r PIRow) any { return r.Line.Rate }},
	{"Amount", func(r PIRow) any { return r.Line.Amount }},
	{"Total Amount", func(r PIRow) any { return r.Doc.TotalAmount }},
}

var PurchaseOrderColumns = []Column[PORow]{
	{"Voucher No", func(r PORow) any { return r.Doc.Number }},
	{"Date", func(r PORow) any { return r.Doc.Date }},
	{"Supplier ID", func(r PORow) any { return r.Doc.SupplierID }},
	{"Currency", func(r PORow) any { return r.Doc.Currency }},
	{"SKU", func(r PORow) any { return r.Line.SKU }},
	{"PO Quantity", func(r PORow) any { return r.Line.Quantity }},
	{"Rate", func(r PORow) any { return r.Line.Rate }},
	{"Amount", func(r PORow) any { return r.Line.Amount }},
	{"Total Amount", func(r PORow) any { return r.Doc.TotalAmount }},
}

var PickupColumns = []Column[PickupRow]{
	{"Voucher No", func(r PickupRow) any { return r.Doc.Number }},
	{"Date", func(r PickupRow) any { return r.Doc.Date }},
	{"PO ID", func(r PickupRow) any { return r.Doc.POID }},
	{"Warehouse ID", func(r PickupRow) any { return r.Doc.WarehouseID }},
	{"Inwarded", func(r PickupRow) any { return r.Doc.IsInwarded }},
	{"SKU", func(r PickupRow) any { return r.Line.SKU }},
	{"Quantity", func(r PickupRow) any { return r.Line.Quantity }},
}

var InwardColumns = []Column[InwardRow]{
	{"Voucher No", func(r InwardRow) any { return r.Doc.Number }},
	{"Date", func(r InwardRow) any { return r.Doc.Date }},
	{"Kind", func(r InwardRow) any { return string(r.Doc.Kind) }},
	{"Warehouse ID", func(r InwardRow) any { return r.Doc.WarehouseID }},
	{"Supplier ID", func(r InwardRow) any { return r.Doc.SupplierID }},
	{"PO ID", func(r InwardRow) any { return r.Line.POID }},
	{"SKU", func(r InwardRow) any { return r.Line.SKU }},
	{"Quantity", func(r InwardRow) any { return r.Line.Quantity }},
	{"Rate", func(r InwardRow) any { return r.Line.Rate }},
	{"Amount", func(r InwardRow) any { return r.Line.Amount }},
}

var OutwardColumns = []Column[OutwardRow]{
	{"Voucher No", func(r OutwardRow) any { return r.Doc.Number }},
	{"Date", func(r OutwardRow) any { return r.Doc.Date }},
	{"Kind", func(r OutwardRow) any { return string(r.Doc.Kind) }},
	{"Warehouse ID", func(r OutwardRow) any { return r.Doc.WarehouseID }},
	{"PI ID", func(r OutwardRow) any { return r.Doc.PIID }},
	{"Buyer ID", func(r OutwardRow) any { return r.Doc.BuyerID }},
	{"SKU", func(r OutwardRow) any { return r.Line.SKU }},
	{"Quantity", func(r OutwardRow) any { return r.Line.Quantity }},
	{"Rate", func(r OutwardRow) any { return r.Line.Rate }},
	{"Amount", func(r OutwardRow) any { return r.Line.Amount }},
	{"Dimensions", func(r OutwardRow) any { return r.Line.Dimensions }},
	{"Net Weight", func(r OutwardRow) any { return r.Line.NetWeight }},
	{"Gross Weight", func(r OutwardRow) any { return r.Line.GrossWeight }},
}

var ExpenseColumns = []Column[ExpenseRow]{
	{"Voucher No", func(r ExpenseRow) any { return r.Doc.Number }},
	{"Date", func(r ExpenseRow) any { return r.Doc.Date }},
	{"Outward ID", func(r ExpenseRow) any { return r.Doc.OutwardID }},
	{"Company ID", func(r ExpenseRow) any { return r.Doc.CompanyID }},
	{"Category", func(r ExpenseRow) any { return r.Line.Category }},
	{"Description", func(r ExpenseRow) any { return r.Line.Description }},
	{"Amount", func(r ExpenseRow) any { return r.Line.Amount }},
	{"Total Amount", func(r ExpenseRow) any { return r.Doc.TotalAmount }},
}

var PaymentColumns = []Column[payment.View]{
	{"PI Number", func(v payment.View) any { return v.PINumber }},
	{"Total Amount", func(v payment.View) any { return v.TotalAmount }},
	{"Advance", func(v payment.View) any { return v.AdvancePayment }},
	{"Total Received", func(v payment.View) any { return v.TotalReceived }},
	{"Extra Payments", func(v payment.View) any { return v.ExtraPaymentsTotal }},
	{"Remaining", func(v payment.View) any { return v.RemainingPayment }},
	{"Fully Paid", func(v payment.View) any { return v.IsFullyPaid }},
	{"Short Payment", func(v payment.View) any { return v.ShortPaymentStatus }},
	{"Short Payment Note", func(v payment.View) any { return v.ShortPaymentNote }},
}

func lineTable[D, L any](sheet string, cols []Column[DocLine[D, L]], lines func(D) []L) func([]D) Table {
	return func(docs []D) Table {
		return BuildTable(sheet, cols, Flatten(docs, lines))
	}
}

// Table builders for document exports.
var (
	PurchaseInvoiceTable = lineTable("Purchase Invoices", PurchaseInvoiceColumns,
		func(d *purchase_invoice.PurchaseInvoice) []documents.Line { return d.Lines })
	PurchaseOrderTable = lineTable("Purchase Orders", PurchaseOrderColumns,
		func(d *purchase_order.PurchaseOrder) []documents.Line { return d.Lines })
	PickupTable = lineTable("Pickups", PickupColumns,
		func(d *pickup.Pickup) []pickup.Line { return d.Lines })
	InwardTable = lineTable("Inward", InwardColumns,
		func(d *inward.Entry) []inward.Line { return d.Lines })
	OutwardTable = lineTable("Outward", OutwardColumns,
		func(d *outward.Entry) []outward.Line { return d.Lines })
	ExpenseTable = lineTable("Expenses", ExpenseColumns,
		func(d *expense.Record) []expense.Charge { return d.Charges })
)
