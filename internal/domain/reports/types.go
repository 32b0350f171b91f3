// Package reports builds the profit and loss statement for export invoices
// and the PI to PO mapping view.
package reports

import (
	"time"

	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
)

// GSTRate is applied to the gross total.
var GSTRate = types.MustMoney("0.18")

// PLFilter selects export invoices. Empty OutwardIDs means all invoices that
// match the other fields.
type PLFilter struct {
	OutwardIDs []id.ID
	DateFrom   *time.Time
	DateTo     *time.Time
	BuyerID    *id.ID
	SKU        string
}

// InvoiceLine is one export invoice line with what the calculation needs.
type InvoiceLine struct {
	OutwardID id.ID          `db:"outward_id"`
	Number    string         `db:"number"`
	Date      time.Time      `db:"date"`
	BuyerID   *id.ID         `db:"buyer_id"`
	PIID      *id.ID         `db:"pi_id"`
	ProductID id.ID          `db:"product_id"`
	SKU       string         `db:"sku"`
	Quantity  types.Quantity `db:"quantity"`
	Amount    types.Money    `db:"amount"`
}

// POVolume is the ordered quantity and amount of a product across the POs
// linked to a PI.
type POVolume struct {
	PIID      id.ID          `db:"pi_id"`
	ProductID id.ID          `db:"product_id"`
	Quantity  types.Quantity `db:"quantity"`
	Amount    types.Money    `db:"amount"`
}

// PLItem is the P&L of one export invoice.
type PLItem struct {
	OutwardID    id.ID       `json:"outward_id"`
	Number       string      `json:"number"`
	Date         time.Time   `json:"date"`
	ExportValue  types.Money `json:"export_value"`
	PurchaseCost types.Money `json:"purchase_cost"`
	Expenses     types.Money `json:"expenses"`
	GrossProfit  types.Money `json:"gross_profit"`
}

// PLSummary totals the items.
type PLSummary struct {
	ExportValue         types.Money `json:"export_value"`
	PurchaseCost        types.Money `json:"purchase_cost"`
	Expenses            types.Money `json:"expenses"`
	GrossTotal          types.Money `json:"gross_total"`
	GSTAmount           types.Money `json:"gst_amount"`
	NetProfit           types.Money `json:"net_profit"`
	NetProfitPercentage types.Money `json:"net_profit_percentage"`
}

type PLReport struct {
	Items   []PLItem  `json:"items"`
	Summary PLSummary `json:"summary"`
}

// MappingFilter pages the PI-PO mapping. Search matches PI number, PO
// number or SKU.
type MappingFilter struct {
	Search string
	Limit  int
	Offset int
}

// MappingRow pairs a PI line with a PO line of the same product on a PO
// linked to that PI.
type MappingRow struct {
	PIID       id.ID          `db:"pi_id" json:"pi_id"`
	PINumber   string         `db:"pi_number" json:"pi_number"`
	POID       id.ID          `db:"po_id" json:"po_id"`
	PONumber   string         `db:"po_number" json:"po_number"`
	ProductID  id.ID          `db:"product_id" json:"product_id"`
	SKU        string         `db:"sku" json:"sku"`
	PIQuantity types.Quantity `db:"pi_quantity" json:"pi_quantity"`
	PIRate     types.Money    `db:"pi_rate" json:"pi_rate"`
	POQuantity types.Quantity `db:"po_quantity" json:"po_quantity"`
	PORate     types.Money    `db:"po_rate" json:"po_rate"`
}

type MappingPage struct {
	Items      []MappingRow `json:"items"`
	TotalCount int64        `json:"total_count"`
	Limit      int          `json:"limit"`
	Offset     int          `json:"offset"`
}
