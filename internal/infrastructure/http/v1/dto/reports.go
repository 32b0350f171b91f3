package dto

import (
	"strings"

	"tradedesk/internal/core/id"
	"tradedesk/internal/domain/reports"
	"tradedesk/internal/domain/stock"
)

// PLRequest selects export invoices for the P&L. company_id and buyer_id
// are synonyms.
type PLRequest struct {
	OutwardIDs []id.ID `json:"outward_ids"`
	DateFrom   *Date   `json:"date_from"`
	DateTo     *Date   `json:"date_to"`
	CompanyID  *id.ID  `json:"company_id"`
	BuyerID    *id.ID  `json:"buyer_id"`
	SKU        string  `json:"sku" binding:"omitempty,max=64"`
}

// ToFilter converts the request into a P&L filter.
func (r PLRequest) ToFilter() reports.PLFilter {
	buyer := r.BuyerID
	if buyer == nil {
		buyer = r.CompanyID
	}
	return reports.PLFilter{
		OutwardIDs: r.OutwardIDs,
		DateFrom:   r.DateFrom.Ptr(),
		DateTo:     r.DateTo.Ptr(),
		BuyerID:    buyer,
		SKU:        strings.TrimSpace(r.SKU),
	}
}

type MappingQuery struct {
	Search string `form:"search"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// ToFilter converts the query into a mapping filter.
func (q MappingQuery) ToFilter() reports.MappingFilter {
	return reports.MappingFilter{Search: strings.TrimSpace(q.Search), Limit: q.Limit, Offset: q.Offset}
}

type StockQuery struct {
	WarehouseID  string `form:"warehouse_id"`
	ProductID    string `form:"product_id"`
	OnlyNegative bool   `form:"only_negative"`
}

// ParseIDs returns nil for absent ids.
func (q StockQuery) ParseIDs() (productID, warehouseID *id.ID, err error) {
	if productID, err = id.ParseOptional(q.ProductID); err != nil {
		return nil, nil, err
	}
	if warehouseID, err = id.ParseOptional(q.WarehouseID); err != nil {
		return nil, nil, err
	}
	return productID, warehouseID, nil
}

// ToFilter parses the ids of the query into a stock filter.
func (q StockQuery) ToFilter() (stock.Filter, error) {
	productID, warehouseID, err := q.ParseIDs()
	if err != nil {
		return stock.Filter{}, err
	}
	return stock.Filter{WarehouseID: warehouseID, ProductID: productID, OnlyNegative: q.OnlyNegative}, nil
}

type AvailableQuantityResponse struct {
	ProductID   *id.ID `json:"product_id"`
	WarehouseID *id.ID `json:"warehouse_id"`
	Available   string `json:"available_quantity"`
}
