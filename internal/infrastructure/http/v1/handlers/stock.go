package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/domain/stock"
	"tradedesk/internal/infrastructure/http/v1/dto"
)

// StockHandler serves warehouse availability.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// Available handles GET /stock/available.
func (h *StockHandler) Available(c *gin.Context) {
	var q dto.StockQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithCause(err))
		return
	}

	balances, err := h.service.AvailableStock(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": balances})
}

// AvailableQuantity handles GET /stock/available-quantity. A missing product
// or warehouse yields zero.
func (h *StockHandler) AvailableQuantity(c *gin.Context) {
	var q dto.StockQuery
	if !h.BindQuery(c, &q) {
		return
	}
	productID, warehouseID, err := q.ParseIDs()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithCause(err))
		return
	}

	qty, err := h.service.AvailableQuantity(c.Request.Context(), productID, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AvailableQuantityResponse{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Available:   qty.Display(),
	})
}
