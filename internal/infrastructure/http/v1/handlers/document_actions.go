package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/domain/documents/pickup"
	"tradedesk/internal/domain/documents/purchase_order"
	"tradedesk/internal/infrastructure/http/v1/dto"
)

// PurchaseOrderHandler adds the reconciliation view to the PO routes.
type PurchaseOrderHandler struct {
	*DocumentHandler[*purchase_order.PurchaseOrder, dto.PurchaseOrderRequest]
	service *purchase_order.Service
}

// NewPurchaseOrderHandler adds the line statistics route to the PO CRUD handler.
func NewPurchaseOrderHandler(docs *DocumentHandler[*purchase_order.PurchaseOrder, dto.PurchaseOrderRequest], service *purchase_order.Service) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{DocumentHandler: docs, service: service}
}

// LinesWithStats handles GET /documents/purchase-orders/by-voucher/:voucher/lines-with-stats.
func (h *PurchaseOrderHandler) LinesWithStats(c *gin.Context) {
	voucher := strings.TrimSpace(c.Param("voucher"))
	if voucher == "" {
		h.Error(c, apperror.NewValidation("voucher is required").WithDetail("field", "voucher"))
		return
	}
	stats, err := h.service.LinesWithStats(c.Request.Context(), voucher)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voucher": voucher, "lines": stats})
}

// PickupHandler adds conversion into an inward entry to the pickup routes.
type PickupHandler struct {
	*DocumentHandler[*pickup.Pickup, dto.PickupRequest]
	service *pickup.Service
}

// NewPickupHandler adds the inward action to the pickup CRUD handler.
func NewPickupHandler(docs *DocumentHandler[*pickup.Pickup, dto.PickupRequest], service *pickup.Service) *PickupHandler {
	return &PickupHandler{DocumentHandler: docs, service: service}
}

// Inward handles POST /documents/pickups/:id/inward. The body is optional.
func (h *PickupHandler) Inward(c *gin.Context) {
	pickupID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.PickupInwardRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	entry, err := h.service.Inward(c.Request.Context(), pickupID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, entry)
}
