package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradedesk/internal/domain"
	"tradedesk/internal/domain/payment"
	"tradedesk/internal/infrastructure/exchange"
	"tradedesk/internal/infrastructure/http/v1/dto"
)

// PaymentHandler serves payment records and their entries.
type PaymentHandler struct {
	*BaseHandler
	service *payment.Service
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(base *BaseHandler, service *payment.Service) *PaymentHandler {
	return &PaymentHandler{BaseHandler: base, service: service}
}

// List handles GET /payments.
func (h *PaymentHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromListResult(result))
}

// Get handles GET /payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	recordID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	view, err := h.service.Get(c.Request.Context(), recordID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetByPI handles GET /payments/by-pi/:piId.
func (h *PaymentHandler) GetByPI(c *gin.Context) {
	piID, ok := h.ParamID(c, "piId")
	if !ok {
		return
	}
	view, err := h.service.GetByPI(c.Request.Context(), piID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Create handles POST /payments.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	view, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, view)
}

// Update handles PUT /payments/:id.
func (h *PaymentHandler) Update(c *gin.Context) {
	recordID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	view, err := h.service.Update(c.Request.Context(), recordID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, view)
}

// Delete handles DELETE /payments/:id.
func (h *PaymentHandler) Delete(c *gin.Context) {
	recordID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), recordID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// AddEntry handles POST /payments/:id/entries.
func (h *PaymentHandler) AddEntry(c *gin.Context) {
	recordID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.PaymentEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	view, err := h.service.AddEntry(c.Request.Context(), recordID, req.ToEntry())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, view)
}

// DeleteEntry handles DELETE /payments/:id/entries/:entryId.
func (h *PaymentHandler) DeleteEntry(c *gin.Context) {
	recordID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	entryID, ok := h.ParamID(c, "entryId")
	if !ok {
		return
	}
	view, err := h.service.DeleteEntry(c.Request.Context(), recordID, entryID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, view)
}

// AddExtra handles POST /payments/:id/extra.
func (h *PaymentHandler) AddExtra(c *gin.Context) {
	recordID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.ExtraPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	view, err := h.service.AddExtra(c.Request.Context(), recordID, req.ToExtra())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, view)
}

// DeleteExtra handles DELETE /payments/:id/extra/:extraId.
func (h *PaymentHandler) DeleteExtra(c *gin.Context) {
	recordID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	extraID, ok := h.ParamID(c, "extraId")
	if !ok {
		return
	}
	view, err := h.service.DeleteExtra(c.Request.Context(), recordID, extraID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, view)
}

// CloseShort handles POST /payments/:id/close-short.
func (h *PaymentHandler) CloseShort(c *gin.Context) {
	recordID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.CloseShortRequest
	if !h.BindJSON(c, &req) {
		return
	}
	view, err := h.service.CloseShort(c.Request.Context(), recordID, req.Note)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, view)
}

// Reopen handles POST /payments/:id/reopen.
func (h *PaymentHandler) Reopen(c *gin.Context) {
	recordID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	view, err := h.service.Reopen(c.Request.Context(), recordID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, view)
}

// BulkDelete handles POST /payments/bulk-delete.
func (h *PaymentHandler) BulkDelete(c *gin.Context) {
	ids, ok := h.BindIDs(c)
	if !ok {
		return
	}
	h.OK(c, h.service.BulkDelete(c.Request.Context(), ids))
}

// Export handles POST /payments/export.
func (h *PaymentHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()

	ids, format, ok := h.BindExport(c)
	if !ok {
		return
	}

	var views []payment.View
	if len(ids) == 0 {
		filter := domain.DefaultListFilter()
		filter.Limit = dto.MaxExport
		result, err := h.service.List(ctx, filter)
		if err != nil {
			h.Error(c, err)
			return
		}
		views = result.Items
	} else {
		views = make([]payment.View, 0, len(ids))
		for _, recordID := range ids {
			v, err := h.service.Get(ctx, recordID)
			if err != nil {
				h.Error(c, err)
				return
			}
			views = append(views, v)
		}
	}
	h.SendTable(c, format, "payments", exchange.BuildTable("Payments", exchange.PaymentColumns, views))
}
