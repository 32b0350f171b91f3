package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradedesk/internal/domain/reports"
	"tradedesk/internal/infrastructure/http/v1/dto"
)

// ReportHandler serves the P&L and the PI-PO mapping.
type ReportHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportHandler creates a new report handler.
func NewReportHandler(base *BaseHandler, service *reports.Service) *ReportHandler {
	return &ReportHandler{BaseHandler: base, service: service}
}

// CalculatePL handles POST /reports/pl/calculate. The report is read-only and
// is not stored for idempotent replay.
func (h *ReportHandler) CalculatePL(c *gin.Context) {
	var req dto.PLRequest
	if !h.BindJSON(c, &req) {
		return
	}
	report, err := h.service.CalculatePL(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// PIPOMapping handles GET /reports/pi-po-mapping.
func (h *ReportHandler) PIPOMapping(c *gin.Context) {
	var q dto.MappingQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.service.PIPOMapping(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
