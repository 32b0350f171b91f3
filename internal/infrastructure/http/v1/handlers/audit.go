package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tradedesk/internal/core/id"
	"tradedesk/internal/domain/audit"
)

// AuditReader reads the change history of one record.
type AuditReader interface {
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]audit.Entry, error)
}

// AuditHandler serves GET /<resource>/:id/history.
type AuditHandler struct {
	*BaseHandler
	reader AuditReader
}

// NewAuditHandler creates a handler serving audit history.
func NewAuditHandler(base *BaseHandler, reader AuditReader) *AuditHandler {
	return &AuditHandler{BaseHandler: base, reader: reader}
}

// History returns a handler listing the audit entries of entityType records.
func (h *AuditHandler) History(entityType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		entityID, ok := h.ParamID(c, "id")
		if !ok {
			return
		}
		limit, _ := strconv.Atoi(c.Query("limit"))

		entries, err := h.reader.History(c.Request.Context(), entityType, entityID, limit)
		if err != nil {
			h.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": entries})
	}
}
