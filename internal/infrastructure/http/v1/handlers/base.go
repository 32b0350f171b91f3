// Package handlers provides HTTP request handlers.
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/infrastructure/exchange"
	"tradedesk/internal/infrastructure/http/v1/dto"
	"tradedesk/internal/infrastructure/http/v1/middleware"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates the shared response helpers.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates the request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers err on the gin context and aborts. middleware.ErrorHandler
// writes the response.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParamID parses a path parameter as an id.
func (h *BaseHandler) ParamID(c *gin.Context, name string) (id.ID, bool) {
	v, err := id.Parse(c.Param(name))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("field", name))
		return id.Nil(), false
	}
	return v, true
}

// BindIDs binds a {ids: [...]} body.
func (h *BaseHandler) BindIDs(c *gin.Context) ([]id.ID, bool) {
	var req dto.IDsRequest
	if !h.BindJSON(c, &req) {
		return nil, false
	}
	ids, err := req.Parse()
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return ids, true
}

// Created sends 201 and stores the response for idempotent replay.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	middleware.CompleteIdempotency(c, http.StatusCreated, "application/json", data)
	c.JSON(http.StatusCreated, data)
}

// OK sends 200 and stores the response for idempotent replay.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	middleware.CompleteIdempotency(c, http.StatusOK, "application/json", data)
	c.JSON(http.StatusOK, data)
}

// NoContent sends 204 and stores it for idempotent replay.
func (h *BaseHandler) NoContent(c *gin.Context) {
	middleware.CompleteIdempotency(c, http.StatusNoContent, "", nil)
	c.Status(http.StatusNoContent)
}

// SendTable encodes t and sends it as an attachment named base-YYYYMMDD.ext.
func (h *BaseHandler) SendTable(c *gin.Context, format exchange.Format, base string, t exchange.Table) {
	var buf bytes.Buffer
	if err := exchange.Write(&buf, t, format); err != nil {
		h.Error(c, apperror.NewInternal(fmt.Errorf("export %s: %w", base, err)))
		return
	}
	name := format.FileName(fmt.Sprintf("%s-%s", base, time.Now().UTC().Format("20060102")))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// BindExport binds an export body and resolves its format.
func (h *BaseHandler) BindExport(c *gin.Context) ([]id.ID, exchange.Format, bool) {
	var req dto.ExportRequest
	if !h.BindJSON(c, &req) {
		return nil, "", false
	}
	format, err := exchange.ParseFormat(req.Format)
	if err != nil {
		h.Error(c, err)
		return nil, "", false
	}
	ids, err := req.ParseIDs()
	if err != nil {
		h.Error(c, err)
		return nil, "", false
	}
	return ids, format, true
}
