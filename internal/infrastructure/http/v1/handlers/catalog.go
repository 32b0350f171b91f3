package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/entity"
	"tradedesk/internal/domain"
	"tradedesk/internal/infrastructure/exchange"
	"tradedesk/internal/infrastructure/http/v1/dto"
)

// maxUploadBytes bounds a bulk upload file.
const maxUploadBytes = 10 << 20

// CatalogHandler serves the CRUD, bulk and exchange endpoints of catalog T.
type CatalogHandler[T entity.CatalogRecord, R dto.CatalogRequest[T]] struct {
	*BaseHandler
	service     *domain.CatalogService[T]
	newFn       func() T
	sheet       string
	fileName    string
	columns     []exchange.Column[T]
	parseUpload func([]exchange.Record) ([]T, error)
}

// CatalogHandlerConfig configures a CatalogHandler. ParseUpload is nil for
// catalogs without bulk upload.
type CatalogHandlerConfig[T entity.CatalogRecord] struct {
	Service     *domain.CatalogService[T]
	New         func() T
	Sheet       string
	FileName    string
	Columns     []exchange.Column[T]
	ParseUpload func([]exchange.Record) ([]T, error)
}

// NewCatalogHandler creates the generic CRUD handler for one catalog.
func NewCatalogHandler[T entity.CatalogRecord, R dto.CatalogRequest[T]](base *BaseHandler, cfg CatalogHandlerConfig[T]) *CatalogHandler[T, R] {
	return &CatalogHandler[T, R]{
		BaseHandler: base,
		service:     cfg.Service,
		newFn:       cfg.New,
		sheet:       cfg.Sheet,
		fileName:    cfg.FileName,
		columns:     cfg.Columns,
		parseUpload: cfg.ParseUpload,
	}
}

// List handles GET /catalog/<r>.
func (h *CatalogHandler[T, R]) List(c *gin.Context) {
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

// Get handles GET /catalog/<r>/:id.
func (h *CatalogHandler[T, R]) Get(c *gin.Context) {
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	item, err := h.service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Create handles POST /catalog/<r>.
func (h *CatalogHandler[T, R]) Create(c *gin.Context) {
	var req R
	if !h.BindJSON(c, &req) {
		return
	}

	item := h.newFn()
	req.Apply(item)
	if err := h.service.Create(c.Request.Context(), item); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, item)
}

// Update handles PUT /catalog/<r>/:id. The body must carry the version read.
func (h *CatalogHandler[T, R]) Update(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req R
	if !h.BindJSON(c, &req) {
		return
	}
	version := req.Catalog().Version
	if version == 0 {
		h.Error(c, apperror.NewValidation("version is required").WithDetail("field", "version"))
		return
	}

	item, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	item.CatalogBase().Version = version
	req.Apply(item)

	if err := h.service.Update(ctx, item); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// Delete handles DELETE /catalog/<r>/:id by setting the deletion mark.
func (h *CatalogHandler[T, R]) Delete(c *gin.Context) {
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), entityID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// BulkDelete handles POST /catalog/<r>/bulk-delete.
func (h *CatalogHandler[T, R]) BulkDelete(c *gin.Context) {
	ids, ok := h.BindIDs(c)
	if !ok {
		return
	}
	h.OK(c, h.service.BulkDelete(c.Request.Context(), ids))
}

// Export handles POST /catalog/<r>/export.
func (h *CatalogHandler[T, R]) Export(c *gin.Context) {
	ids, format, ok := h.BindExport(c)
	if !ok {
		return
	}

	filter := domain.DefaultListFilter()
	filter.Limit = dto.MaxExport
	if len(ids) > 0 {
		filter.IDs = ids
		filter.Limit = len(ids)
	}
	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.SendTable(c, format, h.fileName, exchange.BuildTable(h.sheet, h.columns, result.Items))
}

// SupportsUpload reports whether the upload route applies.
func (h *CatalogHandler[T, R]) SupportsUpload() bool {
	return h.parseUpload != nil
}

// Upload handles POST /catalog/<r>/upload with a multipart "file".
func (h *CatalogHandler[T, R]) Upload(c *gin.Context) {
	if h.parseUpload == nil {
		h.Error(c, apperror.NewNotFound("upload", h.service.EntityName()))
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("file is required").WithDetail("field", "file"))
		return
	}
	if fh.Size > maxUploadBytes {
		h.Error(c, apperror.NewValidation("file is too large").WithDetail("max_bytes", maxUploadBytes))
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	defer f.Close()

	records, err := exchange.ReadUpload(fh.Filename, f)
	if err != nil {
		h.Error(c, err)
		return
	}
	items, err := h.parseUpload(records)
	if err != nil {
		h.Error(c, err)
		return
	}

	res, err := h.service.Upload(c.Request.Context(), items)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}
