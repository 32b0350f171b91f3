package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/entity"
	"tradedesk/internal/core/id"
	"tradedesk/internal/domain"
	"tradedesk/internal/infrastructure/exchange"
	"tradedesk/internal/infrastructure/http/v1/dto"
)

// DocumentService is the service surface every document handler needs.
type DocumentService[T entity.DocumentRecord] interface {
	Create(ctx context.Context, doc T) error
	GetByID(ctx context.Context, docID id.ID) (T, error)
	Update(ctx context.Context, doc T) error
	Delete(ctx context.Context, docID id.ID) error
	BulkDelete(ctx context.Context, ids []id.ID) domain.BulkDeleteResult
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error)
}

// SKUResolver maps product ids to SKUs for lines sent without one.
type SKUResolver interface {
	SKUs(ctx context.Context, ids []id.ID) (map[id.ID]string, error)
}

// DocumentHandler serves the CRUD, bulk and export endpoints of document T.
type DocumentHandler[T entity.DocumentRecord, R dto.DocumentRequest[T]] struct {
	*BaseHandler
	service  DocumentService[T]
	skus     SKUResolver
	newFn    func() T
	fileName string
	table    func(docs []T) exchange.Table
}

// DocumentHandlerConfig configures a DocumentHandler. Table renders the
// exported documents, one row per line.
type DocumentHandlerConfig[T entity.DocumentRecord] struct {
	Service  DocumentService[T]
	SKUs     SKUResolver
	New      func() T
	FileName string
	Table    func(docs []T) exchange.Table
}

// NewDocumentHandler creates the generic CRUD handler for one document type.
func NewDocumentHandler[T entity.DocumentRecord, R dto.DocumentRequest[T]](base *BaseHandler, cfg DocumentHandlerConfig[T]) *DocumentHandler[T, R] {
	return &DocumentHandler[T, R]{
		BaseHandler: base,
		service:     cfg.Service,
		skus:        cfg.SKUs,
		newFn:       cfg.New,
		fileName:    cfg.FileName,
		table:       cfg.Table,
	}
}

// List handles GET /<docs>. Lines are not loaded.
func (h *DocumentHandler[T, R]) List(c *gin.Context) {
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

// Get handles GET /<docs>/:id with lines.
func (h *DocumentHandler[T, R]) Get(c *gin.Context) {
	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Create handles POST /<docs>.
func (h *DocumentHandler[T, R]) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req R
	if !h.BindJSON(c, &req) {
		return
	}
	skus, err := h.resolveSKUs(ctx, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	doc := h.newFn()
	req.Apply(doc, skus)
	if err := h.service.Create(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, doc)
}

// Update handles PUT /<docs>/:id. Lines are replaced by the request's lines.
func (h *DocumentHandler[T, R]) Update(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req R
	if !h.BindJSON(c, &req) {
		return
	}
	version := req.Header().Version
	if version == 0 {
		h.Error(c, apperror.NewValidation("version is required").WithDetail("field", "version"))
		return
	}
	skus, err := h.resolveSKUs(ctx, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	doc.DocumentBase().Version = version
	req.Apply(doc, skus)

	if err := h.service.Update(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

func (h *DocumentHandler[T, R]) resolveSKUs(ctx context.Context, req R) (map[id.ID]string, error) {
	ids := req.ProductIDs()
	if len(ids) == 0 || h.skus == nil {
		return nil, nil
	}
	return h.skus.SKUs(ctx, ids)
}

// Delete handles DELETE /<docs>/:id.
func (h *DocumentHandler[T, R]) Delete(c *gin.Context) {
	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// BulkDelete handles POST /<docs>/bulk-delete.
func (h *DocumentHandler[T, R]) BulkDelete(c *gin.Context) {
	ids, ok := h.BindIDs(c)
	if !ok {
		return
	}
	h.OK(c, h.service.BulkDelete(c.Request.Context(), ids))
}

// Export handles POST /<docs>/export. Without ids the newest documents up to
// dto.MaxExport are exported.
func (h *DocumentHandler[T, R]) Export(c *gin.Context) {
	ctx := c.Request.Context()

	ids, format, ok := h.BindExport(c)
	if !ok {
		return
	}
	if len(ids) == 0 {
		filter := domain.DefaultListFilter()
		filter.Limit = dto.MaxExport
		result, err := h.service.List(ctx, filter)
		if err != nil {
			h.Error(c, err)
			return
		}
		for _, doc := range result.Items {
			ids = append(ids, doc.DocumentBase().ID)
		}
	}

	docs := make([]T, 0, len(ids))
	for _, docID := range ids {
		doc, err := h.service.GetByID(ctx, docID)
		if err != nil {
			h.Error(c, err)
			return
		}
		docs = append(docs, doc)
	}
	h.SendTable(c, format, h.fileName, h.table(docs))
}
