package v1

import (
	"github.com/gin-gonic/gin"

	"tradedesk/internal/infrastructure/http/v1/middleware"
)

// CatalogRouteHandler is implemented by handlers.CatalogHandler.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	BulkDelete(c *gin.Context)
	Export(c *gin.Context)
	Upload(c *gin.Context)
	SupportsUpload() bool
}

// DocumentRouteHandler is implemented by handlers.DocumentHandler.
type DocumentRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	BulkDelete(c *gin.Context)
	Export(c *gin.Context)
}

// Permissions guarding one resource.
type Permissions struct {
	Read  string
	Write string
}

// RegisterCatalogRoutes registers CRUD, bulk and exchange routes for a catalog.
// The upload route exists only when the handler supports it.
//
//	RegisterCatalogRoutes(catalogs.Group("/products"), productHandler, catalogPerms, idem)
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler, perms Permissions, idem gin.HandlerFunc) {
	read := middleware.RequirePermission(perms.Read)
	write := middleware.RequirePermission(perms.Write)

	group.GET("", read, handler.List)
	group.POST("", write, idem, handler.Create)
	group.GET("/:id", read, handler.Get)
	group.PUT("/:id", write, handler.Update)
	group.DELETE("/:id", write, handler.Delete)
	group.POST("/bulk-delete", write, idem, handler.BulkDelete)
	group.POST("/export", read, handler.Export)
	if handler.SupportsUpload() {
		group.POST("/upload", write, handler.Upload)
	}
}

// RegisterDocumentRoutes registers CRUD, bulk and export routes for a document
// type. history may be nil.
func RegisterDocumentRoutes(group *gin.RouterGroup, handler DocumentRouteHandler, perms Permissions, idem, history gin.HandlerFunc) {
	read := middleware.RequirePermission(perms.Read)
	write := middleware.RequirePermission(perms.Write)

	group.GET("", read, handler.List)
	group.POST("", write, idem, handler.Create)
	group.GET("/:id", read, handler.Get)
	group.PUT("/:id", write, handler.Update)
	group.DELETE("/:id", write, handler.Delete)
	group.POST("/bulk-delete", write, idem, handler.BulkDelete)
	group.POST("/export", read, handler.Export)
	if history != nil {
		group.GET("/:id/history", read, history)
	}
}
