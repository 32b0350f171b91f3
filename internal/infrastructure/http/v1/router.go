// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"tradedesk/internal/core/id"
	"tradedesk/internal/domain/auth"
	"tradedesk/internal/domain/catalogs/bank"
	"tradedesk/internal/domain/catalogs/company"
	"tradedesk/internal/domain/catalogs/product"
	"tradedesk/internal/domain/catalogs/warehouse"
	"tradedesk/internal/domain/documents/expense"
	"tradedesk/internal/domain/documents/inward"
	"tradedesk/internal/domain/documents/outward"
	"tradedesk/internal/domain/documents/pickup"
	"tradedesk/internal/domain/documents/purchase_invoice"
	"tradedesk/internal/domain/documents/purchase_order"
	"tradedesk/internal/domain/payment"
	"tradedesk/internal/infrastructure/exchange"
	"tradedesk/internal/infrastructure/http/v1/dto"
	"tradedesk/internal/infrastructure/http/v1/handlers"
	"tradedesk/internal/infrastructure/http/v1/middleware"
	"tradedesk/internal/infrastructure/storage/postgres"
	"tradedesk/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool     *postgres.Pool
	Services *Services
	Logger   *logger.Logger

	JWTValidator middleware.JWTValidator
	AuthService  *auth.Service

	// Audit serves record history. Optional.
	Audit handlers.AuditReader
	// Idempotency enables X-Idempotency-Key replay on create routes. Optional.
	Idempotency *postgres.IdempotencyStore

	ReleaseMode bool
	Version     string
}

var (
	catalogPerms  = Permissions{Read: auth.PermCatalogRead, Write: auth.PermCatalogWrite}
	documentPerms = Permissions{Read: auth.PermDocumentRead, Write: auth.PermDocumentWrite}
	paymentPerms  = Permissions{Read: auth.PermPaymentRead, Write: auth.PermPaymentWrite}
)

// NewRouter creates and configures the gin engine.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := dto.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()

	// Order matters: the error handler must run inside the logger.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	health := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	hg := router.Group("/health")
	{
		hg.GET("/live", health.Live)
		hg.GET("/ready", health.Ready)
		hg.GET("/info", health.Info)
	}

	api := router.Group("/api/v1")
	{
		registerAuthRoutes(api, cfg)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		base := handlers.NewBaseHandler()
		idem := idempotencyMiddleware(cfg.Idempotency)
		var audit *handlers.AuditHandler
		if cfg.Audit != nil {
			audit = handlers.NewAuditHandler(base, cfg.Audit)
		}

		registerCatalogRoutes(protected, base, cfg.Services, idem)
		registerDocumentRoutes(protected, base, cfg.Services, idem, audit)
		registerPaymentRoutes(protected, base, cfg.Services, idem, audit)
		registerStockRoutes(protected, base, cfg.Services)
		registerReportRoutes(protected, base, cfg.Services)
	}

	return router, nil
}

func idempotencyMiddleware(store *postgres.IdempotencyStore) gin.HandlerFunc {
	if store == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.Idempotency(store)
}

func historyOf(audit *handlers.AuditHandler, entityType string) gin.HandlerFunc {
	if audit == nil {
		return nil
	}
	return audit.History(entityType)
}

func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}
	h := handlers.NewAuthHandler(handlers.NewBaseHandler(), cfg.AuthService)

	public := rg.Group("/auth")
	public.POST("/login", h.Login)
	public.POST("/refresh", h.Refresh)

	protected := rg.Group("/auth")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	protected.POST("/logout", h.Logout)
	protected.GET("/me", h.Me)
	protected.GET("/users", middleware.RequirePermission(auth.PermUserManage), h.ListUsers)
	protected.POST("/users", middleware.RequirePermission(auth.PermUserManage), h.Register)
}

func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, s *Services, idem gin.HandlerFunc) {
	catalogs := rg.Group("/catalog")

	// --- COMPANIES ---
	companies := handlers.NewCatalogHandler[*company.Company, dto.CompanyRequest](base, handlers.CatalogHandlerConfig[*company.Company]{
		Service:     s.Companies.CatalogService,
		New:         func() *company.Company { return company.NewCompany("", "", company.KindOther) },
		Sheet:       "Companies",
		FileName:    "companies",
		Columns:     exchange.CompanyColumns,
		ParseUpload: exchange.CompaniesFromRecords,
	})
	RegisterCatalogRoutes(catalogs.Group("/companies"), companies, catalogPerms, idem)

	// --- PRODUCTS ---
	products := handlers.NewCatalogHandler[*product.Product, dto.ProductRequest](base, handlers.CatalogHandlerConfig[*product.Product]{
		Service:     s.Products.CatalogService,
		New:         func() *product.Product { return product.NewProduct("", "") },
		Sheet:       "Products",
		FileName:    "products",
		Columns:     exchange.ProductColumns,
		ParseUpload: exchange.ProductsFromRecords,
	})
	RegisterCatalogRoutes(catalogs.Group("/products"), products, catalogPerms, idem)

	// --- WAREHOUSES ---
	warehouses := handlers.NewCatalogHandler[*warehouse.Warehouse, dto.WarehouseRequest](base, handlers.CatalogHandlerConfig[*warehouse.Warehouse]{
		Service:  s.Warehouses.CatalogService,
		New:      func() *warehouse.Warehouse { return warehouse.NewWarehouse("", "") },
		Sheet:    "Warehouses",
		FileName: "warehouses",
		Columns:  exchange.WarehouseColumns,
	})
	RegisterCatalogRoutes(catalogs.Group("/warehouses"), warehouses, catalogPerms, idem)

	// --- BANKS ---
	banks := handlers.NewCatalogHandler[*bank.Bank, dto.BankRequest](base, handlers.CatalogHandlerConfig[*bank.Bank]{
		Service:  s.Banks.CatalogService,
		New:      func() *bank.Bank { return bank.NewBank("", "", "") },
		Sheet:    "Banks",
		FileName: "banks",
		Columns:  exchange.BankColumns,
	})
	RegisterCatalogRoutes(catalogs.Group("/banks"), banks, catalogPerms, idem)
}

func registerDocumentRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, s *Services, idem gin.HandlerFunc, audit *handlers.AuditHandler) {
	docs := rg.Group("/documents")

	// --- PURCHASE INVOICES ---
	{
		h := handlers.NewDocumentHandler[*purchase_invoice.PurchaseInvoice, dto.PurchaseInvoiceRequest](base,
			handlers.DocumentHandlerConfig[*purchase_invoice.PurchaseInvoice]{
				Service:  s.PurchaseInvoices,
				SKUs:     s.Products,
				New:      func() *purchase_invoice.PurchaseInvoice { return purchase_invoice.NewPurchaseInvoice(id.Nil()) },
				FileName: "purchase-invoices",
				Table:    exchange.PurchaseInvoiceTable,
			})
		RegisterDocumentRoutes(docs.Group("/purchase-invoices"), h, documentPerms, idem, historyOf(audit, purchase_invoice.EntityName))
	}

	// --- PURCHASE ORDERS ---
	{
		docHandler := handlers.NewDocumentHandler[*purchase_order.PurchaseOrder, dto.PurchaseOrderRequest](base,
			handlers.DocumentHandlerConfig[*purchase_order.PurchaseOrder]{
				Service:  s.PurchaseOrders,
				SKUs:     s.Products,
				New:      func() *purchase_order.PurchaseOrder { return purchase_order.NewPurchaseOrder(id.Nil()) },
				FileName: "purchase-orders",
				Table:    exchange.PurchaseOrderTable,
			})
		h := handlers.NewPurchaseOrderHandler(docHandler, s.PurchaseOrders)
		group := docs.Group("/purchase-orders")
		RegisterDocumentRoutes(group, h, documentPerms, idem, historyOf(audit, purchase_order.EntityName))
		group.GET("/by-voucher/:voucher/lines-with-stats", middleware.RequirePermission(documentPerms.Read), h.LinesWithStats)
	}

	// --- PICKUPS ---
	{
		docHandler := handlers.NewDocumentHandler[*pickup.Pickup, dto.PickupRequest](base,
			handlers.DocumentHandlerConfig[*pickup.Pickup]{
				Service:  s.Pickups,
				New:      func() *pickup.Pickup { return pickup.NewPickup(id.Nil(), id.Nil()) },
				FileName: "pickups",
				Table:    exchange.PickupTable,
			})
		h := handlers.NewPickupHandler(docHandler, s.Pickups)
		group := docs.Group("/pickups")
		RegisterDocumentRoutes(group, h, documentPerms, idem, historyOf(audit, pickup.EntityName))
		group.POST("/:id/inward", middleware.RequirePermission(documentPerms.Write), idem, h.Inward)
	}

	// --- INWARD ---
	{
		h := handlers.NewDocumentHandler[*inward.Entry, dto.InwardRequest](base,
			handlers.DocumentHandlerConfig[*inward.Entry]{
				Service:  s.Inward,
				SKUs:     s.Products,
				New:      func() *inward.Entry { return inward.NewEntry(inward.KindWarehouse, id.Nil()) },
				FileName: "inward",
				Table:    exchange.InwardTable,
			})
		RegisterDocumentRoutes(docs.Group("/inward"), h, documentPerms, idem, historyOf(audit, inward.EntityName))
	}

	// --- OUTWARD ---
	{
		h := handlers.NewDocumentHandler[*outward.Entry, dto.OutwardRequest](base,
			handlers.DocumentHandlerConfig[*outward.Entry]{
				Service:  s.Outward,
				SKUs:     s.Products,
				New:      func() *outward.Entry { return outward.NewEntry(outward.KindExportInvoice) },
				FileName: "outward",
				Table:    exchange.OutwardTable,
			})
		RegisterDocumentRoutes(docs.Group("/outward"), h, documentPerms, idem, historyOf(audit, outward.EntityName))
	}

	// --- EXPENSES ---
	{
		h := handlers.NewDocumentHandler[*expense.Record, dto.ExpenseRequest](base,
			handlers.DocumentHandlerConfig[*expense.Record]{
				Service:  s.Expenses,
				New:      func() *expense.Record { return expense.NewRecord(nil) },
				FileName: "expenses",
				Table:    exchange.ExpenseTable,
			})
		RegisterDocumentRoutes(docs.Group("/expenses"), h, documentPerms, idem, historyOf(audit, expense.EntityName))
	}
}

func registerPaymentRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, s *Services, idem gin.HandlerFunc, audit *handlers.AuditHandler) {
	h := handlers.NewPaymentHandler(base, s.Payments)
	read := middleware.RequirePermission(paymentPerms.Read)
	write := middleware.RequirePermission(paymentPerms.Write)

	g := rg.Group("/payments")
	g.GET("", read, h.List)
	g.POST("", write, idem, h.Create)
	g.POST("/bulk-delete", write, idem, h.BulkDelete)
	g.POST("/export", read, h.Export)
	g.GET("/by-pi/:piId", read, h.GetByPI)
	g.GET("/:id", read, h.Get)
	g.PUT("/:id", write, h.Update)
	g.DELETE("/:id", write, h.Delete)
	g.POST("/:id/entries", write, idem, h.AddEntry)
	g.DELETE("/:id/entries/:entryId", write, h.DeleteEntry)
	g.POST("/:id/extra", write, idem, h.AddExtra)
	g.DELETE("/:id/extra/:extraId", write, h.DeleteExtra)
	g.POST("/:id/close-short", write, idem, h.CloseShort)
	g.POST("/:id/reopen", write, idem, h.Reopen)
	if history := historyOf(audit, payment.EntityName); history != nil {
		g.GET("/:id/history", read, history)
	}
}

func registerStockRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, s *Services) {
	h := handlers.NewStockHandler(base, s.Stock)
	read := middleware.RequirePermission(documentPerms.Read)

	g := rg.Group("/stock")
	g.GET("/available", read, h.Available)
	g.GET("/available-quantity", read, h.AvailableQuantity)
}

func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, s *Services) {
	h := handlers.NewReportHandler(base, s.Reports)
	read := middleware.RequirePermission(auth.PermReportRead)

	g := rg.Group("/reports")
	g.POST("/pl/calculate", read, h.CalculatePL)
	g.GET("/pi-po-mapping", read, h.PIPOMapping)
}
