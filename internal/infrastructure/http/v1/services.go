package v1

import (
	"context"

	"tradedesk/internal/core/numerator"
	"tradedesk/internal/domain/audit"
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
	"tradedesk/internal/domain/reports"
	"tradedesk/internal/domain/stock"
	"tradedesk/internal/infrastructure/storage/postgres"
	"tradedesk/internal/infrastructure/storage/postgres/catalog_repo"
	"tradedesk/internal/infrastructure/storage/postgres/document_repo"
	"tradedesk/internal/infrastructure/storage/postgres/payment_repo"
	"tradedesk/internal/infrastructure/storage/postgres/report_repo"
	"tradedesk/internal/infrastructure/storage/postgres/stock_repo"
	"tradedesk/pkg/logger"
)

// Services holds every domain service behind the API.
type Services struct {
	Companies  *company.Service
	Products   *product.Service
	Warehouses *warehouse.Service
	Banks      *bank.Service

	PurchaseInvoices *purchase_invoice.Service
	PurchaseOrders   *purchase_order.Service
	Pickups          *pickup.Service
	Inward           *inward.Service
	Outward          *outward.Service
	Expenses         *expense.Service

	Payments *payment.Service
	Stock    *stock.Service
	Reports  *reports.Service
}

// NewServices wires repositories and services on one transaction manager.
func NewServices(txm *postgres.TxManager, num numerator.Generator, rec audit.Recorder) *Services {
	stockService := stock.NewService(stock_repo.New(txm))
	orders := purchase_order.NewService(document_repo.NewPurchaseOrderRepo(txm), num, txm, rec)
	inwards := inward.NewService(document_repo.NewInwardRepo(txm), orders, stockService, num, txm, rec)

	s := &Services{
		Companies:  company.NewService(catalog_repo.NewCompanyRepo(txm), txm, num),
		Products:   product.NewService(catalog_repo.NewProductRepo(txm), txm),
		Warehouses: warehouse.NewService(catalog_repo.NewWarehouseRepo(txm), txm, num),
		Banks:      bank.NewService(catalog_repo.NewBankRepo(txm), txm),

		PurchaseInvoices: purchase_invoice.NewService(document_repo.NewPurchaseInvoiceRepo(txm), num, txm, rec),
		PurchaseOrders:   orders,
		Pickups:          pickup.NewService(document_repo.NewPickupRepo(txm), orders, inwards, num, txm, rec),
		Inward:           inwards,
		Outward:          outward.NewService(document_repo.NewOutwardRepo(txm), stockService, num, txm, rec),
		Expenses:         expense.NewService(document_repo.NewExpenseRepo(txm), num, txm, rec),

		Payments: payment.NewService(payment_repo.New(txm), txm, rec),
		Stock:    stockService,
		Reports:  reports.NewService(report_repo.New(txm)),
	}
	s.registerHooks()
	return s
}

func (s *Services) registerHooks() {
	s.PurchaseInvoices.Hooks().OnAfterCreate(func(ctx context.Context, doc *purchase_invoice.PurchaseInvoice) error {
		logger.Info(ctx, "purchase invoice created", "id", doc.ID, "number", doc.Number, "total", doc.TotalAmount.String())
		return nil
	})
	s.PurchaseOrders.Hooks().OnAfterCreate(func(ctx context.Context, doc *purchase_order.PurchaseOrder) error {
		logger.Info(ctx, "purchase order created", "id", doc.ID, "number", doc.Number, "pi_count", len(doc.PIIDs))
		return nil
	})
	s.Products.Hooks().OnAfterCreate(func(ctx context.Context, p *product.Product) error {
		logger.Info(ctx, "product created", "id", p.ID, "sku", p.Code)
		return nil
	})
}
