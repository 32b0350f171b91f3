package document_repo

import (
	"context"

	"tradedesk/internal/core/id"
	"tradedesk/internal/domain/documents"
	"tradedesk/internal/domain/documents/expense"
	"tradedesk/internal/domain/documents/outward"
	"tradedesk/internal/domain/documents/purchase_invoice"
	"tradedesk/internal/infrastructure/storage/postgres"
)

const (
	purchaseInvoicesTable     = "doc_purchase_invoices"
	purchaseInvoiceLinesTable = "doc_purchase_invoice_lines"
	outwardsTable             = "doc_outwards"
	outwardLinesTable         = "doc_outward_lines"
	expensesTable             = "doc_expenses"
	expenseChargesTable       = "doc_expense_charges"
)

// ensureLineIDs stamps the document id and fills missing line ids.
func ensureLineIDs(docID id.ID, lines []documents.Line) {
	for i := range lines {
		lines[i].DocumentID = docID
		if id.IsNil(lines[i].LineID) {
			lines[i].LineID = id.New()
		}
	}
}

type PurchaseInvoiceRepo struct {
	*BaseDocumentRepo[*purchase_invoice.PurchaseInvoice]
}

// NewPurchaseInvoiceRepo creates a new purchase invoice repository.
func NewPurchaseInvoiceRepo(txm *postgres.TxManager) *PurchaseInvoiceRepo {
	return &PurchaseInvoiceRepo{NewBaseDocumentRepo(txm, purchaseInvoicesTable, "purchase_invoice",
		postgres.ExtractDBColumns[purchase_invoice.PurchaseInvoice](),
		func() *purchase_invoice.PurchaseInvoice { return &purchase_invoice.PurchaseInvoice{} })}
}

// GetLines returns the PI lines in line order.
func (r *PurchaseInvoiceRepo) GetLines(ctx context.Context, docID id.ID) ([]documents.Line, error) {
	return getRows[documents.Line](ctx, r.db(ctx), purchaseInvoiceLinesTable, docID)
}

// SaveLines replaces the PI lines.
func (r *PurchaseInvoiceRepo) SaveLines(ctx context.Context, docID id.ID, lines []documents.Line) error {
	ensureLineIDs(docID, lines)
	return replaceRows(ctx, r.batch, purchaseInvoiceLinesTable, docID, lines)
}

type OutwardRepo struct {
	*BaseDocumentRepo[*outward.Entry]
}

// NewOutwardRepo creates a new outward entry repository.
func NewOutwardRepo(txm *postgres.TxManager) *OutwardRepo {
	return &OutwardRepo{NewBaseDocumentRepo(txm, outwardsTable, "outward_entry",
		postgres.ExtractDBColumns[outward.Entry](),
		func() *outward.Entry { return &outward.Entry{} })}
}

// GetLines returns the outward lines in line order.
func (r *OutwardRepo) GetLines(ctx context.Context, docID id.ID) ([]outward.Line, error) {
	return getRows[outward.Line](ctx, r.db(ctx), outwardLinesTable, docID)
}

// SaveLines replaces the outward lines.
func (r *OutwardRepo) SaveLines(ctx context.Context, docID id.ID, lines []outward.Line) error {
	for i := range lines {
		lines[i].DocumentID = docID
		if id.IsNil(lines[i].LineID) {
			lines[i].LineID = id.New()
		}
	}
	return replaceRows(ctx, r.batch, outwardLinesTable, docID, lines)
}

type ExpenseRepo struct {
	*BaseDocumentRepo[*expense.Record]
}

// NewExpenseRepo creates a new expense repository.
func NewExpenseRepo(txm *postgres.TxManager) *ExpenseRepo {
	return &ExpenseRepo{NewBaseDocumentRepo(txm, expensesTable, "expense",
		postgres.ExtractDBColumns[expense.Record](),
		func() *expense.Record { return &expense.Record{} })}
}

// GetCharges returns the charges of an expense record.
func (r *ExpenseRepo) GetCharges(ctx context.Context, docID id.ID) ([]expense.Charge, error) {
	return getRows[expense.Charge](ctx, r.db(ctx), expenseChargesTable, docID)
}

// SaveCharges replaces the charges of an expense record.
func (r *ExpenseRepo) SaveCharges(ctx context.Context, docID id.ID, charges []expense.Charge) error {
	for i := range charges {
		charges[i].DocumentID = docID
		if id.IsNil(charges[i].ChargeID) {
			charges[i].ChargeID = id.New()
		}
	}
	return replaceRows(ctx, r.batch, expenseChargesTable, docID, charges)
}

var (
	_ purchase_invoice.Repository = (*PurchaseInvoiceRepo)(nil)
	_ outward.Repository          = (*OutwardRepo)(nil)
	_ expense.Repository          = (*ExpenseRepo)(nil)
)
