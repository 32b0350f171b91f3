package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradedesk/internal/core/id"
	"tradedesk/internal/domain/catalogs/bank"
	"tradedesk/internal/domain/catalogs/company"
	"tradedesk/internal/domain/catalogs/product"
	"tradedesk/internal/domain/catalogs/warehouse"
	"tradedesk/internal/infrastructure/storage/postgres"
)

const (
	companiesTable  = "cat_companies"
	productsTable   = "cat_products"
	warehousesTable = "cat_warehouses"
	banksTable      = "cat_banks"
)

type CompanyRepo struct {
	*BaseCatalogRepo[*company.Company]
}

// NewCompanyRepo creates a new company repository.
func NewCompanyRepo(txm *postgres.TxManager) *CompanyRepo {
	return &CompanyRepo{NewBaseCatalogRepo(txm, companiesTable, "company",
		postgres.ExtractDBColumns[company.Company](),
		func() *company.Company { return &company.Company{} })}
}

type WarehouseRepo struct {
	*BaseCatalogRepo[*warehouse.Warehouse]
}

// NewWarehouseRepo creates a new warehouse repository.
func NewWarehouseRepo(txm *postgres.TxManager) *WarehouseRepo {
	return &WarehouseRepo{NewBaseCatalogRepo(txm, warehousesTable, "warehouse",
		postgres.ExtractDBColumns[warehouse.Warehouse](),
		func() *warehouse.Warehouse { return &warehouse.Warehouse{} })}
}

type BankRepo struct {
	*BaseCatalogRepo[*bank.Bank]
}

// NewBankRepo creates a new bank repository.
func NewBankRepo(txm *postgres.TxManager) *BankRepo {
	return &BankRepo{NewBaseCatalogRepo(txm, banksTable, "bank",
		postgres.ExtractDBColumns[bank.Bank](),
		func() *bank.Bank { return &bank.Bank{} })}
}

type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{NewBaseCatalogRepo(txm, productsTable, "product",
		postgres.ExtractDBColumns[product.Product](),
		func() *product.Product { return &product.Product{} })}
}

// SKUs includes products marked for deletion so old documents still resolve.
func (r *ProductRepo) SKUs(ctx context.Context, ids []id.ID) (map[id.ID]string, error) {
	out := make(map[id.ID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	sql, args, err := postgres.Builder().
		Select("id", "code").
		From(productsTable).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []struct {
		ID   id.ID  `db:"id"`
		Code string `db:"code"`
	}
	if err := pgxscan.Select(ctx, r.db(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select skus: %w", err)
	}
	for _, row := range rows {
		out[row.ID] = row.Code
	}
	return out, nil
}

var (
	_ company.Repository   = (*CompanyRepo)(nil)
	_ warehouse.Repository = (*WarehouseRepo)(nil)
	_ bank.Repository      = (*BankRepo)(nil)
	_ product.Repository   = (*ProductRepo)(nil)
)
