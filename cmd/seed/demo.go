package main

import (
	"context"
	"fmt"

	"tradedesk/internal/core/id"
	"tradedesk/internal/domain/catalogs/company"
	"tradedesk/internal/infrastructure/storage/postgres"
	"tradedesk/pkg/logger"
)

// demoTable is one COPY batch. COPY uses the binary protocol, so rates are
// float64 rather than decimal strings.
type demoTable struct {
	table   string
	columns []string
	rows    [][]any
}

func demoTables() []demoTable {
	str := func(s string) *string { return &s }

	return []demoTable{
		{
			table:   "cat_companies",
			columns: []string{"id", "version", "code", "name", "kind", "country", "email"},
			rows: [][]any{
				{id.New(), 1, "DEMO-NORTHWIND", "Northwind Traders", string(company.KindBuyer), "AE", str("buying@northwind.example")},
				{id.New(), 1, "DEMO-CONTOSO", "Contoso Metals", string(company.KindSupplier), "IN", str("sales@contoso.example")},
				{id.New(), 1, "DEMO-FABRIKAM", "Fabrikam Logistics", string(company.KindConsignee), "AE", nil},
			},
		},
		{
			table:   "cat_products",
			columns: []string{"id", "version", "code", "name", "hsn_code", "unit", "default_rate"},
			rows: [][]any{
				{id.New(), 1, "SS-304-COIL", "Stainless steel coil 304", "7219", "kg", 2.45},
				{id.New(), 1, "AL-6061-BAR", "Aluminium bar 6061", "7604", "kg", 3.10},
				{id.New(), 1, "CU-WIRE-2MM", "Copper wire 2mm", "7408", "m", 0.85},
			},
		},
		{
			table:   "cat_warehouses",
			columns: []string{"id", "version", "code", "name", "location", "is_active"},
			rows: [][]any{
				{id.New(), 1, "WH-MAIN", "Main warehouse", str("Jebel Ali"), true},
				{id.New(), 1, "WH-TRANSIT", "Transit yard", str("Mundra"), true},
			},
		},
		{
			table:   "cat_banks",
			columns: []string{"id", "version", "code", "name", "account_number", "swift", "currency"},
			rows: [][]any{
				{id.New(), 1, "BNK-USD", "Operating account", "0012345678", str("DEMOAEAD"), "USD"},
			},
		},
	}
}

// seedDemoData loads every demo table in one transaction. Tables that
// already hold rows are left alone.
func seedDemoData(ctx context.Context, txm *postgres.TxManager) error {
	inserter := postgres.NewBatchInserter(txm)

	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, t := range demoTables() {
			var exists bool
			if err := txm.GetQuerier(ctx).QueryRow(ctx,
				fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s)", t.table)).Scan(&exists); err != nil {
				return fmt.Errorf("check %s: %w", t.table, err)
			}
			if exists {
				logger.Info(ctx, "demo data skipped, table not empty", "table", t.table)
				continue
			}

			n, err := inserter.CopyFromSlice(ctx, t.table, t.columns, t.rows)
			if err != nil {
				return fmt.Errorf("copy %s: %w", t.table, err)
			}
			logger.Info(ctx, "demo data loaded", "table", t.table, "rows", n)
		}
		return nil
	})
}
