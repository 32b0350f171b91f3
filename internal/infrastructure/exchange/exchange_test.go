package exchange

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain/catalogs/product"
	"tradedesk/internal/domain/documents"
	"tradedesk/internal/domain/documents/purchase_invoice"
)

func sampleProducts() []*product.Product {
	a := product.NewProduct("SKU-001", "Steel Bolt")
	a.DefaultRate = types.MustMoney("12.50")
	b := product.NewProduct("007", "Washer")
	return []*product.Product{a, b}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatXLSX, false},
		{"XLSX", FormatXLSX, false},
		{"csv", FormatCSV, false},
		{"csv.gz", FormatCSVGzip, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "products.csv.gz", FormatCSVGzip.FileName("products"))
}

func TestTable_Records(t *testing.T) {
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	tbl := Table{
		Headers: []string{"Date", "Qty", "Rate", "Note"},
		Rows:    [][]any{{date, types.NewQuantity(10), types.MustMoney("1.25"), (*string)(nil)}},
	}
	assert.Equal(t, [][]string{
		{"Date", "Qty", "Rate", "Note"},
		{"2024-03-05", "10", "1.25", ""},
	}, tbl.Records())
}

func TestWriteCSV_RoundTripThroughUpload(t *testing.T) {
	tbl := BuildTable("Products", ProductColumns, sampleProducts())

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))
	assert.True(t, strings.HasPrefix(buf.String(), "SKU,Name,HSN Code"))

	records, err := ReadUpload("products.csv", &buf)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "007", records[1].Get("sku"), "codes stay strings")
	assert.Equal(t, "12.5", records[0].Get("default_rate"))
}

func TestWriteCSV_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, BuildTable("Products", ProductColumns, nil)))
	assert.Equal(t, "SKU,Name,HSN Code,Unit,Default Rate,Description\n", buf.String())
}

func TestWriteCSVGzip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, BuildTable("Products", ProductColumns, sampleProducts()), FormatCSVGzip))

	zr, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	records, err := ReadUpload("p.csv", zr)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestWriteXLSX_ReadBack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, BuildTable("Products", ProductColumns, sampleProducts())))

	records, err := ReadUpload("products.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "SKU-001", records[0].Get("sku"))
	assert.Equal(t, "Steel Bolt", records[0].Get("name"))

	products, err := ProductsFromRecords(records)
	require.NoError(t, err)
	assert.True(t, products[0].DefaultRate.Equal(types.MustMoney("12.5")))
}

func TestReadUpload_Rejects(t *testing.T) {
	_, err := ReadUpload("products.pdf", strings.NewReader("x"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = ReadUpload("products.csv", strings.NewReader("sku,name\n"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestReadUpload_SkipsBlankRows(t *testing.T) {
	csv := "SKU,Name\nA1,First\n,\nA2,Second\n"
	records, err := ReadUpload("p.csv", strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2, records[1].Row)
}

func TestProductsFromRecords(t *testing.T) {
	records := []Record{
		NewRecord(1, map[string]string{"Code": "P1", "Name": "Bolt", "Rate": "2.5", "Unit": "kg"}),
	}
	got, err := ProductsFromRecords(records)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "P1", got[0].SKU())
	assert.Equal(t, "kg", got[0].Unit)
	assert.Nil(t, got[0].Description)

	_, err = ProductsFromRecords([]Record{NewRecord(3, map[string]string{"name": "No SKU"})})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "sku is required", appErr.Message)
	assert.Equal(t, 3, appErr.Details["row"])

	_, err = ProductsFromRecords([]Record{NewRecord(1, map[string]string{"sku": "X", "name": "Y", "rate": "abc"})})
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "default_rate", appErr.Details["field"])
}

func TestCompaniesFromRecords(t *testing.T) {
	got, err := CompaniesFromRecords([]Record{
		NewRecord(1, map[string]string{"code": "CMP001", "name": "Acme", "kind": "Buyer", "gstin": "27AAACA1234A1Z5", "country": "in"}),
		NewRecord(2, map[string]string{"code": "CMP002", "name": "Other Co"}),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "buyer", string(got[0].Kind))
	assert.Equal(t, "IN", got[0].Country)
	require.NotNil(t, got[0].TaxID)
	assert.Equal(t, "other", string(got[1].Kind))

	_, err = CompaniesFromRecords([]Record{NewRecord(1, map[string]string{"code": "C", "name": "N", "kind": "vendor"})})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestFlatten(t *testing.T) {
	pi := &purchase_invoice.PurchaseInvoice{TotalAmount: types.MustMoney("30")}
	pi.Number = "PI-0001"
	pi.Lines = []documents.Line{
		{SKU: "A", Quantity: types.NewQuantity(1), Rate: types.MustMoney("10"), Amount: types.MustMoney("10")},
		{SKU: "B", Quantity: types.NewQuantity(2), Rate: types.MustMoney("10"), Amount: types.MustMoney("20")},
	}
	empty := &purchase_invoice.PurchaseInvoice{}
	empty.Number = "PI-0002"

	rows := Flatten([]*purchase_invoice.PurchaseInvoice{pi, empty}, func(d *purchase_invoice.PurchaseInvoice) []documents.Line { return d.Lines })
	require.Len(t, rows, 3)

	tbl := BuildTable("Purchase Invoices", PurchaseInvoiceColumns, rows)
	recs := tbl.Records()
	assert.Equal(t, "PI-0001", recs[1][0])
	assert.Equal(t, "B", recs[2][6])
	assert.Equal(t, "PI-0002", recs[3][0])
	assert.Equal(t, "", recs[3][6])
}
