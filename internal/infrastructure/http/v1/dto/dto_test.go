package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
	"tradedesk/internal/domain/documents/outward"
)

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, registerOn(v))
	return v
}

func TestCustomTags(t *testing.T) {
	v := newValidator(t)

	good := LineRequest{ProductID: id.New(), Quantity: types.NewQuantity(1), Rate: types.MustMoney("0")}
	assert.NoError(t, v.Struct(good))

	zeroQty := good
	zeroQty.Quantity = 0
	assert.Error(t, v.Struct(zeroQty))

	negRate := good
	negRate.Rate = types.MustMoney("-0.01")
	assert.Error(t, v.Struct(negRate))
}

func TestPurchaseInvoiceRequest_DivesIntoLines(t *testing.T) {
	v := newValidator(t)

	req := PurchaseInvoiceRequest{
		DocumentFields: DocumentFields{Date: Date{time.Now()}},
		BuyerID:        id.New(),
		Lines:          []LineRequest{{ProductID: id.New(), Quantity: -1}},
	}
	assert.Error(t, v.Struct(req))

	req.Lines[0].Quantity = types.NewQuantity(5)
	assert.NoError(t, v.Struct(req))

	req.Lines = nil
	assert.Error(t, v.Struct(req))
}

func TestDate_UnmarshalJSON(t *testing.T) {
	var body struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-02-29"}`), &body))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), body.Date.Time)

	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-02-29T10:00:00Z"}`), &body))
	assert.Equal(t, 10, body.Date.Hour())

	assert.Error(t, json.Unmarshal([]byte(`{"date":"29/02/2024"}`), &body))
}

func TestListQuery_ToFilter(t *testing.T) {
	f, err := ListQuery{Search: " PI ", DateFrom: "2024-01-01", Filter: `[{"field":"status","operator":"eq","value":"draft"}]`}.ToFilter()
	require.NoError(t, err)
	assert.Equal(t, "PI", f.Search)
	assert.Equal(t, DefaultLimit, f.Limit)
	require.NotNil(t, f.DateFrom)
	require.Len(t, f.AdvancedFilters, 1)
	assert.Equal(t, "status", f.AdvancedFilters[0].Field)

	_, err = ListQuery{DateFrom: "2024-02-01", DateTo: "2024-01-01"}.ToFilter()
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = ListQuery{Filter: "{"}.ToFilter()
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestOutwardRequest_ApplyResolvesSKU(t *testing.T) {
	productID := id.New()
	wh := id.New()
	req := OutwardRequest{
		DocumentFields: DocumentFields{Date: Date{time.Now()}},
		Kind:           "export_invoice",
		WarehouseID:    &wh,
		Lines: []OutwardLineRequest{{
			LineRequest: LineRequest{ProductID: productID, Quantity: types.NewQuantity(2), Rate: types.MustMoney("3")},
			Dimensions:  "10x10",
		}},
	}
	assert.Equal(t, []id.ID{productID}, req.ProductIDs())

	entry := newOutward()
	req.Apply(entry, map[id.ID]string{productID: "SKU-9"})
	require.Len(t, entry.Lines, 1)
	assert.Equal(t, "SKU-9", entry.Lines[0].SKU)
	assert.Equal(t, "10x10", entry.Lines[0].Dimensions)
	assert.Equal(t, "export_invoice", string(entry.Kind))
}

func TestPLRequest_ToFilter(t *testing.T) {
	company := id.New()
	f := PLRequest{CompanyID: &company, SKU: " A "}.ToFilter()
	require.NotNil(t, f.BuyerID)
	assert.Equal(t, company, *f.BuyerID)
	assert.Equal(t, "A", f.SKU)
	assert.Nil(t, f.DateFrom)
}

func newOutward() *outward.Entry {
	return outward.NewEntry(outward.KindDispatchPlan)
}
