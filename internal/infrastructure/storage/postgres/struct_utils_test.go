package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tradedesk/internal/core/entity"
	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
)

type testProduct struct {
	entity.Catalog
	HSNCode string         `db:"hsn_code"`
	Rate    types.Money    `db:"default_rate"`
	Stock   types.Quantity `db:"-"`
	note    string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[testProduct]()

	assert.Equal(t, []string{
		"id", "deletion_mark", "version", "attributes", "code", "name", "hsn_code", "default_rate",
	}, cols)
}

func TestStructToMap(t *testing.T) {
	p := testProduct{
		Catalog: entity.Catalog{
			BaseEntity: entity.BaseEntity{ID: id.New(), DeletionMark: true, Version: 5},
			Code:       "SKU-1",
			Name:       "Cotton yarn",
		},
		HSNCode: "5205",
		Rate:    types.MustMoney("12.50"),
		Stock:   types.NewQuantity(3),
		note:    "ignored",
	}

	m := StructToMap(&p)

	assert.Equal(t, p.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "SKU-1", m["code"])
	assert.Equal(t, "5205", m["hsn_code"])
	assert.True(t, p.Rate.Equal(m["default_rate"].(types.Money)))
	assert.Len(t, m, 8)

	vals := StructToValues(p, []string{"code", "name"})
	assert.Equal(t, []any{"SKU-1", "Cotton yarn"}, vals)
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
}
