package catalog_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradedesk/internal/domain/catalogs/product"
	"tradedesk/internal/infrastructure/storage/postgres"
)

func TestProductColumns(t *testing.T) {
	cols := postgres.ExtractDBColumns[product.Product]()
	assert.Equal(t, []string{
		"id", "deletion_mark", "version", "attributes", "code", "name",
		"hsn_code", "unit", "default_rate", "description",
	}, cols)
}

func TestBaseSelect(t *testing.T) {
	repo := NewProductRepo(nil)
	sql, _, err := repo.baseSelect().Limit(1).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id, deletion_mark, version, attributes, code, name, hsn_code, unit, default_rate, description FROM cat_products LIMIT 1",
		sql)
}

func TestColumns_SkipsImmutable(t *testing.T) {
	repo := NewProductRepo(nil)
	p := &product.Product{}
	p.Code = "SKU-1"

	data := repo.columns(p, "id", "version")
	assert.NotContains(t, data, "id")
	assert.NotContains(t, data, "version")
	assert.Equal(t, "SKU-1", data["code"])
}
