package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDemoTables_RowsMatchColumns(t *testing.T) {
	codes := map[string]bool{}
	for _, tbl := range demoTables() {
		assert.NotEmpty(t, tbl.rows, tbl.table)
		for i, row := range tbl.rows {
			assert.Len(t, row, len(tbl.columns), "%s row %d", tbl.table, i)

			code, _ := row[2].(string)
			key := tbl.table + "/" + code
			assert.False(t, codes[key], "duplicate code %s", key)
			codes[key] = true
		}
	}
}
