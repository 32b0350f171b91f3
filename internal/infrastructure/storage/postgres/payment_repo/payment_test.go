package payment_repo

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradedesk/internal/core/id"
	"tradedesk/internal/domain/payment"
)

func TestRecordColumns_ExcludeJoinedNumber(t *testing.T) {
	repo := New(nil)
	assert.NotContains(t, repo.recordCols, "pi_number")
	assert.Contains(t, repo.recordCols, "short_payment_status")

	rec := &payment.Record{PIID: id.New(), PINumber: "PI-00001"}
	vals := repo.values(rec, "id", "version")
	assert.NotContains(t, vals, "pi_number")
	assert.NotContains(t, vals, "version")
	assert.Equal(t, rec.PIID, vals["pi_id"])
}

func TestSelectRecords_JoinsInvoice(t *testing.T) {
	repo := New(nil)
	sql, _, err := repo.selectRecords().Where(squirrel.Eq{"r.id": id.New()}).Suffix("FOR UPDATE OF r").ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "pi.number AS pi_number")
	assert.Contains(t, sql, "JOIN doc_purchase_invoices pi ON pi.id = r.pi_id")
	assert.Contains(t, sql, "WHERE r.id = $1 FOR UPDATE OF r")
}
