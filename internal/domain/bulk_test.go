package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/domain/filter"
)

func TestBulkDelete_ReportsPartialFailures(t *testing.T) {
	ok1, missing, ok2, broken := id.New(), id.New(), id.New(), id.New()

	del := func(ctx context.Context, v id.ID) error {
		switch v {
		case missing:
			return apperror.NewNotFound("pickup", v.String())
		case broken:
			return errors.New("connection reset")
		}
		return nil
	}

	res := BulkDelete(context.Background(), []id.ID{ok1, missing, ok2, broken}, del)

	assert.Equal(t, 2, res.DeletedCount)
	assert.Equal(t, 2, res.FailedCount)
	if assert.Len(t, res.Failed, 2) {
		assert.Equal(t, missing, res.Failed[0].ID)
		assert.Equal(t, apperror.CodeNotFound, res.Failed[0].Code)
		assert.Equal(t, "pickup not found", res.Failed[0].Error)
		assert.Equal(t, broken, res.Failed[1].ID)
		assert.Equal(t, apperror.CodeInternal, res.Failed[1].Code)
	}
}

func TestBulkDelete_Empty(t *testing.T) {
	res := BulkDelete(context.Background(), nil, func(context.Context, id.ID) error { return nil })
	assert.Zero(t, res.DeletedCount)
	assert.Zero(t, res.FailedCount)
	assert.NotNil(t, res.Failed)
}

func TestBulkDelete_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	res := BulkDelete(ctx, []id.ID{id.New(), id.New()}, func(context.Context, id.ID) error {
		calls++
		return nil
	})

	assert.Zero(t, calls)
	assert.Equal(t, 2, res.FailedCount)
}

func TestListFilter_WhereDoesNotAlias(t *testing.T) {
	base := DefaultListFilter()
	a := base.Where(filter.Eq("kind", "export_invoice"))
	b := base.Where(filter.Eq("kind", "dispatch_plan"))

	assert.Empty(t, base.AdvancedFilters)
	assert.Equal(t, "export_invoice", a.AdvancedFilters[0].Value)
	assert.Equal(t, "dispatch_plan", b.AdvancedFilters[0].Value)
}
