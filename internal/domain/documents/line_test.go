package documents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradedesk/internal/core/id"
	"tradedesk/internal/core/numerator"
	"tradedesk/internal/core/types"
)

func TestPrepareLines(t *testing.T) {
	docID := id.New()
	lines := []Line{
		{ProductID: id.New(), Quantity: types.Quantity(25_000), Rate: types.MustMoney("12.34")},
		{ProductID: id.New(), Quantity: types.NewQuantity(3), Rate: types.MustMoney("10")},
	}

	PrepareLines(docID, lines)

	assert.Equal(t, 1, lines[0].LineNo)
	assert.Equal(t, 2, lines[1].LineNo)
	assert.Equal(t, docID, lines[1].DocumentID)
	assert.False(t, id.IsNil(lines[0].LineID))
	assert.Equal(t, "30.85", lines[0].Amount.StringFixed(2))
	assert.Equal(t, "60.85", TotalAmount(lines).StringFixed(2))
	assert.Equal(t, types.Quantity(55_000), TotalQuantity(lines))
}

func TestValidateLines(t *testing.T) {
	assert.Error(t, ValidateLines(nil))
	assert.Error(t, ValidateLines([]Line{{ProductID: id.New()}}))
	assert.Error(t, ValidateLines([]Line{{Quantity: types.NewQuantity(1)}}))
	assert.Error(t, ValidateLines([]Line{{ProductID: id.New(), Quantity: types.NewQuantity(1), Rate: types.MustMoney("-1")}}))
	assert.NoError(t, ValidateLines([]Line{{ProductID: id.New(), Quantity: types.NewQuantity(1)}}))
}

func TestProductIDs_Distinct(t *testing.T) {
	a, b := id.New(), id.New()
	got := ProductIDs([]Line{{ProductID: a}, {ProductID: b}, {ProductID: a}})
	assert.Equal(t, []id.ID{a, b}, got)
}

func TestAssignNumber(t *testing.T) {
	gen := numerator.NewMockGenerator()
	ctx := context.Background()

	var number string
	require.NoError(t, AssignNumber(ctx, gen, PrefixPickup, time.Now(), &number))
	assert.Equal(t, "PU-00001", number)

	kept := "MANUAL-7"
	require.NoError(t, AssignNumber(ctx, gen, PrefixPickup, time.Now(), &kept))
	assert.Equal(t, "MANUAL-7", kept)
}
