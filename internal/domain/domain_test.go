package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusProcessing, StatusDelivered, true},
		{StatusPending, StatusCancelled, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusPending, StatusDelivered, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusProcessing, StatusPending, false},
		{StatusPending, StatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestParseOrderStatus(t *testing.T) {
	st, ok := ParseOrderStatus("processing")
	assert.True(t, ok)
	assert.Equal(t, StatusProcessing, st)

	_, ok = ParseOrderStatus("shipped")
	assert.False(t, ok)
	_, ok = ParseOrderStatus("PENDING")
	assert.False(t, ok)
}

func TestProductValidate(t *testing.T) {
	p := Product{Name: "Croissant", Price: decimal.RequireFromString("3.50"), StockQuantity: 4}
	require.NoError(t, p.Validate())

	p.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString("3.50"))
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "sale_price", de.Field)

	p.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString("2.99"))
	require.NoError(t, p.Validate())
	assert.Equal(t, "2.99", p.EffectivePrice().String())

	p.StockQuantity = -1
	assert.ErrorIs(t, p.Validate(), ErrInvalid)

	p.StockQuantity = 0
	p.Price = decimal.Zero
	assert.ErrorIs(t, p.Validate(), ErrInvalid)
}

func TestInsufficientStockIsConflict(t *testing.T) {
	err := error(&InsufficientStockError{ProductID: "p1", Line: 2, Requested: 3, Available: 1})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "p1")
}

func TestLineTotalExact(t *testing.T) {
	got := LineTotal(decimal.RequireFromString("0.10"), 3)
	assert.True(t, got.Equal(decimal.RequireFromString("0.30")), got.String())
}

func TestMoneyMarshalsAsNumber(t *testing.T) {
	b, err := json.Marshal(map[string]any{"total": decimal.RequireFromString("12.50")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":12.5}`, string(b))
}

func TestOpeningHoursRoundTrip(t *testing.T) {
	h := OpeningHours{"monday": "08:00-18:00"}
	v, err := h.Value()
	require.NoError(t, err)

	var back OpeningHours
	require.NoError(t, back.Scan(v))
	assert.Equal(t, "08:00-18:00", back["monday"])

	require.NoError(t, back.Scan(nil))
	assert.Empty(t, back)
}

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{Total: 25, Page: 2, Limit: 12, Pages: 3}, NewPage(25, 2, 12))
	assert.Equal(t, 0, NewPage(0, 1, 12).Pages)
}
