package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetindulgence/internal/domain"
)

type stubStock struct {
	qty int
	err error
}

func (s stubStock) Qty(context.Context, string) (int, error) { return s.qty, s.err }

func TestShortage_ReportsAvailableStock(t *testing.T) {
	err := shortage(context.Background(), stubStock{qty: 2}, 3, OrderLine{ProductID: "p-1", Quantity: 5})

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 3, stockErr.Line)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestShortage_LookupFailureIsNotZeroStock(t *testing.T) {
	err := shortage(context.Background(), stubStock{err: sql.ErrConnDone}, 1, OrderLine{ProductID: "p-1", Quantity: 1})

	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	var stockErr *domain.InsufficientStockError
	assert.False(t, errors.As(err, &stockErr))
	assert.NotErrorIs(t, err, domain.ErrConflict)
}
