package stock

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStockBatch(t *testing.T) {
	stockItemID := uuid.New()

	t.Run("creates batch with remaining equal to received", func(t *testing.T) {
		purchaseItemID := uuid.New()
		batch, err := NewStockBatch(stockItemID, &purchaseItemID, decimal.NewFromInt(20), decimal.NewFromFloat(1.25), time.Now())

		require.NoError(t, err)
		assert.Equal(t, "20", batch.QuantityReceived.String())
		assert.Equal(t, "20", batch.QuantityRemaining.String())
		assert.False(t, batch.IsExhausted())
		assert.Equal(t, "25", batch.RemainingValue().String())
	})

	t.Run("allows nil purchase item for transfer-in lots", func(t *testing.T) {
		batch, err := NewStockBatch(stockItemID, nil, decimal.NewFromInt(5), decimal.NewFromInt(2), time.Now())

		require.NoError(t, err)
		assert.Nil(t, batch.PurchaseItemID)
	})

	t.Run("defaults zero received date to now", func(t *testing.T) {
		batch, err := NewStockBatch(stockItemID, nil, decimal.NewFromInt(5), decimal.NewFromInt(2), time.Time{})

		require.NoError(t, err)
		assert.False(t, batch.ReceivedDate.IsZero())
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewStockBatch(stockItemID, nil, decimal.Zero, decimal.NewFromInt(2), time.Now())
		require.Error(t, err)
	})

	t.Run("rejects negative cost", func(t *testing.T) {
		_, err := NewStockBatch(stockItemID, nil, decimal.NewFromInt(5), decimal.NewFromInt(-1), time.Now())
		require.Error(t, err)
	})
}

func TestStockBatch_Consume(t *testing.T) {
	newBatch := func(t *testing.T, quantity int64) *StockBatch {
		t.Helper()
		batch, err := NewStockBatch(uuid.New(), nil, decimal.NewFromInt(quantity), decimal.NewFromInt(3), time.Now())
		require.NoError(t, err)
		return batch
	}

	t.Run("partial consumption leaves remainder", func(t *testing.T) {
		batch := newBatch(t, 10)

		taken := batch.Consume(decimal.NewFromInt(4))

		assert.Equal(t, "4", taken.String())
		assert.Equal(t, "6", batch.QuantityRemaining.String())
		assert.Equal(t, "10", batch.QuantityReceived.String())
		assert.False(t, batch.IsExhausted())
	})

	t.Run("consumption is capped at remaining quantity", func(t *testing.T) {
		batch := newBatch(t, 10)

		taken := batch.Consume(decimal.NewFromInt(15))

		assert.Equal(t, "10", taken.String())
		assert.True(t, batch.IsExhausted())
	})

	t.Run("exhausted batch yields nothing", func(t *testing.T) {
		batch := newBatch(t, 5)
		batch.Consume(decimal.NewFromInt(5))

		taken := batch.Consume(decimal.NewFromInt(1))

		assert.True(t, taken.IsZero())
	})

	t.Run("non-positive request yields nothing", func(t *testing.T) {
		batch := newBatch(t, 5)

		taken := batch.Consume(decimal.Zero)

		assert.True(t, taken.IsZero())
		assert.Equal(t, "5", batch.QuantityRemaining.String())
	})
}
