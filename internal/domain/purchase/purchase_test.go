package purchase

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/backend/internal/domain/shared/valueobject"
)

func createTestPurchase(t *testing.T) *Purchase {
	t.Helper()
	p, err := NewPurchase(uuid.New(), "PO-001", uuid.New(), uuid.New(), valueobject.USD, decimal.NewFromInt(1))
	require.NoError(t, err)
	return p
}

func createOrderedPurchase(t *testing.T) *Purchase {
	t.Helper()
	p := createTestPurchase(t)
	_, err := p.AddItem(uuid.New(), decimal.NewFromInt(10), decimal.NewFromFloat(2.50))
	require.NoError(t, err)
	require.NoError(t, p.Place())
	return p
}

func TestNewPurchase(t *testing.T) {
	t.Run("creates draft purchase", func(t *testing.T) {
		p := createTestPurchase(t)

		assert.Equal(t, PurchaseStatusDraft, p.Status)
		assert.True(t, p.Subtotal.IsZero())
		assert.Nil(t, p.OrderedAt)
	})

	t.Run("defaults empty currency", func(t *testing.T) {
		p, err := NewPurchase(uuid.New(), "PO-002", uuid.New(), uuid.New(), "", decimal.NewFromInt(1))

		require.NoError(t, err)
		assert.Equal(t, valueobject.DefaultCurrency, p.Currency)
	})

	t.Run("rejects non-positive exchange rate", func(t *testing.T) {
		_, err := NewPurchase(uuid.New(), "PO-003", uuid.New(), uuid.New(), valueobject.USD, decimal.Zero)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Exchange rate")
	})

	t.Run("rejects empty purchase number", func(t *testing.T) {
		_, err := NewPurchase(uuid.New(), "", uuid.New(), uuid.New(), valueobject.USD, decimal.NewFromInt(1))
		require.Error(t, err)
	})
}

func TestPurchase_AddItemAndTotals(t *testing.T) {
	t.Run("recalculates totals per line", func(t *testing.T) {
		p := createTestPurchase(t)

		_, err := p.AddItem(uuid.New(), decimal.NewFromInt(10), decimal.NewFromFloat(2.50))
		require.NoError(t, err)
		_, err = p.AddItem(uuid.New(), decimal.NewFromInt(4), decimal.NewFromInt(3))
		require.NoError(t, err)
		require.NoError(t, p.SetTax(decimal.NewFromFloat(1.50)))

		assert.Equal(t, "37", p.Subtotal.String())
		assert.Equal(t, "38.5", p.TotalAmount.String())
	})

	t.Run("rejects duplicate product", func(t *testing.T) {
		p := createTestPurchase(t)
		productID := uuid.New()
		_, err := p.AddItem(productID, decimal.NewFromInt(1), decimal.NewFromInt(1))
		require.NoError(t, err)

		_, err = p.AddItem(productID, decimal.NewFromInt(2), decimal.NewFromInt(1))

		require.Error(t, err)
	})

	t.Run("rejects adding after placement", func(t *testing.T) {
		p := createOrderedPurchase(t)

		_, err := p.AddItem(uuid.New(), decimal.NewFromInt(1), decimal.NewFromInt(1))

		require.Error(t, err)
	})
}

func TestPurchase_Place(t *testing.T) {
	t.Run("transitions draft to ordered", func(t *testing.T) {
		p := createOrderedPurchase(t)

		assert.Equal(t, PurchaseStatusOrdered, p.Status)
		assert.NotNil(t, p.OrderedAt)
		assert.True(t, p.Status.CanReceive())
	})

	t.Run("rejects placing an empty purchase", func(t *testing.T) {
		p := createTestPurchase(t)

		err := p.Place()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "without items")
	})

	t.Run("rejects placing twice", func(t *testing.T) {
		p := createOrderedPurchase(t)

		err := p.Place()

		require.Error(t, err)
	})
}

func TestPurchaseItem_AddReceived(t *testing.T) {
	t.Run("accumulates partial receipts", func(t *testing.T) {
		p := createOrderedPurchase(t)
		item := &p.Items[0]

		require.NoError(t, item.AddReceived(decimal.NewFromInt(4)))
		assert.Equal(t, "6", item.RemainingQuantity().String())
		assert.False(t, item.IsFullyReceived())

		require.NoError(t, item.AddReceived(decimal.NewFromInt(6)))
		assert.True(t, item.IsFullyReceived())
		assert.True(t, item.RemainingQuantity().IsZero())
	})

	t.Run("rejects over-receipt", func(t *testing.T) {
		p := createOrderedPurchase(t)
		item := &p.Items[0]
		require.NoError(t, item.AddReceived(decimal.NewFromInt(8)))

		err := item.AddReceived(decimal.NewFromInt(3))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "only 2 remaining")
		assert.Equal(t, "8", item.QuantityReceived.String())
	})
}

func TestPurchase_RefreshReceiptStatus(t *testing.T) {
	t.Run("partial receipt", func(t *testing.T) {
		p := createOrderedPurchase(t)
		require.NoError(t, p.Items[0].AddReceived(decimal.NewFromInt(4)))

		p.RefreshReceiptStatus(uuid.New(), time.Now())

		assert.Equal(t, PurchaseStatusPartiallyReceived, p.Status)
		assert.Nil(t, p.ReceivedBy)
		assert.True(t, p.Status.CanReceive())
	})

	t.Run("full receipt stamps receiver", func(t *testing.T) {
		p := createOrderedPurchase(t)
		actorID := uuid.New()
		receivedDate := time.Now()
		require.NoError(t, p.Items[0].AddReceived(decimal.NewFromInt(10)))

		p.RefreshReceiptStatus(actorID, receivedDate)

		assert.Equal(t, PurchaseStatusReceived, p.Status)
		require.NotNil(t, p.ReceivedBy)
		assert.Equal(t, actorID, *p.ReceivedBy)
		assert.False(t, p.Status.CanReceive())
	})
}

func TestPurchase_Cancel(t *testing.T) {
	t.Run("cancels an ordered purchase", func(t *testing.T) {
		p := createOrderedPurchase(t)

		require.NoError(t, p.Cancel("supplier out of business"))

		assert.Equal(t, PurchaseStatusCancelled, p.Status)
		assert.NotNil(t, p.CancelledAt)
	})

	t.Run("blocked once goods were received", func(t *testing.T) {
		p := createOrderedPurchase(t)
		require.NoError(t, p.Items[0].AddReceived(decimal.NewFromInt(1)))

		err := p.Cancel("changed my mind")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "goods have been received")
	})

	t.Run("requires a reason", func(t *testing.T) {
		p := createOrderedPurchase(t)

		err := p.Cancel("")

		require.Error(t, err)
	})
}

func TestPurchase_BaseCurrencyUnitCost(t *testing.T) {
	p, err := NewPurchase(uuid.New(), "PO-FX", uuid.New(), uuid.New(), valueobject.EUR, decimal.NewFromFloat(1.085))
	require.NoError(t, err)
	item, err := p.AddItem(uuid.New(), decimal.NewFromInt(10), decimal.NewFromFloat(2.40))
	require.NoError(t, err)

	// 2.40 * 1.085 = 2.604
	assert.Equal(t, "2.604", p.BaseCurrencyUnitCost(item).String())
}
