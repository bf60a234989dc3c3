package receiving

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstock "github.com/retailcore/backend/internal/application/stock"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/retailcore/backend/internal/infrastructure/persistence/memory"
)

type receivingFixture struct {
	service    *ReceivingService
	ledger     *appstock.LedgerService
	businessID uuid.UUID
	branchID   uuid.UUID
	actorID    uuid.UUID
}

func newReceivingFixture(t *testing.T) *receivingFixture {
	t.Helper()
	scope := memory.NewScope(memory.NewStore())
	ledger := appstock.NewLedgerService(scope)
	return &receivingFixture{
		service:    NewReceivingService(scope, ledger, nil),
		ledger:     ledger,
		businessID: uuid.New(),
		branchID:   uuid.New(),
		actorID:    uuid.New(),
	}
}

func (f *receivingFixture) createPurchase(t *testing.T, lines ...PurchaseLineInput) *PurchaseView {
	t.Helper()
	view, err := f.service.CreatePurchase(context.Background(), CreatePurchaseCommand{
		BusinessID:     f.businessID,
		PurchaseNumber: "PO-" + uuid.NewString()[:8],
		BranchID:       f.branchID,
		SupplierID:     uuid.New(),
		Currency:       valueobject.USD,
		ExchangeRate:   decimal.NewFromInt(1),
		ActorID:        f.actorID,
		Items:          lines,
	})
	require.NoError(t, err)
	return view
}

func TestReceivingService_CreatePurchase(t *testing.T) {
	f := newReceivingFixture(t)

	view := f.createPurchase(t, PurchaseLineInput{
		ProductID: uuid.New(),
		Quantity:  decimal.NewFromInt(10),
		UnitCost:  decimal.NewFromFloat(2.50),
	})

	assert.Equal(t, "ORDERED", view.Status)
	assert.Equal(t, "25", view.Subtotal.String())
	require.Len(t, view.Items, 1)
	assert.True(t, view.Items[0].QuantityReceived.IsZero())

	t.Run("rejects empty purchase", func(t *testing.T) {
		_, err := f.service.CreatePurchase(context.Background(), CreatePurchaseCommand{
			BusinessID:     f.businessID,
			PurchaseNumber: "PO-EMPTY",
			BranchID:       f.branchID,
			SupplierID:     uuid.New(),
			ActorID:        f.actorID,
		})
		require.Error(t, err)
	})
}

func TestReceivingService_ReceiveGoods(t *testing.T) {
	ctx := context.Background()

	t.Run("partial receipt opens a lot and updates the ledger", func(t *testing.T) {
		f := newReceivingFixture(t)
		productID := uuid.New()
		created, err := f.service.CreatePurchase(ctx, CreatePurchaseCommand{
			BusinessID:     f.businessID,
			PurchaseNumber: "PO-FX-1",
			BranchID:       f.branchID,
			SupplierID:     uuid.New(),
			Currency:       valueobject.EUR,
			ExchangeRate:   decimal.NewFromFloat(1.1),
			ActorID:        f.actorID,
			Items: []PurchaseLineInput{{
				ProductID: productID,
				Quantity:  decimal.NewFromInt(10),
				UnitCost:  decimal.NewFromInt(2), // EUR
			}},
		})
		require.NoError(t, err)

		view, err := f.service.ReceiveGoods(ctx, ReceiveGoodsCommand{
			BusinessID:   f.businessID,
			PurchaseID:   created.ID,
			ActorID:      f.actorID,
			ReceivedDate: time.Now(),
			Lines: []ReceiveLineInput{{
				PurchaseItemID: created.Items[0].ID,
				Quantity:       decimal.NewFromInt(4),
			}},
		})

		require.NoError(t, err)
		assert.Equal(t, "PARTIALLY_RECEIVED", view.Status)
		assert.Equal(t, "4", view.Items[0].QuantityReceived.String())

		// Ledger carries the base-currency cost: 2 EUR * 1.1 = 2.2.
		snapshot, err := f.ledger.GetSnapshot(ctx, f.businessID, f.branchID, productID)
		require.NoError(t, err)
		assert.Equal(t, "4", snapshot.Quantity.String())
		assert.Equal(t, "2.2", snapshot.UnitCost.String())

		batches, err := f.ledger.ListBatches(ctx, snapshot.ID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, batches, 1)
		assert.Equal(t, "4", batches[0].QuantityRemaining.String())
		assert.Equal(t, "2.2", batches[0].UnitCost.String())
		require.NotNil(t, batches[0].PurchaseItemID)
		assert.Equal(t, created.Items[0].ID, *batches[0].PurchaseItemID)
	})

	t.Run("full receipt flips the status to received", func(t *testing.T) {
		f := newReceivingFixture(t)
		created := f.createPurchase(t, PurchaseLineInput{
			ProductID: uuid.New(),
			Quantity:  decimal.NewFromInt(10),
			UnitCost:  decimal.NewFromInt(2),
		})

		_, err := f.service.ReceiveGoods(ctx, ReceiveGoodsCommand{
			BusinessID: f.businessID,
			PurchaseID: created.ID,
			ActorID:    f.actorID,
			Lines: []ReceiveLineInput{{
				PurchaseItemID: created.Items[0].ID,
				Quantity:       decimal.NewFromInt(4),
			}},
		})
		require.NoError(t, err)

		view, err := f.service.ReceiveGoods(ctx, ReceiveGoodsCommand{
			BusinessID: f.businessID,
			PurchaseID: created.ID,
			ActorID:    f.actorID,
			Lines: []ReceiveLineInput{{
				PurchaseItemID: created.Items[0].ID,
				Quantity:       decimal.NewFromInt(6),
			}},
		})

		require.NoError(t, err)
		assert.Equal(t, "RECEIVED", view.Status)
		require.NotNil(t, view.ReceivedBy)
		assert.Equal(t, f.actorID, *view.ReceivedBy)

		// A third receipt is rejected; the order is closed.
		_, err = f.service.ReceiveGoods(ctx, ReceiveGoodsCommand{
			BusinessID: f.businessID,
			PurchaseID: created.ID,
			ActorID:    f.actorID,
			Lines: []ReceiveLineInput{{
				PurchaseItemID: created.Items[0].ID,
				Quantity:       decimal.NewFromInt(1),
			}},
		})
		require.Error(t, err)
	})

	t.Run("over-receipt on any line rolls back the whole receipt", func(t *testing.T) {
		f := newReceivingFixture(t)
		productA := uuid.New()
		productB := uuid.New()
		created := f.createPurchase(t,
			PurchaseLineInput{ProductID: productA, Quantity: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(2)},
			PurchaseLineInput{ProductID: productB, Quantity: decimal.NewFromInt(5), UnitCost: decimal.NewFromInt(3)},
		)

		_, err := f.service.ReceiveGoods(ctx, ReceiveGoodsCommand{
			BusinessID: f.businessID,
			PurchaseID: created.ID,
			ActorID:    f.actorID,
			Lines: []ReceiveLineInput{
				{PurchaseItemID: created.Items[0].ID, Quantity: decimal.NewFromInt(10)}, // fine
				{PurchaseItemID: created.Items[1].ID, Quantity: decimal.NewFromInt(6)},  // over-receipt
			},
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrOverReceipt))

		// The first line's delta must not survive the rollback.
		_, err = f.ledger.GetSnapshot(ctx, f.businessID, f.branchID, productA)
		require.Error(t, err)

		after, err := f.service.GetPurchase(ctx, f.businessID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "ORDERED", after.Status)
		assert.True(t, after.Items[0].QuantityReceived.IsZero())
	})

	t.Run("rejects lines from another purchase", func(t *testing.T) {
		f := newReceivingFixture(t)
		created := f.createPurchase(t, PurchaseLineInput{
			ProductID: uuid.New(),
			Quantity:  decimal.NewFromInt(10),
			UnitCost:  decimal.NewFromInt(2),
		})

		_, err := f.service.ReceiveGoods(ctx, ReceiveGoodsCommand{
			BusinessID: f.businessID,
			PurchaseID: created.ID,
			ActorID:    f.actorID,
			Lines: []ReceiveLineInput{{
				PurchaseItemID: uuid.New(),
				Quantity:       decimal.NewFromInt(1),
			}},
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not belong")
	})
}

func TestReceivingService_CancelPurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels before any receipt", func(t *testing.T) {
		f := newReceivingFixture(t)
		created := f.createPurchase(t, PurchaseLineInput{
			ProductID: uuid.New(),
			Quantity:  decimal.NewFromInt(10),
			UnitCost:  decimal.NewFromInt(2),
		})

		view, err := f.service.CancelPurchase(ctx, f.businessID, created.ID, "supplier delay")

		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", view.Status)
	})

	t.Run("blocked once goods arrived", func(t *testing.T) {
		f := newReceivingFixture(t)
		created := f.createPurchase(t, PurchaseLineInput{
			ProductID: uuid.New(),
			Quantity:  decimal.NewFromInt(10),
			UnitCost:  decimal.NewFromInt(2),
		})
		_, err := f.service.ReceiveGoods(ctx, ReceiveGoodsCommand{
			BusinessID: f.businessID,
			PurchaseID: created.ID,
			ActorID:    f.actorID,
			Lines: []ReceiveLineInput{{
				PurchaseItemID: created.Items[0].ID,
				Quantity:       decimal.NewFromInt(1),
			}},
		})
		require.NoError(t, err)

		_, err = f.service.CancelPurchase(ctx, f.businessID, created.ID, "changed my mind")

		require.Error(t, err)
	})
}
