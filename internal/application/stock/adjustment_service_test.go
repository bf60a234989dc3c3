package stock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstock "github.com/retailcore/backend/internal/application/stock"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/stock"
	"github.com/retailcore/backend/internal/infrastructure/persistence/memory"
)

type adjustmentFixture struct {
	*ledgerFixture
	adjustments *appstock.AdjustmentService
}

func newAdjustmentFixture(t *testing.T) *adjustmentFixture {
	t.Helper()
	scope := memory.NewScope(memory.NewStore())
	ledger := appstock.NewLedgerService(scope)
	f := &adjustmentFixture{
		ledgerFixture: &ledgerFixture{
			ledger:     ledger,
			scope:      scope,
			businessID: uuid.New(),
			branchID:   uuid.New(),
			productID:  uuid.New(),
			actorID:    uuid.New(),
		},
		adjustments: appstock.NewAdjustmentService(scope, ledger),
	}
	// Seed the snapshot: 10 units at blended cost 2.
	_, err := ledger.ApplyDelta(context.Background(), f.purchaseDelta(decimal.NewFromInt(10), decimal.NewFromInt(2)))
	require.NoError(t, err)
	return f
}

func (f *adjustmentFixture) decreaseCommand(quantity int64) appstock.CreateAdjustmentCommand {
	return appstock.CreateAdjustmentCommand{
		BusinessID:     f.businessID,
		BranchID:       f.branchID,
		ProductID:      f.productID,
		AdjustmentType: stock.AdjustmentTypeDecrease,
		Quantity:       decimal.NewFromInt(quantity),
		Reason:         stock.AdjustmentReasonDamaged,
		ActorID:        f.actorID,
	}
}

func TestAdjustmentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("decrease mutates the ledger at creation", func(t *testing.T) {
		f := newAdjustmentFixture(t)

		view, err := f.adjustments.Create(ctx, f.decreaseCommand(3))

		require.NoError(t, err)
		assert.Equal(t, "10", view.BeforeQuantity.String())
		assert.Equal(t, "7", view.AfterQuantity.String())
		assert.Equal(t, "-6", view.CostImpact.String())
		assert.False(t, view.IsApproved)

		snapshot, err := f.ledger.GetSnapshot(ctx, f.businessID, f.branchID, f.productID)
		require.NoError(t, err)
		assert.Equal(t, "7", snapshot.Quantity.String())

		movements, err := f.ledger.ListMovementsByReference(ctx,
			stock.NewMovementReference(stock.ReferenceKindAdjustment, view.ID))
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, "-3", movements[0].Quantity.String())
	})

	t.Run("increase is valued at the current blended cost", func(t *testing.T) {
		f := newAdjustmentFixture(t)

		view, err := f.adjustments.Create(ctx, appstock.CreateAdjustmentCommand{
			BusinessID:     f.businessID,
			BranchID:       f.branchID,
			ProductID:      f.productID,
			AdjustmentType: stock.AdjustmentTypeIncrease,
			Quantity:       decimal.NewFromInt(5),
			Reason:         stock.AdjustmentReasonFound,
			Note:           "found behind the shelf",
			ActorID:        f.actorID,
		})

		require.NoError(t, err)
		assert.Equal(t, "15", view.AfterQuantity.String())
		assert.Equal(t, "10", view.CostImpact.String())
		assert.Equal(t, "found behind the shelf", view.Note)

		// Priced at the existing average, the average itself is unchanged.
		snapshot, err := f.ledger.GetSnapshot(ctx, f.businessID, f.branchID, f.productID)
		require.NoError(t, err)
		assert.Equal(t, "2", snapshot.UnitCost.String())
	})

	t.Run("decrease below zero is rejected", func(t *testing.T) {
		f := newAdjustmentFixture(t)

		_, err := f.adjustments.Create(ctx, f.decreaseCommand(11))

		require.Error(t, err)
		snapshot, err := f.ledger.GetSnapshot(ctx, f.businessID, f.branchID, f.productID)
		require.NoError(t, err)
		assert.Equal(t, "10", snapshot.Quantity.String())
	})

	t.Run("rejects invalid reason", func(t *testing.T) {
		f := newAdjustmentFixture(t)
		cmd := f.decreaseCommand(1)
		cmd.Reason = stock.AdjustmentReason("VIBES")

		_, err := f.adjustments.Create(ctx, cmd)

		require.Error(t, err)
	})
}

func TestAdjustmentService_Approve(t *testing.T) {
	ctx := context.Background()
	f := newAdjustmentFixture(t)
	created, err := f.adjustments.Create(ctx, f.decreaseCommand(3))
	require.NoError(t, err)

	approver := uuid.New()
	view, err := f.adjustments.Approve(ctx, f.businessID, created.ID, approver)

	require.NoError(t, err)
	assert.True(t, view.IsApproved)
	require.NotNil(t, view.ApprovedBy)
	assert.Equal(t, approver, *view.ApprovedBy)

	// Approval is audit-only; the ledger is untouched.
	snapshot, err := f.ledger.GetSnapshot(ctx, f.businessID, f.branchID, f.productID)
	require.NoError(t, err)
	assert.Equal(t, "7", snapshot.Quantity.String())

	_, err = f.adjustments.Approve(ctx, f.businessID, created.ID, approver)
	require.Error(t, err)
}

func TestAdjustmentService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("delete reverses the mutation and removes the movement", func(t *testing.T) {
		f := newAdjustmentFixture(t)
		created, err := f.adjustments.Create(ctx, f.decreaseCommand(3))
		require.NoError(t, err)

		err = f.adjustments.Delete(ctx, f.businessID, created.ID)

		require.NoError(t, err)
		snapshot, err := f.ledger.GetSnapshot(ctx, f.businessID, f.branchID, f.productID)
		require.NoError(t, err)
		assert.Equal(t, "10", snapshot.Quantity.String())
		assert.Equal(t, "2", snapshot.UnitCost.String())

		movements, err := f.ledger.ListMovementsByReference(ctx,
			stock.NewMovementReference(stock.ReferenceKindAdjustment, created.ID))
		require.NoError(t, err)
		assert.Empty(t, movements)

		_, err = f.adjustments.Get(ctx, f.businessID, created.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("approved adjustments are permanent", func(t *testing.T) {
		f := newAdjustmentFixture(t)
		created, err := f.adjustments.Create(ctx, f.decreaseCommand(3))
		require.NoError(t, err)
		_, err = f.adjustments.Approve(ctx, f.businessID, created.ID, uuid.New())
		require.NoError(t, err)

		err = f.adjustments.Delete(ctx, f.businessID, created.ID)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no longer be deleted")
	})
}

func TestAdjustmentService_ListByBranch(t *testing.T) {
	ctx := context.Background()
	f := newAdjustmentFixture(t)
	_, err := f.adjustments.Create(ctx, f.decreaseCommand(1))
	require.NoError(t, err)
	_, err = f.adjustments.Create(ctx, f.decreaseCommand(2))
	require.NoError(t, err)

	views, err := f.adjustments.ListByBranch(ctx, f.businessID, f.branchID, shared.DefaultFilter())

	require.NoError(t, err)
	assert.Len(t, views, 2)
}
