package transfer

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

type transferFixture struct {
	service    *TransferService
	ledger     *appstock.LedgerService
	businessID uuid.UUID
	sourceID   uuid.UUID
	destID     uuid.UUID
	productID  uuid.UUID
	actorID    uuid.UUID
}

func newTransferFixture(t *testing.T) *transferFixture {
	t.Helper()
	scope := memory.NewScope(memory.NewStore())
	ledger := appstock.NewLedgerService(scope)
	f := &transferFixture{
		service:    NewTransferService(scope, ledger, nil),
		ledger:     ledger,
		businessID: uuid.New(),
		sourceID:   uuid.New(),
		destID:     uuid.New(),
		productID:  uuid.New(),
		actorID:    uuid.New(),
	}
	// Seed the source branch: 10 units at cost 2.
	_, err := ledger.ApplyDelta(context.Background(), appstock.ApplyDeltaCommand{
		BusinessID:   f.businessID,
		BranchID:     f.sourceID,
		ProductID:    f.productID,
		MovementType: stock.MovementTypePurchase,
		Quantity:     decimal.NewFromInt(10),
		UnitCost:     decimal.NewFromInt(2),
		Reference:    stock.NewMovementReference(stock.ReferenceKindPurchase, uuid.New()),
		ActorID:      f.actorID,
	})
	require.NoError(t, err)
	return f
}

func (f *transferFixture) createTransfer(t *testing.T, quantity int64) *TransferView {
	t.Helper()
	view, err := f.service.Create(context.Background(), CreateTransferCommand{
		BusinessID:     f.businessID,
		TransferNumber: "TRF-" + uuid.NewString()[:8],
		SourceBranchID: f.sourceID,
		DestBranchID:   f.destID,
		ActorID:        f.actorID,
		Items: []TransferLineInput{{
			ProductID: f.productID,
			Quantity:  decimal.NewFromInt(quantity),
		}},
	})
	require.NoError(t, err)
	return view
}

func (f *transferFixture) sendTransfer(t *testing.T, transferID uuid.UUID, lines ...SendLineInput) *TransferView {
	t.Helper()
	view, err := f.service.Send(context.Background(), SendTransferCommand{
		BusinessID: f.businessID,
		TransferID: transferID,
		ActorID:    f.actorID,
		Lines:      lines,
	})
	require.NoError(t, err)
	return view
}

func (f *transferFixture) sourceQuantity(t *testing.T) decimal.Decimal {
	t.Helper()
	snapshot, err := f.ledger.GetSnapshot(context.Background(), f.businessID, f.sourceID, f.productID)
	require.NoError(t, err)
	return snapshot.Quantity
}

func TestTransferService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("records a pending transfer with the source cost", func(t *testing.T) {
		f := newTransferFixture(t)

		view := f.createTransfer(t, 4)

		assert.Equal(t, "PENDING", view.Status)
		require.Len(t, view.Items, 1)
		assert.Equal(t, "4", view.Items[0].QuantityRequested.String())
		assert.Equal(t, "2", view.Items[0].UnitCost.String())

		// Creation validates only; the source ledger is untouched.
		assert.Equal(t, "10", f.sourceQuantity(t).String())
	})

	t.Run("rejects requests over the available quantity", func(t *testing.T) {
		f := newTransferFixture(t)

		_, err := f.service.Create(ctx, CreateTransferCommand{
			BusinessID:     f.businessID,
			TransferNumber: "TRF-OVER",
			SourceBranchID: f.sourceID,
			DestBranchID:   f.destID,
			ActorID:        f.actorID,
			Items: []TransferLineInput{{
				ProductID: f.productID,
				Quantity:  decimal.NewFromInt(11),
			}},
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	})

	t.Run("rejects a transfer without items", func(t *testing.T) {
		f := newTransferFixture(t)

		_, err := f.service.Create(ctx, CreateTransferCommand{
			BusinessID:     f.businessID,
			TransferNumber: "TRF-EMPTY",
			SourceBranchID: f.sourceID,
			DestBranchID:   f.destID,
			ActorID:        f.actorID,
		})

		require.Error(t, err)
	})

	t.Run("rejects unknown products at the source", func(t *testing.T) {
		f := newTransferFixture(t)

		_, err := f.service.Create(ctx, CreateTransferCommand{
			BusinessID:     f.businessID,
			TransferNumber: "TRF-GHOST",
			SourceBranchID: f.sourceID,
			DestBranchID:   f.destID,
			ActorID:        f.actorID,
			Items: []TransferLineInput{{
				ProductID: uuid.New(),
				Quantity:  decimal.NewFromInt(1),
			}},
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestTransferService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to the requested quantities", func(t *testing.T) {
		f := newTransferFixture(t)
		created := f.createTransfer(t, 4)

		view := f.sendTransfer(t, created.ID)

		assert.Equal(t, "IN_TRANSIT", view.Status)
		assert.Equal(t, "4", view.Items[0].QuantitySent.String())
		assert.NotNil(t, view.SentAt)
		assert.Equal(t, "6", f.sourceQuantity(t).String())
	})

	t.Run("short ships with a line override", func(t *testing.T) {
		f := newTransferFixture(t)
		created := f.createTransfer(t, 4)

		view := f.sendTransfer(t, created.ID, SendLineInput{
			TransferItemID: created.Items[0].ID,
			Quantity:       decimal.NewFromInt(3),
		})

		assert.Equal(t, "3", view.Items[0].QuantitySent.String())
		assert.Equal(t, "7", f.sourceQuantity(t).String())
	})

	t.Run("re-validates availability at send time", func(t *testing.T) {
		f := newTransferFixture(t)
		created := f.createTransfer(t, 8)

		// Stock leaves the source between creation and send.
		_, err := f.ledger.ApplyDelta(ctx, appstock.ApplyDeltaCommand{
			BusinessID:   f.businessID,
			BranchID:     f.sourceID,
			ProductID:    f.productID,
			MovementType: stock.MovementTypeSale,
			Quantity:     decimal.NewFromInt(5).Neg(),
			Reference:    stock.NewMovementReference(stock.ReferenceKindSale, uuid.New()),
			ActorID:      f.actorID,
		})
		require.NoError(t, err)

		_, err = f.service.Send(ctx, SendTransferCommand{
			BusinessID: f.businessID,
			TransferID: created.ID,
			ActorID:    f.actorID,
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		assert.Equal(t, "5", f.sourceQuantity(t).String())
	})

	t.Run("rejects sending a completed transfer", func(t *testing.T) {
		f := newTransferFixture(t)
		created := f.createTransfer(t, 4)
		f.sendTransfer(t, created.ID)
		_, err := f.service.Receive(ctx, ReceiveTransferCommand{
			BusinessID: f.businessID,
			TransferID: created.ID,
			ActorID:    f.actorID,
		})
		require.NoError(t, err)

		_, err = f.service.Send(ctx, SendTransferCommand{
			BusinessID: f.businessID,
			TransferID: created.ID,
			ActorID:    f.actorID,
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot send")
	})
}

func TestTransferService_Receive(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to the sent quantities and conserves stock", func(t *testing.T) {
		f := newTransferFixture(t)
		created := f.createTransfer(t, 4)
		f.sendTransfer(t, created.ID)

		view, err := f.service.Receive(ctx, ReceiveTransferCommand{
			BusinessID: f.businessID,
			TransferID: created.ID,
			ActorID:    f.actorID,
		})

		require.NoError(t, err)
		assert.Equal(t, "COMPLETED", view.Status)
		assert.True(t, view.Discrepancy.IsZero())
		require.NotNil(t, view.ReceivedBy)
		assert.Equal(t, f.actorID, *view.ReceivedBy)

		// Destination enters at the cost the stock left with.
		dest, err := f.ledger.GetSnapshot(ctx, f.businessID, f.destID, f.productID)
		require.NoError(t, err)
		assert.Equal(t, "4", dest.Quantity.String())
		assert.Equal(t, "2", dest.UnitCost.String())

		// Source + destination add back up to the seeded 10.
		total := f.sourceQuantity(t).Add(dest.Quantity)
		assert.Equal(t, "10", total.String())

		// The transfer-in lot carries no purchase line.
		batches, err := f.ledger.ListBatches(ctx, dest.ID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, batches, 1)
		assert.Equal(t, "4", batches[0].QuantityRemaining.String())
		assert.Nil(t, batches[0].PurchaseItemID)
	})

	t.Run("loss in transit stays off both ledgers", func(t *testing.T) {
		f := newTransferFixture(t)
		created := f.createTransfer(t, 4)
		f.sendTransfer(t, created.ID)

		view, err := f.service.Receive(ctx, ReceiveTransferCommand{
			BusinessID: f.businessID,
			TransferID: created.ID,
			ActorID:    f.actorID,
			Lines: []ReceiveLineInput{{
				TransferItemID: created.Items[0].ID,
				Quantity:       decimal.NewFromInt(3),
			}},
		})

		require.NoError(t, err)
		assert.Equal(t, "1", view.Discrepancy.String())

		dest, err := f.ledger.GetSnapshot(ctx, f.businessID, f.destID, f.productID)
		require.NoError(t, err)
		assert.Equal(t, "3", dest.Quantity.String())
		assert.Equal(t, "6", f.sourceQuantity(t).String())
	})

	t.Run("rejects receiving before sending", func(t *testing.T) {
		f := newTransferFixture(t)
		created := f.createTransfer(t, 4)

		_, err := f.service.Receive(ctx, ReceiveTransferCommand{
			BusinessID: f.businessID,
			TransferID: created.ID,
			ActorID:    f.actorID,
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot receive")
	})
}

func TestTransferService_Approve(t *testing.T) {
	ctx := context.Background()
	f := newTransferFixture(t)
	created := f.createTransfer(t, 4)

	approver := uuid.New()
	view, err := f.service.Approve(ctx, f.businessID, created.ID, approver)

	require.NoError(t, err)
	assert.Equal(t, "APPROVED", view.Status)
	require.NotNil(t, view.ApprovedBy)
	assert.Equal(t, approver, *view.ApprovedBy)

	// Approval never touches the ledger.
	assert.Equal(t, "10", f.sourceQuantity(t).String())
}

func TestTransferService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cancelling in transit returns stock to the source", func(t *testing.T) {
		f := newTransferFixture(t)
		created := f.createTransfer(t, 4)
		f.sendTransfer(t, created.ID)
		require.Equal(t, "6", f.sourceQuantity(t).String())

		view, err := f.service.Cancel(ctx, f.businessID, created.ID, f.actorID, "truck broke down")

		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", view.Status)
		assert.Equal(t, "truck broke down", view.CancelReason)
		assert.Equal(t, "10", f.sourceQuantity(t).String())

		// The reversal is an adjustment movement referencing the transfer.
		movements, err := f.ledger.ListMovementsByReference(ctx,
			stock.NewMovementReference(stock.ReferenceKindTransfer, created.ID))
		require.NoError(t, err)
		var reversal bool
		for _, m := range movements {
			if m.MovementType == stock.MovementTypeAdjustment.String() && m.Quantity.Equal(decimal.NewFromInt(4)) {
				reversal = true
			}
		}
		assert.True(t, reversal, "expected a compensating adjustment movement")
	})

	t.Run("cancelling a pending transfer has no ledger effect", func(t *testing.T) {
		f := newTransferFixture(t)
		created := f.createTransfer(t, 4)

		view, err := f.service.Cancel(ctx, f.businessID, created.ID, f.actorID, "not needed")

		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", view.Status)
		assert.Equal(t, "10", f.sourceQuantity(t).String())
	})

	t.Run("cancelling a completed transfer fails", func(t *testing.T) {
		f := newTransferFixture(t)
		created := f.createTransfer(t, 4)
		f.sendTransfer(t, created.ID)
		_, err := f.service.Receive(ctx, ReceiveTransferCommand{
			BusinessID: f.businessID,
			TransferID: created.ID,
			ActorID:    f.actorID,
		})
		require.NoError(t, err)

		_, err = f.service.Cancel(ctx, f.businessID, created.ID, f.actorID, "too late")

		require.Error(t, err)
	})

	t.Run("requires a reason", func(t *testing.T) {
		f := newTransferFixture(t)
		created := f.createTransfer(t, 4)

		_, err := f.service.Cancel(ctx, f.businessID, created.ID, f.actorID, "")

		require.Error(t, err)
	})
}

func TestTransferService_ListByBranch(t *testing.T) {
	ctx := context.Background()
	f := newTransferFixture(t)
	f.createTransfer(t, 1)
	f.createTransfer(t, 2)

	source, err := f.service.ListByBranch(ctx, f.businessID, f.sourceID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, source, 2)

	dest, err := f.service.ListByBranch(ctx, f.businessID, f.destID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, dest, 2)

	other, err := f.service.ListByBranch(ctx, f.businessID, uuid.New(), shared.DefaultFilter())
	require.NoError(t, err)
	assert.Empty(t, other)
}
