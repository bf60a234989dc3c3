package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/stock"
)

// LedgerService is the single write path to stock quantities. Every quantity
// change, whatever workflow caused it, goes through ApplyDelta so the
// snapshot, the movement log and the FIFO lots stay consistent.
type LedgerService struct {
	scope          TransactionScope
	eventPublisher shared.EventPublisher
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(scope TransactionScope) *LedgerService {
	return &LedgerService{scope: scope}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ApplyDelta applies one atomic quantity change in its own transaction.
// Workflows that need the delta inside a larger transaction call ApplyDeltaIn
// with their own transactional repositories instead.
func (s *LedgerService) ApplyDelta(ctx context.Context, cmd ApplyDeltaCommand) (*DeltaResult, error) {
	var result *DeltaResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		result, err = s.ApplyDeltaIn(ctx, repos, cmd)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyDeltaIn applies a delta using the caller's transactional repositories.
// The snapshot row is locked for the remainder of the transaction, the
// movement is appended, and on decreases the FIFO lots are drawn down.
func (s *LedgerService) ApplyDeltaIn(ctx context.Context, repos TransactionalRepositories, cmd ApplyDeltaCommand) (*DeltaResult, error) {
	if cmd.Quantity.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Delta quantity cannot be zero")
	}
	if !cmd.MovementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if cmd.ActorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	item, err := repos.StockItems().GetOrCreateForUpdate(ctx, cmd.BusinessID, cmd.BranchID, cmd.ProductID)
	if err != nil {
		return nil, err
	}

	previousQuantity := item.Quantity
	movementCost := cmd.UnitCost

	if cmd.Quantity.IsPositive() {
		if err := item.Increase(cmd.Quantity, cmd.UnitCost, isReceiptType(cmd.MovementType)); err != nil {
			return nil, err
		}
	} else {
		// Decreases are valued at the blended average cost in effect when
		// the stock leaves, not at any caller-supplied cost.
		movementCost = item.UnitCost
		if err := item.Decrease(cmd.Quantity.Abs(), cmd.AllowNegative); err != nil {
			return nil, err
		}
		if err := s.consumeFIFO(ctx, repos, item.ID, cmd.Quantity.Abs()); err != nil {
			return nil, err
		}
	}

	movement, err := stock.NewStockMovement(
		cmd.BusinessID,
		item.ID,
		cmd.BranchID,
		cmd.ProductID,
		cmd.MovementType,
		cmd.Quantity,
		previousQuantity,
		item.Quantity,
		movementCost,
		cmd.Reference,
	)
	if err != nil {
		return nil, err
	}
	movement.WithActorID(cmd.ActorID)
	if cmd.Reason != "" {
		movement.WithReason(cmd.Reason)
	}

	if err := repos.Movements().Create(ctx, movement); err != nil {
		return nil, err
	}
	if err := repos.StockItems().Save(ctx, item); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, item)

	return &DeltaResult{
		StockItemID:      item.ID,
		MovementID:       movement.ID,
		PreviousQuantity: previousQuantity,
		NewQuantity:      item.Quantity,
		UnitCost:         item.UnitCost,
	}, nil
}

// consumeFIFO draws the decrease out of the open lots, oldest first. Stock
// that predates lot tracking has no lot to draw from; the shortfall is
// silently left unmatched rather than failing the decrease.
func (s *LedgerService) consumeFIFO(ctx context.Context, repos TransactionalRepositories, stockItemID uuid.UUID, quantity decimal.Decimal) error {
	batches, err := repos.Batches().FindOpenFIFO(ctx, stockItemID)
	if err != nil {
		return err
	}

	remaining := quantity
	for i := range batches {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		taken := batches[i].Consume(remaining)
		if taken.IsZero() {
			continue
		}
		if err := repos.Batches().Save(ctx, &batches[i]); err != nil {
			return err
		}
		remaining = remaining.Sub(taken)
	}

	return nil
}

// GetSnapshot returns the ledger snapshot for a branch-product combination
func (s *LedgerService) GetSnapshot(ctx context.Context, businessID, branchID, productID uuid.UUID) (*StockItemView, error) {
	var view StockItemView
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.StockItems().FindByBranchAndProduct(ctx, businessID, branchID, productID)
		if err != nil {
			return err
		}
		view = NewStockItemView(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListBranchSnapshots returns all ledger snapshots in a branch
func (s *LedgerService) ListBranchSnapshots(ctx context.Context, businessID, branchID uuid.UUID, filter shared.Filter) ([]StockItemView, error) {
	var views []StockItemView
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		items, err := repos.StockItems().FindByBranch(ctx, businessID, branchID, filter)
		if err != nil {
			return err
		}
		views = make([]StockItemView, 0, len(items))
		for i := range items {
			views = append(views, NewStockItemView(&items[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// ListMovements returns the movement history for a stock item, newest first
func (s *LedgerService) ListMovements(ctx context.Context, stockItemID uuid.UUID, filter shared.Filter) ([]MovementView, error) {
	var views []MovementView
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		movements, err := repos.Movements().FindByStockItem(ctx, stockItemID, filter)
		if err != nil {
			return err
		}
		views = make([]MovementView, 0, len(movements))
		for i := range movements {
			views = append(views, NewMovementView(&movements[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// ListMovementsByReference returns every movement caused by one originating entity
func (s *LedgerService) ListMovementsByReference(ctx context.Context, reference stock.MovementReference) ([]MovementView, error) {
	var views []MovementView
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		movements, err := repos.Movements().FindByReference(ctx, reference)
		if err != nil {
			return err
		}
		views = make([]MovementView, 0, len(movements))
		for i := range movements {
			views = append(views, NewMovementView(&movements[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// ListBatches returns the cost lots for a stock item
func (s *LedgerService) ListBatches(ctx context.Context, stockItemID uuid.UUID, filter shared.Filter) ([]BatchView, error) {
	var views []BatchView
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		batches, err := repos.Batches().FindByStockItem(ctx, stockItemID, filter)
		if err != nil {
			return err
		}
		views = make([]BatchView, 0, len(batches))
		for i := range batches {
			views = append(views, NewBatchView(&batches[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// Reserve earmarks available quantity on a snapshot so concurrent consumers
// cannot take it. The reservation is not a movement and logs nothing.
func (s *LedgerService) Reserve(ctx context.Context, businessID, branchID, productID uuid.UUID, quantity decimal.Decimal) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.StockItems().FindForUpdate(ctx, businessID, branchID, productID)
		if err != nil {
			return err
		}
		if err := item.Reserve(quantity); err != nil {
			return err
		}
		return repos.StockItems().Save(ctx, item)
	})
}

// ReleaseReservation returns earmarked quantity to the available pool
func (s *LedgerService) ReleaseReservation(ctx context.Context, businessID, branchID, productID uuid.UUID, quantity decimal.Decimal) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.StockItems().FindForUpdate(ctx, businessID, branchID, productID)
		if err != nil {
			return err
		}
		if err := item.ReleaseReservation(quantity); err != nil {
			return err
		}
		return repos.StockItems().Save(ctx, item)
	})
}

// Reconcile recomputes a snapshot's quantity from its movement log and reports
// both values. Because snapshots start at zero and every change appends a
// movement, the two must agree; a mismatch indicates out-of-band writes.
func (s *LedgerService) Reconcile(ctx context.Context, businessID, branchID, productID uuid.UUID) (snapshot, ledgerSum decimal.Decimal, err error) {
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.StockItems().FindByBranchAndProduct(ctx, businessID, branchID, productID)
		if err != nil {
			return err
		}
		sum, err := repos.Movements().SumDeltaByStockItem(ctx, item.ID)
		if err != nil {
			return err
		}
		snapshot = item.Quantity
		ledgerSum = sum
		return nil
	})
	return snapshot, ledgerSum, err
}

// isReceiptType reports whether the movement represents new stock arriving,
// which stamps LastRestockedAt on the snapshot.
func isReceiptType(t stock.MovementType) bool {
	return t == stock.MovementTypePurchase || t == stock.MovementTypeTransferIn
}

func (s *LedgerService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, aggregate.GetDomainEvents()...)
	}
	aggregate.ClearDomainEvents()
}
