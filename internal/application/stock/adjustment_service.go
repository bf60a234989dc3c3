package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/stock"
)

// AdjustmentService handles manual stock corrections. An adjustment mutates
// the ledger the moment it is created; approval afterwards is an audit
// sign-off only. Deleting an unapproved adjustment reverses the mutation and
// removes its movement, restoring the ledger as if it never happened.
type AdjustmentService struct {
	scope  TransactionScope
	ledger *LedgerService
}

// NewAdjustmentService creates a new AdjustmentService
func NewAdjustmentService(scope TransactionScope, ledger *LedgerService) *AdjustmentService {
	return &AdjustmentService{
		scope:  scope,
		ledger: ledger,
	}
}

// Create applies the correction to the ledger and records the adjustment,
// both in one transaction.
func (s *AdjustmentService) Create(ctx context.Context, cmd CreateAdjustmentCommand) (*AdjustmentView, error) {
	if !cmd.AdjustmentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ADJUSTMENT_TYPE", "Invalid adjustment type")
	}
	if !cmd.Reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_REASON", "Invalid adjustment reason")
	}
	if cmd.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Adjustment quantity must be positive")
	}
	if cmd.ActorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	// The adjustment ID doubles as the movement's reference ID, so it is
	// generated up front.
	adjustmentID := uuid.New()

	signedQuantity := cmd.Quantity
	if cmd.AdjustmentType == stock.AdjustmentTypeDecrease {
		signedQuantity = cmd.Quantity.Neg()
	}

	var view AdjustmentView
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Increases are valued at the snapshot's current blended cost;
		// found stock has no invoice to price it from.
		item, err := repos.StockItems().GetOrCreateForUpdate(ctx, cmd.BusinessID, cmd.BranchID, cmd.ProductID)
		if err != nil {
			return err
		}

		result, err := s.ledger.ApplyDeltaIn(ctx, repos, ApplyDeltaCommand{
			BusinessID:   cmd.BusinessID,
			BranchID:     cmd.BranchID,
			ProductID:    cmd.ProductID,
			MovementType: stock.MovementTypeAdjustment,
			Quantity:     signedQuantity,
			UnitCost:     item.UnitCost,
			Reference:    stock.NewMovementReference(stock.ReferenceKindAdjustment, adjustmentID),
			ActorID:      cmd.ActorID,
			Reason:       string(cmd.Reason),
		})
		if err != nil {
			return err
		}

		costImpact := signedQuantity.Mul(result.UnitCost).Round(4)

		adjustment, err := stock.NewStockAdjustment(
			cmd.BusinessID,
			cmd.BranchID,
			cmd.ProductID,
			result.StockItemID,
			result.MovementID,
			cmd.AdjustmentType,
			cmd.Quantity,
			result.PreviousQuantity,
			result.NewQuantity,
			cmd.Reason,
			costImpact,
			cmd.ActorID,
		)
		if err != nil {
			return err
		}
		adjustment.ID = adjustmentID
		if cmd.Note != "" {
			adjustment.WithNote(cmd.Note)
		}

		if err := repos.Adjustments().Save(ctx, adjustment); err != nil {
			return err
		}

		view = NewAdjustmentView(adjustment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Approve signs off an adjustment. One-way; the ledger is untouched because
// the mutation already happened at creation.
func (s *AdjustmentService) Approve(ctx context.Context, businessID, adjustmentID, actorID uuid.UUID) (*AdjustmentView, error) {
	var view AdjustmentView
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		adjustment, err := repos.Adjustments().FindByID(ctx, businessID, adjustmentID)
		if err != nil {
			return err
		}
		if err := adjustment.Approve(actorID); err != nil {
			return err
		}
		if err := repos.Adjustments().Save(ctx, adjustment); err != nil {
			return err
		}
		view = NewAdjustmentView(adjustment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Delete removes an unapproved adjustment: the ledger mutation is reversed,
// the movement it produced is deleted, and the adjustment row goes away.
// Approved adjustments are permanent.
func (s *AdjustmentService) Delete(ctx context.Context, businessID, adjustmentID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		adjustment, err := repos.Adjustments().FindByID(ctx, businessID, adjustmentID)
		if err != nil {
			return err
		}
		if err := adjustment.EnsureDeletable(); err != nil {
			return err
		}

		item, err := repos.StockItems().FindForUpdate(ctx, businessID, adjustment.BranchID, adjustment.ProductID)
		if err != nil {
			return err
		}

		// Reverse at the snapshot's current blended cost. Decreases leave
		// the average untouched and increases at the average keep it stable,
		// so the reversal restores both quantity and cost.
		if adjustment.AdjustmentType == stock.AdjustmentTypeIncrease {
			if err := item.Decrease(adjustment.QuantityAdjusted, true); err != nil {
				return err
			}
		} else {
			if err := item.Increase(adjustment.QuantityAdjusted, item.UnitCost, false); err != nil {
				return err
			}
		}
		item.ClearDomainEvents()

		if err := repos.StockItems().Save(ctx, item); err != nil {
			return err
		}
		if err := repos.Movements().Delete(ctx, adjustment.MovementID); err != nil {
			return err
		}
		return repos.Adjustments().Delete(ctx, adjustment.ID)
	})
}

// Get returns one adjustment
func (s *AdjustmentService) Get(ctx context.Context, businessID, adjustmentID uuid.UUID) (*AdjustmentView, error) {
	var view AdjustmentView
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		adjustment, err := repos.Adjustments().FindByID(ctx, businessID, adjustmentID)
		if err != nil {
			return err
		}
		view = NewAdjustmentView(adjustment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListByBranch returns adjustments for a branch, newest first
func (s *AdjustmentService) ListByBranch(ctx context.Context, businessID, branchID uuid.UUID, filter shared.Filter) ([]AdjustmentView, error) {
	var views []AdjustmentView
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		adjustments, err := repos.Adjustments().FindByBranch(ctx, businessID, branchID, filter)
		if err != nil {
			return err
		}
		views = make([]AdjustmentView, 0, len(adjustments))
		for i := range adjustments {
			views = append(views, NewAdjustmentView(&adjustments[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}
