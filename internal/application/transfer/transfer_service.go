package transfer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appstock "github.com/retailcore/backend/internal/application/stock"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/stock"
	"github.com/retailcore/backend/internal/domain/transfer"
)

// TransferService runs the two-phase inter-branch transfer workflow. Stock
// leaves the source ledger at send time and enters the destination ledger at
// receive time; while in transit it exists on neither ledger, only on the
// transfer record.
type TransferService struct {
	scope          appstock.TransactionScope
	ledger         *appstock.LedgerService
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewTransferService creates a new TransferService
func NewTransferService(scope appstock.TransactionScope, ledger *appstock.LedgerService, logger *zap.Logger) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{
		scope:  scope,
		ledger: ledger,
		logger: logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *TransferService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create validates source availability for every line and records a pending
// transfer. Nothing moves on any ledger; the source unit cost is captured per
// line so the destination receives at the cost the stock left with.
func (s *TransferService) Create(ctx context.Context, cmd CreateTransferCommand) (*TransferView, error) {
	if len(cmd.Items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Transfer must have at least one item")
	}
	if cmd.ActorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	t, err := transfer.NewStockTransfer(cmd.BusinessID, cmd.TransferNumber, cmd.SourceBranchID, cmd.DestBranchID, cmd.ActorID)
	if err != nil {
		return nil, err
	}
	if cmd.Note != "" {
		t.Note = cmd.Note
	}

	var view TransferView
	err = s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		for _, line := range cmd.Items {
			item, err := repos.StockItems().FindByBranchAndProduct(ctx, cmd.BusinessID, cmd.SourceBranchID, line.ProductID)
			if err != nil {
				return err
			}
			if !item.CanFulfill(line.Quantity) {
				return shared.NewDomainError("INSUFFICIENT_STOCK",
					fmt.Sprintf("Insufficient stock at source branch for product %s: requested %s, available %s",
						line.ProductID, line.Quantity.String(), item.AvailableQuantity().String()))
			}
			if _, err := t.AddItem(line.ProductID, line.Quantity, item.UnitCost); err != nil {
				return err
			}
		}
		if err := repos.Transfers().Save(ctx, t); err != nil {
			return err
		}
		view = NewTransferView(t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer created",
		zap.String("transfer_id", t.ID.String()),
		zap.String("transfer_number", t.TransferNumber),
		zap.Int("item_count", len(t.Items)))

	return &view, nil
}

// Approve signs off a pending transfer. Status-only; no ledger effect.
func (s *TransferService) Approve(ctx context.Context, businessID, transferID, actorID uuid.UUID) (*TransferView, error) {
	var view TransferView
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		t, err := repos.Transfers().FindByIDForUpdate(ctx, businessID, transferID)
		if err != nil {
			return err
		}
		if err := t.Approve(actorID); err != nil {
			return err
		}
		if err := repos.Transfers().Save(ctx, t); err != nil {
			return err
		}
		view = NewTransferView(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Send moves the transfer to in_transit and decrements the source ledger by
// each line's sent quantity. Availability is re-validated under the row lock;
// stock that was available at creation may be gone by now.
func (s *TransferService) Send(ctx context.Context, cmd SendTransferCommand) (*TransferView, error) {
	if cmd.ActorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	overrides := make(map[uuid.UUID]decimal.Decimal, len(cmd.Lines))
	for _, line := range cmd.Lines {
		overrides[line.TransferItemID] = line.Quantity
	}

	var view TransferView
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		t, err := repos.Transfers().FindByIDForUpdate(ctx, cmd.BusinessID, cmd.TransferID)
		if err != nil {
			return err
		}
		if !t.Status.CanTransitionTo(transfer.TransferStatusInTransit) {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot send transfer in %s status", t.Status))
		}

		for idx := range t.Items {
			item := &t.Items[idx]
			quantity := item.QuantityRequested
			if override, ok := overrides[item.ID]; ok {
				quantity = override
			}
			if err := item.MarkSent(quantity); err != nil {
				return err
			}

			if _, err := s.ledger.ApplyDeltaIn(ctx, repos, appstock.ApplyDeltaCommand{
				BusinessID:   t.BusinessID,
				BranchID:     t.SourceBranchID,
				ProductID:    item.ProductID,
				MovementType: stock.MovementTypeTransferOut,
				Quantity:     quantity.Neg(),
				Reference:    stock.NewMovementReference(stock.ReferenceKindTransfer, t.ID),
				ActorID:      cmd.ActorID,
			}); err != nil {
				return err
			}
		}

		if err := t.MarkInTransit(cmd.ActorID); err != nil {
			return err
		}
		if err := repos.Transfers().Save(ctx, t); err != nil {
			return err
		}

		s.publishEvents(ctx, t)
		view = NewTransferView(t)
		return nil
	})
	if err != nil {
		s.logger.Warn("transfer send failed",
			zap.String("transfer_id", cmd.TransferID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("transfer sent",
		zap.String("transfer_id", cmd.TransferID.String()),
		zap.String("status", view.Status))

	return &view, nil
}

// Receive completes the transfer and increments the destination ledger by
// each line's received quantity, at the unit cost captured from the source.
// Receiving less than was sent records a discrepancy; the lost quantity stays
// off both ledgers and is only visible on the transfer record.
func (s *TransferService) Receive(ctx context.Context, cmd ReceiveTransferCommand) (*TransferView, error) {
	if cmd.ActorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	overrides := make(map[uuid.UUID]decimal.Decimal, len(cmd.Lines))
	for _, line := range cmd.Lines {
		overrides[line.TransferItemID] = line.Quantity
	}

	var view TransferView
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		t, err := repos.Transfers().FindByIDForUpdate(ctx, cmd.BusinessID, cmd.TransferID)
		if err != nil {
			return err
		}
		if t.Status != transfer.TransferStatusInTransit {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot receive transfer in %s status", t.Status))
		}

		for idx := range t.Items {
			item := &t.Items[idx]
			quantity := item.QuantitySent
			if override, ok := overrides[item.ID]; ok {
				quantity = override
			}
			if err := item.MarkReceived(quantity); err != nil {
				return err
			}
			if quantity.IsZero() {
				continue
			}

			result, err := s.ledger.ApplyDeltaIn(ctx, repos, appstock.ApplyDeltaCommand{
				BusinessID:   t.BusinessID,
				BranchID:     t.DestBranchID,
				ProductID:    item.ProductID,
				MovementType: stock.MovementTypeTransferIn,
				Quantity:     quantity,
				UnitCost:     item.UnitCost,
				Reference:    stock.NewMovementReference(stock.ReferenceKindTransfer, t.ID),
				ActorID:      cmd.ActorID,
			})
			if err != nil {
				return err
			}

			// Transfer-in lots have no purchase line behind them.
			batch, err := stock.NewStockBatch(result.StockItemID, nil, quantity, item.UnitCost, *t.SentAt)
			if err != nil {
				return err
			}
			if err := repos.Batches().Create(ctx, batch); err != nil {
				return err
			}
		}

		if err := t.Complete(cmd.ActorID); err != nil {
			return err
		}
		if err := repos.Transfers().Save(ctx, t); err != nil {
			return err
		}

		s.publishEvents(ctx, t)
		view = NewTransferView(t)
		return nil
	})
	if err != nil {
		s.logger.Warn("transfer receive failed",
			zap.String("transfer_id", cmd.TransferID.String()),
			zap.Error(err))
		return nil, err
	}

	if !view.Discrepancy.IsZero() {
		s.logger.Warn("transfer completed with discrepancy",
			zap.String("transfer_id", cmd.TransferID.String()),
			zap.String("discrepancy", view.Discrepancy.String()))
	} else {
		s.logger.Info("transfer completed",
			zap.String("transfer_id", cmd.TransferID.String()))
	}

	return &view, nil
}

// Cancel cancels a transfer. Cancelling while in transit returns every sent
// quantity to the source ledger as a compensating adjustment movement before
// the status flips; the transfer record keeps the original send history.
func (s *TransferService) Cancel(ctx context.Context, businessID, transferID, actorID uuid.UUID, reason string) (*TransferView, error) {
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	var view TransferView
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		t, err := repos.Transfers().FindByIDForUpdate(ctx, businessID, transferID)
		if err != nil {
			return err
		}

		if t.RequiresReversalOnCancel() {
			for idx := range t.Items {
				item := &t.Items[idx]
				if !item.QuantitySent.IsPositive() {
					continue
				}
				if _, err := s.ledger.ApplyDeltaIn(ctx, repos, appstock.ApplyDeltaCommand{
					BusinessID:   t.BusinessID,
					BranchID:     t.SourceBranchID,
					ProductID:    item.ProductID,
					MovementType: stock.MovementTypeAdjustment,
					Quantity:     item.QuantitySent,
					UnitCost:     item.UnitCost,
					Reference:    stock.NewMovementReference(stock.ReferenceKindTransfer, t.ID),
					ActorID:      actorID,
					Reason:       "transfer cancelled in transit",
				}); err != nil {
					return err
				}
			}
		}

		if err := t.Cancel(reason); err != nil {
			return err
		}
		if err := repos.Transfers().Save(ctx, t); err != nil {
			return err
		}
		view = NewTransferView(t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer cancelled",
		zap.String("transfer_id", transferID.String()),
		zap.String("reason", reason))

	return &view, nil
}

// Get returns one transfer with its lines
func (s *TransferService) Get(ctx context.Context, businessID, transferID uuid.UUID) (*TransferView, error) {
	var view TransferView
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		t, err := repos.Transfers().FindByID(ctx, businessID, transferID)
		if err != nil {
			return err
		}
		view = NewTransferView(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListByBranch returns transfers touching a branch, newest first
func (s *TransferService) ListByBranch(ctx context.Context, businessID, branchID uuid.UUID, filter shared.Filter) ([]TransferView, error) {
	var views []TransferView
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		transfers, err := repos.Transfers().FindByBranch(ctx, businessID, branchID, filter)
		if err != nil {
			return err
		}
		views = make([]TransferView, 0, len(transfers))
		for i := range transfers {
			views = append(views, NewTransferView(&transfers[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (s *TransferService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, aggregate.GetDomainEvents()...)
	}
	aggregate.ClearDomainEvents()
}
