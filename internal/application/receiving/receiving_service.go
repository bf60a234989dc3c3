package receiving

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appstock "github.com/retailcore/backend/internal/application/stock"
	"github.com/retailcore/backend/internal/domain/purchase"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/stock"
)

// ReceivingService runs the purchase receipt workflow. A receipt is
// all-or-nothing: every line's over-receipt check, ledger delta and cost lot
// happen in one transaction, and any failure rolls the whole receipt back.
type ReceivingService struct {
	scope  appstock.TransactionScope
	ledger *appstock.LedgerService
	logger *zap.Logger
}

// NewReceivingService creates a new ReceivingService
func NewReceivingService(scope appstock.TransactionScope, ledger *appstock.LedgerService, logger *zap.Logger) *ReceivingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceivingService{
		scope:  scope,
		ledger: ledger,
		logger: logger,
	}
}

// CreatePurchase creates a purchase order with its lines and places it, so it
// is immediately receivable.
func (s *ReceivingService) CreatePurchase(ctx context.Context, cmd CreatePurchaseCommand) (*PurchaseView, error) {
	if len(cmd.Items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Purchase must have at least one item")
	}
	if cmd.ActorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	rate := cmd.ExchangeRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}

	p, err := purchase.NewPurchase(cmd.BusinessID, cmd.PurchaseNumber, cmd.BranchID, cmd.SupplierID, cmd.Currency, rate)
	if err != nil {
		return nil, err
	}
	p.SetCreatedBy(cmd.ActorID)

	for _, line := range cmd.Items {
		if _, err := p.AddItem(line.ProductID, line.Quantity, line.UnitCost); err != nil {
			return nil, err
		}
	}
	if !cmd.TaxAmount.IsZero() {
		if err := p.SetTax(cmd.TaxAmount); err != nil {
			return nil, err
		}
	}
	if err := p.Place(); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		return repos.Purchases().Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase created",
		zap.String("purchase_id", p.ID.String()),
		zap.String("purchase_number", p.PurchaseNumber),
		zap.String("currency", p.Currency.String()),
		zap.Int("item_count", len(p.Items)))

	view := NewPurchaseView(p)
	return &view, nil
}

// ReceiveGoods records arrived goods against a purchase. For each line it
// checks the line belongs to the purchase, rejects over-receipt, converts the
// line cost to base currency at the purchase's exchange rate, applies the
// ledger delta and opens a FIFO cost lot. The purchase's status is refreshed
// to partially_received or received afterwards.
func (s *ReceivingService) ReceiveGoods(ctx context.Context, cmd ReceiveGoodsCommand) (*PurchaseView, error) {
	if len(cmd.Lines) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Receipt must have at least one line")
	}
	if cmd.ActorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}
	receivedDate := cmd.ReceivedDate
	if receivedDate.IsZero() {
		receivedDate = time.Now()
	}

	var view PurchaseView
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		p, err := repos.Purchases().FindByIDForUpdate(ctx, cmd.BusinessID, cmd.PurchaseID)
		if err != nil {
			return err
		}
		if !p.Status.CanReceive() {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot receive goods on purchase in %s status", p.Status))
		}

		for _, line := range cmd.Lines {
			item := p.GetItem(line.PurchaseItemID)
			if item == nil {
				return shared.NewDomainError("MISMATCHED_REFERENCE",
					fmt.Sprintf("Purchase item %s does not belong to purchase %s", line.PurchaseItemID, p.ID))
			}
			if err := item.AddReceived(line.Quantity); err != nil {
				return err
			}

			baseCost := p.BaseCurrencyUnitCost(item)

			result, err := s.ledger.ApplyDeltaIn(ctx, repos, appstock.ApplyDeltaCommand{
				BusinessID:   p.BusinessID,
				BranchID:     p.BranchID,
				ProductID:    item.ProductID,
				MovementType: stock.MovementTypePurchase,
				Quantity:     line.Quantity,
				UnitCost:     baseCost,
				Reference:    stock.NewMovementReference(stock.ReferenceKindPurchase, p.ID),
				ActorID:      cmd.ActorID,
			})
			if err != nil {
				return err
			}

			batch, err := stock.NewStockBatch(result.StockItemID, &item.ID, line.Quantity, baseCost, receivedDate)
			if err != nil {
				return err
			}
			if err := repos.Batches().Create(ctx, batch); err != nil {
				return err
			}
		}

		p.RefreshReceiptStatus(cmd.ActorID, receivedDate)
		if err := repos.Purchases().Save(ctx, p); err != nil {
			return err
		}

		view = NewPurchaseView(p)
		return nil
	})
	if err != nil {
		s.logger.Warn("purchase receipt failed",
			zap.String("purchase_id", cmd.PurchaseID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("purchase goods received",
		zap.String("purchase_id", cmd.PurchaseID.String()),
		zap.String("status", view.Status),
		zap.Int("line_count", len(cmd.Lines)))

	return &view, nil
}

// CancelPurchase cancels an order that has not received any goods
func (s *ReceivingService) CancelPurchase(ctx context.Context, businessID, purchaseID uuid.UUID, reason string) (*PurchaseView, error) {
	var view PurchaseView
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		p, err := repos.Purchases().FindByIDForUpdate(ctx, businessID, purchaseID)
		if err != nil {
			return err
		}
		if err := p.Cancel(reason); err != nil {
			return err
		}
		if err := repos.Purchases().Save(ctx, p); err != nil {
			return err
		}
		view = NewPurchaseView(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// GetPurchase returns one purchase with its lines
func (s *ReceivingService) GetPurchase(ctx context.Context, businessID, purchaseID uuid.UUID) (*PurchaseView, error) {
	var view PurchaseView
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		p, err := repos.Purchases().FindByID(ctx, businessID, purchaseID)
		if err != nil {
			return err
		}
		view = NewPurchaseView(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}
