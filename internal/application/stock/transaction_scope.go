package stock

import (
	"context"

	"github.com/retailcore/backend/internal/domain/purchase"
	"github.com/retailcore/backend/internal/domain/stock"
	"github.com/retailcore/backend/internal/domain/transfer"
)

// TransactionScope provides transactional access to the stock repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all stock repositories within
// a transaction. All repositories returned share the same underlying database
// transaction.
//
// Aggregate boundary notes:
//   - StockItems: the ledger snapshot aggregate. FindForUpdate/GetOrCreateForUpdate
//     are only meaningful inside Execute, where the row lock survives until commit.
//   - Movements: append-only; the sole permitted delete is reversing an
//     unapproved adjustment.
//   - Batches: FIFO cost lots, created on receipt-type increases and drawn
//     down on decreases.
//   - Transfers and Purchases participate so their workflow services can
//     update order state in the same transaction as the ledger delta.
type TransactionalRepositories interface {
	// StockItems returns the stock item repository scoped to the current transaction
	StockItems() stock.StockItemRepository
	// Movements returns the movement repository scoped to the current transaction
	Movements() stock.StockMovementRepository
	// Batches returns the batch repository scoped to the current transaction
	Batches() stock.StockBatchRepository
	// Adjustments returns the adjustment repository scoped to the current transaction
	Adjustments() stock.StockAdjustmentRepository
	// Transfers returns the transfer repository scoped to the current transaction
	Transfers() transfer.StockTransferRepository
	// Purchases returns the purchase repository scoped to the current transaction
	Purchases() purchase.PurchaseRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful in tests and wherever atomicity is provided elsewhere.
type NoOpTransactionScope struct {
	stockItems  stock.StockItemRepository
	movements   stock.StockMovementRepository
	batches     stock.StockBatchRepository
	adjustments stock.StockAdjustmentRepository
	transfers   transfer.StockTransferRepository
	purchases   purchase.PurchaseRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories.
func NewNoOpTransactionScope(
	stockItems stock.StockItemRepository,
	movements stock.StockMovementRepository,
	batches stock.StockBatchRepository,
	adjustments stock.StockAdjustmentRepository,
	transfers transfer.StockTransferRepository,
	purchases purchase.PurchaseRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stockItems:  stockItems,
		movements:   movements,
		batches:     batches,
		adjustments: adjustments,
		transfers:   transfers,
		purchases:   purchases,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StockItems returns the stock item repository.
func (s *NoOpTransactionScope) StockItems() stock.StockItemRepository {
	return s.stockItems
}

// Movements returns the movement repository.
func (s *NoOpTransactionScope) Movements() stock.StockMovementRepository {
	return s.movements
}

// Batches returns the batch repository.
func (s *NoOpTransactionScope) Batches() stock.StockBatchRepository {
	return s.batches
}

// Adjustments returns the adjustment repository.
func (s *NoOpTransactionScope) Adjustments() stock.StockAdjustmentRepository {
	return s.adjustments
}

// Transfers returns the transfer repository.
func (s *NoOpTransactionScope) Transfers() transfer.StockTransferRepository {
	return s.transfers
}

// Purchases returns the purchase repository.
func (s *NoOpTransactionScope) Purchases() purchase.PurchaseRepository {
	return s.purchases
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
