package persistence

import (
	"context"

	"gorm.io/gorm"

	appstock "github.com/retailcore/backend/internal/application/stock"
	"github.com/retailcore/backend/internal/domain/purchase"
	"github.com/retailcore/backend/internal/domain/stock"
	"github.com/retailcore/backend/internal/domain/transfer"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appstock.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// StockItems returns the stock item repository scoped to the current transaction
func (r *gormTransactionalRepositories) StockItems() stock.StockItemRepository {
	return NewGormStockItemRepository(r.tx)
}

// Movements returns the movement repository scoped to the current transaction
func (r *gormTransactionalRepositories) Movements() stock.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

// Batches returns the batch repository scoped to the current transaction
func (r *gormTransactionalRepositories) Batches() stock.StockBatchRepository {
	return NewGormStockBatchRepository(r.tx)
}

// Adjustments returns the adjustment repository scoped to the current transaction
func (r *gormTransactionalRepositories) Adjustments() stock.StockAdjustmentRepository {
	return NewGormStockAdjustmentRepository(r.tx)
}

// Transfers returns the transfer repository scoped to the current transaction
func (r *gormTransactionalRepositories) Transfers() transfer.StockTransferRepository {
	return NewGormStockTransferRepository(r.tx)
}

// Purchases returns the purchase repository scoped to the current transaction
func (r *gormTransactionalRepositories) Purchases() purchase.PurchaseRepository {
	return NewGormPurchaseRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appstock.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appstock.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
