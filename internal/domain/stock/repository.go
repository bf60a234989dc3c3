package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// StockItemRepository defines the interface for stock item persistence
type StockItemRepository interface {
	// FindByID finds a stock item by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockItem, error)

	// FindByBranchAndProduct finds the snapshot for a branch-product combination
	FindByBranchAndProduct(ctx context.Context, businessID, branchID, productID uuid.UUID) (*StockItem, error)

	// FindForUpdate finds the snapshot and acquires an exclusive row lock on it.
	// Must be called inside a transaction; the lock is held until commit.
	// Returns shared.ErrLockTimeout if the lock cannot be acquired in time.
	FindForUpdate(ctx context.Context, businessID, branchID, productID uuid.UUID) (*StockItem, error)

	// GetOrCreate returns the existing snapshot or creates a zero-quantity one.
	// Concurrent first-time access for the same triple yields exactly one row.
	GetOrCreate(ctx context.Context, businessID, branchID, productID uuid.UUID) (*StockItem, error)

	// GetOrCreateForUpdate combines GetOrCreate with FindForUpdate so callers
	// hold the row lock on the snapshot they are about to mutate.
	GetOrCreateForUpdate(ctx context.Context, businessID, branchID, productID uuid.UUID) (*StockItem, error)

	// FindByBranch finds all snapshots in a branch
	FindByBranch(ctx context.Context, businessID, branchID uuid.UUID, filter shared.Filter) ([]StockItem, error)

	// Save creates or updates a stock item
	Save(ctx context.Context, item *StockItem) error
}

// StockMovementRepository is the append-only store for movement records
type StockMovementRepository interface {
	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockMovement, error)

	// FindByStockItem finds movements for a stock item, newest first
	FindByStockItem(ctx context.Context, stockItemID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByReference finds movements caused by a specific originating entity
	FindByReference(ctx context.Context, reference MovementReference) ([]StockMovement, error)

	// Create appends a movement (no update allowed)
	Create(ctx context.Context, movement *StockMovement) error

	// Delete removes a movement. Only used to reverse an unapproved adjustment.
	Delete(ctx context.Context, id uuid.UUID) error

	// SumDeltaByStockItem sums all signed deltas for a stock item. Because
	// snapshots start at zero, the sum reconstructs the current quantity.
	SumDeltaByStockItem(ctx context.Context, stockItemID uuid.UUID) (decimal.Decimal, error)
}

// StockBatchRepository stores FIFO cost lots
type StockBatchRepository interface {
	// FindByID finds a batch by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockBatch, error)

	// FindByStockItem finds all batches for a stock item
	FindByStockItem(ctx context.Context, stockItemID uuid.UUID, filter shared.Filter) ([]StockBatch, error)

	// FindOpenFIFO finds non-exhausted batches for a stock item, oldest received first
	FindOpenFIFO(ctx context.Context, stockItemID uuid.UUID) ([]StockBatch, error)

	// Create creates a new batch
	Create(ctx context.Context, batch *StockBatch) error

	// Save updates a batch (only QuantityRemaining legitimately changes)
	Save(ctx context.Context, batch *StockBatch) error
}

// StockAdjustmentRepository stores manual correction records
type StockAdjustmentRepository interface {
	// FindByID finds an adjustment by its ID
	FindByID(ctx context.Context, businessID, id uuid.UUID) (*StockAdjustment, error)

	// FindByBranch finds adjustments for a branch, newest first
	FindByBranch(ctx context.Context, businessID, branchID uuid.UUID, filter shared.Filter) ([]StockAdjustment, error)

	// Save creates or updates an adjustment
	Save(ctx context.Context, adjustment *StockAdjustment) error

	// Delete removes an adjustment row. Callers must have reversed its
	// ledger effect first; approved adjustments are never deleted.
	Delete(ctx context.Context, id uuid.UUID) error
}
