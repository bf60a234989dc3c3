package transfer

import (
	"context"

	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// StockTransferRepository defines the interface for transfer persistence
type StockTransferRepository interface {
	// FindByID finds a transfer with its items
	FindByID(ctx context.Context, businessID, id uuid.UUID) (*StockTransfer, error)

	// FindByIDForUpdate finds a transfer with its items and locks the
	// transfer row so concurrent state transitions serialize.
	FindByIDForUpdate(ctx context.Context, businessID, id uuid.UUID) (*StockTransfer, error)

	// FindByStatus finds transfers in a given status, newest first
	FindByStatus(ctx context.Context, businessID uuid.UUID, status TransferStatus, filter shared.Filter) ([]StockTransfer, error)

	// FindByBranch finds transfers where the branch is source or destination
	FindByBranch(ctx context.Context, businessID, branchID uuid.UUID, filter shared.Filter) ([]StockTransfer, error)

	// Save creates or updates a transfer and its items
	Save(ctx context.Context, transfer *StockTransfer) error
}
