package purchase

import (
	"context"

	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// PurchaseRepository defines the interface for purchase persistence
type PurchaseRepository interface {
	// FindByID finds a purchase with its items
	FindByID(ctx context.Context, businessID, id uuid.UUID) (*Purchase, error)

	// FindByIDForUpdate finds a purchase with its items and locks the
	// purchase row so concurrent receipts against the same order serialize.
	FindByIDForUpdate(ctx context.Context, businessID, id uuid.UUID) (*Purchase, error)

	// FindByStatus finds purchases in a given status, newest first
	FindByStatus(ctx context.Context, businessID uuid.UUID, status PurchaseStatus, filter shared.Filter) ([]Purchase, error)

	// Save creates or updates a purchase and its items
	Save(ctx context.Context, p *Purchase) error
}
