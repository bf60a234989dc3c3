package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/transfer"
)

// GormStockTransferRepository implements StockTransferRepository using GORM
type GormStockTransferRepository struct {
	db *gorm.DB
}

// NewGormStockTransferRepository creates a new GormStockTransferRepository
func NewGormStockTransferRepository(db *gorm.DB) *GormStockTransferRepository {
	return &GormStockTransferRepository{db: db}
}

// FindByID finds a transfer with its items
func (r *GormStockTransferRepository) FindByID(ctx context.Context, businessID, id uuid.UUID) (*transfer.StockTransfer, error) {
	var t transfer.StockTransfer
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("business_id = ? AND id = ?", businessID, id).
		First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindByIDForUpdate finds a transfer with its items, locking the transfer row
// so concurrent state transitions serialize. Item rows are not locked; they
// are only ever mutated under the parent's lock.
func (r *GormStockTransferRepository) FindByIDForUpdate(ctx context.Context, businessID, id uuid.UUID) (*transfer.StockTransfer, error) {
	var t transfer.StockTransfer
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "stock_transfers"}}).
		Preload("Items").
		Where("business_id = ? AND id = ?", businessID, id).
		First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, translateLockError(err)
	}
	return &t, nil
}

// FindByStatus finds transfers in a given status, newest first
func (r *GormStockTransferRepository) FindByStatus(ctx context.Context, businessID uuid.UUID, status transfer.TransferStatus, filter shared.Filter) ([]transfer.StockTransfer, error) {
	var transfers []transfer.StockTransfer
	query := applyFilter(
		r.db.WithContext(ctx).Model(&transfer.StockTransfer{}).
			Preload("Items").
			Where("business_id = ? AND status = ?", businessID, status),
		filter,
	)

	if err := query.Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// FindByBranch finds transfers where the branch is source or destination
func (r *GormStockTransferRepository) FindByBranch(ctx context.Context, businessID, branchID uuid.UUID, filter shared.Filter) ([]transfer.StockTransfer, error) {
	var transfers []transfer.StockTransfer
	query := applyFilter(
		r.db.WithContext(ctx).Model(&transfer.StockTransfer{}).
			Preload("Items").
			Where("business_id = ? AND (source_branch_id = ? OR dest_branch_id = ?)", businessID, branchID, branchID),
		filter,
	)

	if err := query.Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// Save creates or updates a transfer and its items
func (r *GormStockTransferRepository) Save(ctx context.Context, t *transfer.StockTransfer) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(t).Error
}

// Ensure GormStockTransferRepository implements StockTransferRepository
var _ transfer.StockTransferRepository = (*GormStockTransferRepository)(nil)
