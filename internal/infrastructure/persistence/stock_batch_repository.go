package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/stock"
)

// GormStockBatchRepository implements StockBatchRepository using GORM
type GormStockBatchRepository struct {
	db *gorm.DB
}

// NewGormStockBatchRepository creates a new GormStockBatchRepository
func NewGormStockBatchRepository(db *gorm.DB) *GormStockBatchRepository {
	return &GormStockBatchRepository{db: db}
}

// FindByID finds a batch by its ID
func (r *GormStockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.StockBatch, error) {
	var batch stock.StockBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByStockItem finds all batches for a stock item
func (r *GormStockBatchRepository) FindByStockItem(ctx context.Context, stockItemID uuid.UUID, filter shared.Filter) ([]stock.StockBatch, error) {
	var batches []stock.StockBatch
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.StockBatch{}).
			Where("stock_item_id = ?", stockItemID),
		filter,
	)

	if err := query.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindOpenFIFO finds non-exhausted batches for a stock item, oldest received
// first. Ties on received date break by creation time so same-day lots keep
// their arrival order.
func (r *GormStockBatchRepository) FindOpenFIFO(ctx context.Context, stockItemID uuid.UUID) ([]stock.StockBatch, error) {
	var batches []stock.StockBatch
	if err := r.db.WithContext(ctx).
		Where("stock_item_id = ? AND quantity_remaining > 0", stockItemID).
		Order("received_date ASC, created_at ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// Create creates a new batch
func (r *GormStockBatchRepository) Create(ctx context.Context, batch *stock.StockBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

// Save updates a batch
func (r *GormStockBatchRepository) Save(ctx context.Context, batch *stock.StockBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// Ensure GormStockBatchRepository implements StockBatchRepository
var _ stock.StockBatchRepository = (*GormStockBatchRepository)(nil)
