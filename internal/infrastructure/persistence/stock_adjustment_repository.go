package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/stock"
)

// GormStockAdjustmentRepository implements StockAdjustmentRepository using GORM
type GormStockAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormStockAdjustmentRepository creates a new GormStockAdjustmentRepository
func NewGormStockAdjustmentRepository(db *gorm.DB) *GormStockAdjustmentRepository {
	return &GormStockAdjustmentRepository{db: db}
}

// FindByID finds an adjustment within a business
func (r *GormStockAdjustmentRepository) FindByID(ctx context.Context, businessID, id uuid.UUID) (*stock.StockAdjustment, error) {
	var adjustment stock.StockAdjustment
	if err := r.db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, id).
		First(&adjustment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &adjustment, nil
}

// FindByBranch finds adjustments for a branch, newest first
func (r *GormStockAdjustmentRepository) FindByBranch(ctx context.Context, businessID, branchID uuid.UUID, filter shared.Filter) ([]stock.StockAdjustment, error) {
	var adjustments []stock.StockAdjustment
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.StockAdjustment{}).
			Where("business_id = ? AND branch_id = ?", businessID, branchID),
		filter,
	)

	if err := query.Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}

// Save creates or updates an adjustment
func (r *GormStockAdjustmentRepository) Save(ctx context.Context, adjustment *stock.StockAdjustment) error {
	return r.db.WithContext(ctx).Save(adjustment).Error
}

// Delete removes an adjustment row
func (r *GormStockAdjustmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&stock.StockAdjustment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormStockAdjustmentRepository implements StockAdjustmentRepository
var _ stock.StockAdjustmentRepository = (*GormStockAdjustmentRepository)(nil)
