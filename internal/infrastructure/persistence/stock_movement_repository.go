package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/stock"
)

// GormStockMovementRepository implements StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// FindByID finds a movement by its ID
func (r *GormStockMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.StockMovement, error) {
	var movement stock.StockMovement
	if err := r.db.WithContext(ctx).First(&movement, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// FindByStockItem finds movements for a stock item, newest first
func (r *GormStockMovementRepository) FindByStockItem(ctx context.Context, stockItemID uuid.UUID, filter shared.Filter) ([]stock.StockMovement, error) {
	var movements []stock.StockMovement
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.StockMovement{}).
			Where("stock_item_id = ?", stockItemID),
		filter,
	)

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByReference finds movements caused by a specific originating entity
func (r *GormStockMovementRepository) FindByReference(ctx context.Context, reference stock.MovementReference) ([]stock.StockMovement, error) {
	var movements []stock.StockMovement
	if err := r.db.WithContext(ctx).
		Where("reference_kind = ? AND reference_id = ?", reference.Kind, reference.ID).
		Order("occurred_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Create appends a movement record
func (r *GormStockMovementRepository) Create(ctx context.Context, movement *stock.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// Delete removes a movement. Only used to reverse an unapproved adjustment.
func (r *GormStockMovementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&stock.StockMovement{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SumDeltaByStockItem sums all signed deltas for a stock item
func (r *GormStockMovementRepository) SumDeltaByStockItem(ctx context.Context, stockItemID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&stock.StockMovement{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("stock_item_id = ?", stockItemID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Ensure GormStockMovementRepository implements StockMovementRepository
var _ stock.StockMovementRepository = (*GormStockMovementRepository)(nil)
