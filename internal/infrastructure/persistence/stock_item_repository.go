package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/stock"
)

// sqlStater is implemented by the postgres driver's error type and exposes
// the SQLSTATE code.
type sqlStater interface {
	SQLState() string
}

// sqlStateLockNotAvailable is raised when lock_timeout expires while waiting
// on a row lock.
const sqlStateLockNotAvailable = "55P03"

// translateLockError maps a lock_timeout failure to the domain error
func translateLockError(err error) error {
	var stater sqlStater
	if errors.As(err, &stater) && stater.SQLState() == sqlStateLockNotAvailable {
		return shared.ErrLockTimeout
	}
	return err
}

// GormStockItemRepository implements StockItemRepository using GORM
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a new GormStockItemRepository
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

// FindByID finds a stock item by its ID
func (r *GormStockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.StockItem, error) {
	var item stock.StockItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByBranchAndProduct finds the snapshot for a branch-product combination
func (r *GormStockItemRepository) FindByBranchAndProduct(ctx context.Context, businessID, branchID, productID uuid.UUID) (*stock.StockItem, error) {
	var item stock.StockItem
	if err := r.db.WithContext(ctx).
		Where("business_id = ? AND branch_id = ? AND product_id = ?", businessID, branchID, productID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindForUpdate finds the snapshot and acquires an exclusive row lock on it.
// Must run inside a transaction; the lock is released at commit or rollback.
func (r *GormStockItemRepository) FindForUpdate(ctx context.Context, businessID, branchID, productID uuid.UUID) (*stock.StockItem, error) {
	var item stock.StockItem
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("business_id = ? AND branch_id = ? AND product_id = ?", businessID, branchID, productID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, translateLockError(err)
	}
	return &item, nil
}

// GetOrCreate returns the existing snapshot or creates a zero-quantity one.
// INSERT ... ON CONFLICT DO NOTHING keeps concurrent first movements for the
// same triple from creating duplicate rows.
func (r *GormStockItemRepository) GetOrCreate(ctx context.Context, businessID, branchID, productID uuid.UUID) (*stock.StockItem, error) {
	item, err := r.FindByBranchAndProduct(ctx, businessID, branchID, productID)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	item, err = stock.NewStockItem(businessID, branchID, productID)
	if err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "business_id"}, {Name: "branch_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(item)
	if result.Error != nil {
		return nil, result.Error
	}

	// Lost the race: another transaction inserted the row first
	if result.RowsAffected == 0 {
		return r.FindByBranchAndProduct(ctx, businessID, branchID, productID)
	}

	return item, nil
}

// GetOrCreateForUpdate combines GetOrCreate with FindForUpdate so the caller
// holds the row lock on the snapshot it is about to mutate.
func (r *GormStockItemRepository) GetOrCreateForUpdate(ctx context.Context, businessID, branchID, productID uuid.UUID) (*stock.StockItem, error) {
	if _, err := r.GetOrCreate(ctx, businessID, branchID, productID); err != nil {
		return nil, err
	}
	return r.FindForUpdate(ctx, businessID, branchID, productID)
}

// FindByBranch finds all snapshots in a branch
func (r *GormStockItemRepository) FindByBranch(ctx context.Context, businessID, branchID uuid.UUID, filter shared.Filter) ([]stock.StockItem, error) {
	var items []stock.StockItem
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.StockItem{}).
			Where("business_id = ? AND branch_id = ?", businessID, branchID),
		filter,
	)

	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save creates or updates a stock item
func (r *GormStockItemRepository) Save(ctx context.Context, item *stock.StockItem) error {
	return r.db.WithContext(ctx).Omit("Batches").Save(item).Error
}

// applyFilter applies pagination and ordering to a query
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// Ensure GormStockItemRepository implements StockItemRepository
var _ stock.StockItemRepository = (*GormStockItemRepository)(nil)
