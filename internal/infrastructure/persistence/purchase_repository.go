package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailcore/backend/internal/domain/purchase"
	"github.com/retailcore/backend/internal/domain/shared"
)

// GormPurchaseRepository implements PurchaseRepository using GORM
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// FindByID finds a purchase with its items
func (r *GormPurchaseRepository) FindByID(ctx context.Context, businessID, id uuid.UUID) (*purchase.Purchase, error) {
	var p purchase.Purchase
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("business_id = ? AND id = ?", businessID, id).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByIDForUpdate finds a purchase with its items, locking the purchase row
// so concurrent receipts against the same order serialize.
func (r *GormPurchaseRepository) FindByIDForUpdate(ctx context.Context, businessID, id uuid.UUID) (*purchase.Purchase, error) {
	var p purchase.Purchase
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "purchases"}}).
		Preload("Items").
		Where("business_id = ? AND id = ?", businessID, id).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, translateLockError(err)
	}
	return &p, nil
}

// FindByStatus finds purchases in a given status, newest first
func (r *GormPurchaseRepository) FindByStatus(ctx context.Context, businessID uuid.UUID, status purchase.PurchaseStatus, filter shared.Filter) ([]purchase.Purchase, error) {
	var purchases []purchase.Purchase
	query := applyFilter(
		r.db.WithContext(ctx).Model(&purchase.Purchase{}).
			Preload("Items").
			Where("business_id = ? AND status = ?", businessID, status),
		filter,
	)

	if err := query.Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

// Save creates or updates a purchase and its items
func (r *GormPurchaseRepository) Save(ctx context.Context, p *purchase.Purchase) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(p).Error
}

// Ensure GormPurchaseRepository implements PurchaseRepository
var _ purchase.PurchaseRepository = (*GormPurchaseRepository)(nil)
