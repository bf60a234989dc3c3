package persistence

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/purchase"
	"github.com/retailcore/backend/internal/domain/stock"
	"github.com/retailcore/backend/internal/domain/transfer"
)

// AutoMigrate creates or updates the schema for every stock table. The unique
// composite index on (business_id, branch_id, product_id) comes from the
// StockItem struct tags.
func AutoMigrate(db *gorm.DB) error {
	models := []any{
		&stock.StockItem{},
		&stock.StockMovement{},
		&stock.StockBatch{},
		&stock.StockAdjustment{},
		&transfer.StockTransfer{},
		&transfer.StockTransferItem{},
		&purchase.Purchase{},
		&purchase.PurchaseItem{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	return nil
}
