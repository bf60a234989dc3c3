package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// StockBatch is a FIFO lot created when stock is received. QuantityReceived
// is immutable; QuantityRemaining decrements as the lot is consumed. Batches
// are never deleted - an exhausted batch remains as cost-lot history.
type StockBatch struct {
	shared.BaseEntity
	StockItemID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseItemID    *uuid.UUID      `gorm:"type:uuid;index"` // Originating purchase line, nil for transfer-in lots
	QuantityReceived  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityRemaining decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null"` // This lot's own cost, distinct from the blended average
	ReceivedDate      time.Time       `gorm:"type:timestamptz;not null;index"`
}

// TableName returns the table name for GORM
func (StockBatch) TableName() string {
	return "stock_batches"
}

// NewStockBatch creates a batch with remaining quantity equal to received quantity
func NewStockBatch(
	stockItemID uuid.UUID,
	purchaseItemID *uuid.UUID,
	quantity decimal.Decimal,
	unitCost decimal.Decimal,
	receivedDate time.Time,
) (*StockBatch, error) {
	if stockItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STOCK_ITEM", "Stock item ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if receivedDate.IsZero() {
		receivedDate = time.Now()
	}

	return &StockBatch{
		BaseEntity:        shared.NewBaseEntity(),
		StockItemID:       stockItemID,
		PurchaseItemID:    purchaseItemID,
		QuantityReceived:  quantity,
		QuantityRemaining: quantity,
		UnitCost:          unitCost,
		ReceivedDate:      receivedDate,
	}, nil
}

// Consume draws down the lot and returns the quantity actually taken,
// which may be less than requested if the lot has less remaining.
func (b *StockBatch) Consume(quantity decimal.Decimal) decimal.Decimal {
	if quantity.LessThanOrEqual(decimal.Zero) || b.IsExhausted() {
		return decimal.Zero
	}

	taken := quantity
	if taken.GreaterThan(b.QuantityRemaining) {
		taken = b.QuantityRemaining
	}
	b.QuantityRemaining = b.QuantityRemaining.Sub(taken)
	b.UpdatedAt = time.Now()
	return taken
}

// IsExhausted returns true once the lot has no quantity remaining
func (b *StockBatch) IsExhausted() bool {
	return b.QuantityRemaining.LessThanOrEqual(decimal.Zero)
}

// RemainingValue returns the valuation of the unconsumed quantity at the lot's own cost
func (b *StockBatch) RemainingValue() decimal.Decimal {
	return b.QuantityRemaining.Mul(b.UnitCost)
}
