package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// StockItem is the on-hand quantity and cost record for one product at one
// branch. It is the aggregate root for all ledger operations; the composite
// identifier is BusinessID + BranchID + ProductID, enforced unique.
type StockItem struct {
	shared.BusinessAggregateRoot
	BranchID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_branch_product,priority:2"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_branch_product,priority:3"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // On-hand count, may be fractional
	ReservedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Earmarked, not consumable
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Weighted-average cost per unit
	LastRestockedAt  *time.Time      // Set on receipt-type increases

	// Associations - loaded lazily
	Batches []StockBatch `gorm:"foreignKey:StockItemID;references:ID"`
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// NewStockItem creates a zero-quantity stock item for a branch-product combination
func NewStockItem(businessID, branchID, productID uuid.UUID) (*StockItem, error) {
	if businessID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUSINESS", "Business ID cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}

	return &StockItem{
		BusinessAggregateRoot: shared.NewBusinessAggregateRoot(businessID),
		BranchID:              branchID,
		ProductID:             productID,
		Quantity:              decimal.Zero,
		ReservedQuantity:      decimal.Zero,
		UnitCost:              decimal.Zero,
		Batches:               make([]StockBatch, 0),
	}, nil
}

// AvailableQuantity returns the quantity not earmarked by reservations
func (i *StockItem) AvailableQuantity() decimal.Decimal {
	return i.Quantity.Sub(i.ReservedQuantity)
}

// Increase adds quantity and recalculates the weighted-average unit cost.
// isReceipt marks increases that represent new stock arriving (purchase
// receipt, transfer-in) and stamps LastRestockedAt.
func (i *StockItem) Increase(quantity decimal.Decimal, unitCost decimal.Decimal, isReceipt bool) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Increase quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	oldQuantity := i.Quantity
	oldCost := i.UnitCost
	newQuantity := oldQuantity.Add(quantity)

	// Weighted average: (Q*C + q*c) / (Q+q). If the new total is zero
	// (increase onto a negative balance) the previous cost is retained.
	if newQuantity.IsZero() {
		// keep oldCost
	} else if oldQuantity.LessThanOrEqual(decimal.Zero) {
		i.UnitCost = unitCost
	} else {
		totalValue := oldQuantity.Mul(oldCost).Add(quantity.Mul(unitCost))
		i.UnitCost = totalValue.Div(newQuantity).Round(4)
	}

	i.Quantity = newQuantity
	if isReceipt {
		now := time.Now()
		i.LastRestockedAt = &now
	}
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewStockIncreasedEvent(i, quantity, unitCost))

	return nil
}

// Decrease subtracts quantity. The weighted-average unit cost is unchanged on
// decreases. If the result would go negative and allowNegative is false, the
// call fails without mutating anything.
func (i *StockItem) Decrease(quantity decimal.Decimal, allowNegative bool) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Decrease quantity must be positive")
	}

	newQuantity := i.Quantity.Sub(quantity)
	if newQuantity.IsNegative() && !allowNegative {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock for product %s: requested %s, on hand %s",
				i.ProductID, quantity.String(), i.Quantity.String()))
	}

	i.Quantity = newQuantity
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewStockDecreasedEvent(i, quantity))

	return nil
}

// Reserve earmarks quantity so it is no longer available for consumption
func (i *StockItem) Reserve(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Reserve quantity must be positive")
	}
	if i.AvailableQuantity().LessThan(quantity) {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient available stock to reserve: requested %s, available %s",
				quantity.String(), i.AvailableQuantity().String()))
	}

	i.ReservedQuantity = i.ReservedQuantity.Add(quantity)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// ReleaseReservation returns earmarked quantity to the available pool
func (i *StockItem) ReleaseReservation(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}
	if i.ReservedQuantity.LessThan(quantity) {
		return shared.NewDomainError("INVALID_QUANTITY", "Cannot release more than is reserved")
	}

	i.ReservedQuantity = i.ReservedQuantity.Sub(quantity)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// CanFulfill returns true if the available quantity covers the requested quantity
func (i *StockItem) CanFulfill(quantity decimal.Decimal) bool {
	return i.AvailableQuantity().GreaterThanOrEqual(quantity)
}

// TotalValue returns the valuation of all on-hand stock at the blended average cost
func (i *StockItem) TotalValue() decimal.Decimal {
	return i.Quantity.Mul(i.UnitCost)
}

// OpenBatches returns batches that still have quantity remaining, oldest first
func (i *StockItem) OpenBatches() []StockBatch {
	open := make([]StockBatch, 0)
	for _, b := range i.Batches {
		if !b.IsExhausted() {
			open = append(open, b)
		}
	}
	return open
}
