package stock

import (
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// Event type constants for the stock aggregate
const (
	EventTypeStockIncreased = "stock.increased"
	EventTypeStockDecreased = "stock.decreased"
)

// StockIncreasedEvent is emitted when on-hand quantity increases
type StockIncreasedEvent struct {
	shared.BaseDomainEvent
	BranchID    string          `json:"branch_id"`
	ProductID   string          `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	NewUnitCost decimal.Decimal `json:"new_unit_cost"`
}

// NewStockIncreasedEvent creates a StockIncreasedEvent
func NewStockIncreasedEvent(item *StockItem, quantity, unitCost decimal.Decimal) *StockIncreasedEvent {
	return &StockIncreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockIncreased, "StockItem", item.ID, item.BusinessID),
		BranchID:        item.BranchID.String(),
		ProductID:       item.ProductID.String(),
		Quantity:        quantity,
		UnitCost:        unitCost,
		NewQuantity:     item.Quantity,
		NewUnitCost:     item.UnitCost,
	}
}

// StockDecreasedEvent is emitted when on-hand quantity decreases
type StockDecreasedEvent struct {
	shared.BaseDomainEvent
	BranchID     string          `json:"branch_id"`
	ProductID    string          `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	NewQuantity  decimal.Decimal `json:"new_quantity"`
	WentNegative bool            `json:"went_negative"`
}

// NewStockDecreasedEvent creates a StockDecreasedEvent
func NewStockDecreasedEvent(item *StockItem, quantity decimal.Decimal) *StockDecreasedEvent {
	return &StockDecreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDecreased, "StockItem", item.ID, item.BusinessID),
		BranchID:        item.BranchID.String(),
		ProductID:       item.ProductID.String(),
		Quantity:        quantity,
		NewQuantity:     item.Quantity,
		WentNegative:    item.Quantity.IsNegative(),
	}
}
