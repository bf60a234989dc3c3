package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/stock"
)

// ApplyDeltaCommand describes one atomic quantity change against a
// branch-product snapshot. Quantity is signed: positive increases,
// negative decreases.
type ApplyDeltaCommand struct {
	BusinessID   uuid.UUID
	BranchID     uuid.UUID
	ProductID    uuid.UUID
	MovementType stock.MovementType
	Quantity     decimal.Decimal
	// UnitCost is the cost basis for increases. Ignored on decreases, where
	// the snapshot's blended average cost is recorded instead.
	UnitCost  decimal.Decimal
	Reference stock.MovementReference
	ActorID   uuid.UUID
	Reason    string
	// AllowNegative permits the snapshot to go below zero. Only manual
	// adjustments and trusted flows set this.
	AllowNegative bool
}

// DeltaResult reports the ledger state after a delta was applied
type DeltaResult struct {
	StockItemID      uuid.UUID
	MovementID       uuid.UUID
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
	UnitCost         decimal.Decimal
}

// CreateAdjustmentCommand creates a manual correction. The ledger is mutated
// immediately; approval later is audit-only.
type CreateAdjustmentCommand struct {
	BusinessID     uuid.UUID
	BranchID       uuid.UUID
	ProductID      uuid.UUID
	AdjustmentType stock.AdjustmentType
	Quantity       decimal.Decimal
	Reason         stock.AdjustmentReason
	Note           string
	ActorID        uuid.UUID
}

// StockItemView is the read model for a ledger snapshot
type StockItemView struct {
	ID                uuid.UUID       `json:"id"`
	BranchID          uuid.UUID       `json:"branch_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	TotalValue        decimal.Decimal `json:"total_value"`
	LastRestockedAt   *time.Time      `json:"last_restocked_at,omitempty"`
}

// NewStockItemView builds the read model from a snapshot
func NewStockItemView(item *stock.StockItem) StockItemView {
	return StockItemView{
		ID:                item.ID,
		BranchID:          item.BranchID,
		ProductID:         item.ProductID,
		Quantity:          item.Quantity,
		ReservedQuantity:  item.ReservedQuantity,
		AvailableQuantity: item.AvailableQuantity(),
		UnitCost:          item.UnitCost,
		TotalValue:        item.TotalValue(),
		LastRestockedAt:   item.LastRestockedAt,
	}
}

// MovementView is the read model for one movement record
type MovementView struct {
	ID               uuid.UUID       `json:"id"`
	StockItemID      uuid.UUID       `json:"stock_item_id"`
	BranchID         uuid.UUID       `json:"branch_id"`
	ProductID        uuid.UUID       `json:"product_id"`
	MovementType     string          `json:"movement_type"`
	Quantity         decimal.Decimal `json:"quantity"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	ReferenceKind    string          `json:"reference_kind"`
	ReferenceID      uuid.UUID       `json:"reference_id"`
	ActorID          *uuid.UUID      `json:"actor_id,omitempty"`
	Reason           string          `json:"reason,omitempty"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

// NewMovementView builds the read model from a movement
func NewMovementView(m *stock.StockMovement) MovementView {
	return MovementView{
		ID:               m.ID,
		StockItemID:      m.StockItemID,
		BranchID:         m.BranchID,
		ProductID:        m.ProductID,
		MovementType:     m.MovementType.String(),
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		UnitCost:         m.UnitCost,
		ReferenceKind:    string(m.Reference.Kind),
		ReferenceID:      m.Reference.ID,
		ActorID:          m.ActorID,
		Reason:           m.Reason,
		OccurredAt:       m.OccurredAt,
	}
}

// BatchView is the read model for a FIFO cost lot
type BatchView struct {
	ID                uuid.UUID       `json:"id"`
	StockItemID       uuid.UUID       `json:"stock_item_id"`
	PurchaseItemID    *uuid.UUID      `json:"purchase_item_id,omitempty"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	QuantityRemaining decimal.Decimal `json:"quantity_remaining"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	ReceivedDate      time.Time       `json:"received_date"`
}

// NewBatchView builds the read model from a batch
func NewBatchView(b *stock.StockBatch) BatchView {
	return BatchView{
		ID:                b.ID,
		StockItemID:       b.StockItemID,
		PurchaseItemID:    b.PurchaseItemID,
		QuantityReceived:  b.QuantityReceived,
		QuantityRemaining: b.QuantityRemaining,
		UnitCost:          b.UnitCost,
		ReceivedDate:      b.ReceivedDate,
	}
}

// AdjustmentView is the read model for a manual correction
type AdjustmentView struct {
	ID               uuid.UUID       `json:"id"`
	BranchID         uuid.UUID       `json:"branch_id"`
	ProductID        uuid.UUID       `json:"product_id"`
	AdjustmentType   string          `json:"adjustment_type"`
	QuantityAdjusted decimal.Decimal `json:"quantity_adjusted"`
	BeforeQuantity   decimal.Decimal `json:"before_quantity"`
	AfterQuantity    decimal.Decimal `json:"after_quantity"`
	Reason           string          `json:"reason"`
	Note             string          `json:"note,omitempty"`
	CostImpact       decimal.Decimal `json:"cost_impact"`
	IsApproved       bool            `json:"is_approved"`
	ApprovedBy       *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time      `json:"approved_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// NewAdjustmentView builds the read model from an adjustment
func NewAdjustmentView(a *stock.StockAdjustment) AdjustmentView {
	return AdjustmentView{
		ID:               a.ID,
		BranchID:         a.BranchID,
		ProductID:        a.ProductID,
		AdjustmentType:   string(a.AdjustmentType),
		QuantityAdjusted: a.QuantityAdjusted,
		BeforeQuantity:   a.BeforeQuantity,
		AfterQuantity:    a.AfterQuantity,
		Reason:           string(a.Reason),
		Note:             a.Note,
		CostImpact:       a.CostImpact,
		IsApproved:       a.IsApproved,
		ApprovedBy:       a.ApprovedBy,
		ApprovedAt:       a.ApprovedAt,
		CreatedAt:        a.CreatedAt,
	}
}
