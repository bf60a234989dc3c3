package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// AdjustmentType is the direction of a manual stock correction
type AdjustmentType string

const (
	AdjustmentTypeIncrease AdjustmentType = "INCREASE"
	AdjustmentTypeDecrease AdjustmentType = "DECREASE"
)

// IsValid returns true if the adjustment type is valid
func (t AdjustmentType) IsValid() bool {
	return t == AdjustmentTypeIncrease || t == AdjustmentTypeDecrease
}

// AdjustmentReason classifies why stock was corrected
type AdjustmentReason string

const (
	AdjustmentReasonDamaged    AdjustmentReason = "DAMAGED"
	AdjustmentReasonExpired    AdjustmentReason = "EXPIRED"
	AdjustmentReasonTheft      AdjustmentReason = "THEFT"
	AdjustmentReasonCountError AdjustmentReason = "COUNT_ERROR"
	AdjustmentReasonLost       AdjustmentReason = "LOST"
	AdjustmentReasonFound      AdjustmentReason = "FOUND"
	AdjustmentReasonOther      AdjustmentReason = "OTHER"
)

// IsValid returns true if the reason is valid
func (r AdjustmentReason) IsValid() bool {
	switch r {
	case AdjustmentReasonDamaged, AdjustmentReasonExpired, AdjustmentReasonTheft,
		AdjustmentReasonCountError, AdjustmentReasonLost, AdjustmentReasonFound,
		AdjustmentReasonOther:
		return true
	}
	return false
}

// StockAdjustment records a manual correction. The ledger mutation happens at
// creation time; approval is a one-way audit sign-off that gates nothing.
// Deletion is only permitted before approval and must reverse the mutation.
type StockAdjustment struct {
	shared.BusinessAggregateRoot
	BranchID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	StockItemID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	MovementID       uuid.UUID        `gorm:"type:uuid;not null"` // The movement this adjustment produced
	AdjustmentType   AdjustmentType   `gorm:"type:varchar(10);not null"`
	QuantityAdjusted decimal.Decimal  `gorm:"type:decimal(18,4);not null"` // Always positive; direction given by type
	BeforeQuantity   decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	AfterQuantity    decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Reason           AdjustmentReason `gorm:"type:varchar(20);not null"`
	Note             string           `gorm:"type:varchar(500)"`
	CostImpact       decimal.Decimal  `gorm:"type:decimal(18,4);not null"` // Signed monetary effect
	IsApproved       bool             `gorm:"not null;default:false"`
	ApprovedBy       *uuid.UUID       `gorm:"type:uuid"`
	ApprovedAt       *time.Time
}

// TableName returns the table name for GORM
func (StockAdjustment) TableName() string {
	return "stock_adjustments"
}

// NewStockAdjustment creates an unapproved adjustment record capturing the
// ledger state around the already-applied mutation.
func NewStockAdjustment(
	businessID, branchID, productID, stockItemID, movementID uuid.UUID,
	adjustmentType AdjustmentType,
	quantity decimal.Decimal,
	beforeQuantity, afterQuantity decimal.Decimal,
	reason AdjustmentReason,
	costImpact decimal.Decimal,
	createdBy uuid.UUID,
) (*StockAdjustment, error) {
	if !adjustmentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ADJUSTMENT_TYPE", "Invalid adjustment type")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Adjustment quantity must be positive")
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_REASON", "Invalid adjustment reason")
	}
	if stockItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STOCK_ITEM", "Stock item ID cannot be empty")
	}
	if movementID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MOVEMENT", "Movement ID cannot be empty")
	}

	return &StockAdjustment{
		BusinessAggregateRoot: shared.NewBusinessAggregateRootWithCreator(businessID, createdBy),
		BranchID:              branchID,
		ProductID:             productID,
		StockItemID:           stockItemID,
		MovementID:            movementID,
		AdjustmentType:        adjustmentType,
		QuantityAdjusted:      quantity,
		BeforeQuantity:        beforeQuantity,
		AfterQuantity:         afterQuantity,
		Reason:                reason,
		CostImpact:            costImpact,
		IsApproved:            false,
	}, nil
}

// Approve marks the adjustment as signed off. The transition is one-way.
func (a *StockAdjustment) Approve(actorID uuid.UUID) error {
	if a.IsApproved {
		return shared.NewDomainError("INVALID_STATE", "Adjustment is already approved")
	}
	if actorID == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Approver ID cannot be empty")
	}

	now := time.Now()
	a.IsApproved = true
	a.ApprovedBy = &actorID
	a.ApprovedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()

	return nil
}

// EnsureDeletable returns an error if the adjustment can no longer be deleted
func (a *StockAdjustment) EnsureDeletable() error {
	if a.IsApproved {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Adjustment %s is approved and can no longer be deleted", a.ID))
	}
	return nil
}

// SignedQuantity returns the delta this adjustment applied to the ledger
func (a *StockAdjustment) SignedQuantity() decimal.Decimal {
	if a.AdjustmentType == AdjustmentTypeDecrease {
		return a.QuantityAdjusted.Neg()
	}
	return a.QuantityAdjusted
}

// WithNote attaches a free-form note to the adjustment
func (a *StockAdjustment) WithNote(note string) *StockAdjustment {
	a.Note = note
	return a
}
