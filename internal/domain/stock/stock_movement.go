package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// MovementType classifies an atomic quantity change
type MovementType string

const (
	// MovementTypePurchase is stock received against a purchase order
	MovementTypePurchase MovementType = "PURCHASE"
	// MovementTypeSale is stock consumed by a sale
	MovementTypeSale MovementType = "SALE"
	// MovementTypeReturn is stock returned by a customer
	MovementTypeReturn MovementType = "RETURN"
	// MovementTypeAdjustment is a manual correction (also used for transfer reversals)
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
	// MovementTypeTransferOut is stock leaving a branch for another branch
	MovementTypeTransferOut MovementType = "TRANSFER_OUT"
	// MovementTypeTransferIn is stock arriving from another branch
	MovementTypeTransferIn MovementType = "TRANSFER_IN"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePurchase,
		MovementTypeSale,
		MovementTypeReturn,
		MovementTypeAdjustment,
		MovementTypeTransferOut,
		MovementTypeTransferIn:
		return true
	}
	return false
}

// ReferenceKind identifies the kind of originating entity behind a movement
type ReferenceKind string

const (
	ReferenceKindPurchase   ReferenceKind = "PURCHASE"
	ReferenceKindSale       ReferenceKind = "SALE"
	ReferenceKindReturn     ReferenceKind = "RETURN"
	ReferenceKindAdjustment ReferenceKind = "ADJUSTMENT"
	ReferenceKindTransfer   ReferenceKind = "TRANSFER"
)

// IsValid returns true if the reference kind is valid
func (k ReferenceKind) IsValid() bool {
	switch k {
	case ReferenceKindPurchase, ReferenceKindSale, ReferenceKindReturn,
		ReferenceKindAdjustment, ReferenceKindTransfer:
		return true
	}
	return false
}

// MovementReference is a strongly-typed link to the entity that caused a
// movement. Modeled as kind + uuid rather than a free-form string pair.
type MovementReference struct {
	Kind ReferenceKind `gorm:"type:varchar(20);not null;index:idx_stock_movement_reference,priority:1"`
	ID   uuid.UUID     `gorm:"type:uuid;not null;index:idx_stock_movement_reference,priority:2"`
}

// NewMovementReference creates a movement reference
func NewMovementReference(kind ReferenceKind, id uuid.UUID) MovementReference {
	return MovementReference{Kind: kind, ID: id}
}

// StockMovement is an immutable, append-only record of one atomic quantity
// change. Once created it is never mutated; the only permitted deletion is
// the reversal of an unapproved adjustment.
type StockMovement struct {
	shared.BaseEntity
	BusinessID       uuid.UUID         `gorm:"type:uuid;not null;index:idx_stock_movement_business_time,priority:1"`
	StockItemID      uuid.UUID         `gorm:"type:uuid;not null;index:idx_stock_movement_item"`
	BranchID         uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	MovementType     MovementType      `gorm:"type:varchar(20);not null;index"`
	Quantity         decimal.Decimal   `gorm:"type:decimal(18,4);not null"` // Signed delta: positive=increase, negative=decrease
	PreviousQuantity decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	NewQuantity      decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	UnitCost         decimal.Decimal   `gorm:"type:decimal(18,4);not null"` // Cost basis applied to this movement
	Reference        MovementReference `gorm:"embedded;embeddedPrefix:reference_"`
	ActorID          *uuid.UUID        `gorm:"type:uuid"`
	Reason           string            `gorm:"type:varchar(255)"`
	OccurredAt       time.Time         `gorm:"type:timestamptz;not null;index:idx_stock_movement_business_time,priority:2"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a movement record. The new quantity must equal the
// previous quantity plus the signed delta.
func NewStockMovement(
	businessID uuid.UUID,
	stockItemID uuid.UUID,
	branchID uuid.UUID,
	productID uuid.UUID,
	movementType MovementType,
	quantity decimal.Decimal,
	previousQuantity decimal.Decimal,
	newQuantity decimal.Decimal,
	unitCost decimal.Decimal,
	reference MovementReference,
) (*StockMovement, error) {
	if businessID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUSINESS", "Business ID cannot be empty")
	}
	if stockItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STOCK_ITEM", "Stock item ID cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if quantity.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity cannot be zero")
	}
	if !newQuantity.Equal(previousQuantity.Add(quantity)) {
		return nil, shared.NewDomainError("INVALID_BALANCE", "New quantity must equal previous quantity plus delta")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if !reference.Kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Invalid movement reference kind")
	}
	if reference.ID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Movement reference ID cannot be empty")
	}

	return &StockMovement{
		BaseEntity:       shared.NewBaseEntity(),
		BusinessID:       businessID,
		StockItemID:      stockItemID,
		BranchID:         branchID,
		ProductID:        productID,
		MovementType:     movementType,
		Quantity:         quantity,
		PreviousQuantity: previousQuantity,
		NewQuantity:      newQuantity,
		UnitCost:         unitCost,
		Reference:        reference,
		OccurredAt:       time.Now(),
	}, nil
}

// WithActorID sets the actor who caused the movement
func (m *StockMovement) WithActorID(actorID uuid.UUID) *StockMovement {
	m.ActorID = &actorID
	return m
}

// WithReason sets a human-readable reason for the movement
func (m *StockMovement) WithReason(reason string) *StockMovement {
	m.Reason = reason
	return m
}

// IsIncrease returns true if this movement increased the quantity
func (m *StockMovement) IsIncrease() bool {
	return m.Quantity.IsPositive()
}

// IsDecrease returns true if this movement decreased the quantity
func (m *StockMovement) IsDecrease() bool {
	return m.Quantity.IsNegative()
}

// TotalCost returns the absolute cost of this movement (|quantity| * unit cost)
func (m *StockMovement) TotalCost() decimal.Decimal {
	return m.Quantity.Abs().Mul(m.UnitCost)
}
