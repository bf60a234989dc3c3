package transfer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// TransferStatus represents the status of a stock transfer
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusApproved  TransferStatus = "APPROVED"
	TransferStatusInTransit TransferStatus = "IN_TRANSIT"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

// IsValid checks if the status is a valid TransferStatus
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferStatusPending, TransferStatusApproved, TransferStatusInTransit,
		TransferStatusCompleted, TransferStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of TransferStatus
func (s TransferStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s TransferStatus) CanTransitionTo(target TransferStatus) bool {
	switch s {
	case TransferStatusPending:
		return target == TransferStatusApproved || target == TransferStatusInTransit || target == TransferStatusCancelled
	case TransferStatusApproved:
		return target == TransferStatusInTransit || target == TransferStatusCancelled
	case TransferStatusInTransit:
		return target == TransferStatusCompleted || target == TransferStatusCancelled
	case TransferStatusCompleted, TransferStatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true for completed and cancelled
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusCompleted || s == TransferStatusCancelled
}

// StockTransferItem is one product line on a transfer. Requested, sent and
// received quantities are tracked independently because shrinkage and partial
// receipt legitimately make them differ.
type StockTransferItem struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	TransferID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null"`
	QuantityRequested decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantitySent      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QuantityReceived  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Source cost captured at creation
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockTransferItem) TableName() string {
	return "stock_transfer_items"
}

// NewStockTransferItem creates a transfer line
func NewStockTransferItem(transferID, productID uuid.UUID, quantityRequested, unitCost decimal.Decimal) (*StockTransferItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantityRequested.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	now := time.Now()
	return &StockTransferItem{
		ID:                uuid.New(),
		TransferID:        transferID,
		ProductID:         productID,
		QuantityRequested: quantityRequested,
		QuantitySent:      decimal.Zero,
		QuantityReceived:  decimal.Zero,
		UnitCost:          unitCost,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// MarkSent records the quantity that physically left the source branch
func (i *StockTransferItem) MarkSent(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Sent quantity must be positive")
	}
	if quantity.GreaterThan(i.QuantityRequested) {
		return shared.NewDomainError("INVALID_QUANTITY",
			fmt.Sprintf("Sent quantity %s exceeds requested quantity %s", quantity, i.QuantityRequested))
	}

	i.QuantitySent = quantity
	i.UpdatedAt = time.Now()
	return nil
}

// MarkReceived records the quantity that arrived at the destination branch.
// It may be less than the sent quantity (loss in transit) but never more.
func (i *StockTransferItem) MarkReceived(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Received quantity cannot be negative")
	}
	if quantity.GreaterThan(i.QuantitySent) {
		return shared.NewDomainError("INVALID_QUANTITY",
			fmt.Sprintf("Received quantity %s exceeds sent quantity %s", quantity, i.QuantitySent))
	}

	i.QuantityReceived = quantity
	i.UpdatedAt = time.Now()
	return nil
}

// Discrepancy returns the quantity lost in transit (sent minus received)
func (i *StockTransferItem) Discrepancy() decimal.Decimal {
	return i.QuantitySent.Sub(i.QuantityReceived)
}

// StockTransfer is a two-phase movement of stock between branches. The source
// ledger is decremented at send time and the destination incremented at
// receive time; nothing moves at creation or approval.
type StockTransfer struct {
	shared.BusinessAggregateRoot
	TransferNumber string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_stock_transfer_number,priority:2"`
	SourceBranchID uuid.UUID           `gorm:"type:uuid;not null;index"`
	DestBranchID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	Items          []StockTransferItem `gorm:"foreignKey:TransferID;references:ID"`
	Status         TransferStatus      `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Note           string              `gorm:"type:varchar(500)"`
	ApprovedBy     *uuid.UUID          `gorm:"type:uuid"`
	ApprovedAt     *time.Time
	SentBy         *uuid.UUID `gorm:"type:uuid"`
	SentAt         *time.Time
	ReceivedBy     *uuid.UUID `gorm:"type:uuid"`
	CompletedAt    *time.Time
	CancelledAt    *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (StockTransfer) TableName() string {
	return "stock_transfers"
}

// NewStockTransfer creates a pending transfer between two branches
func NewStockTransfer(businessID uuid.UUID, transferNumber string, sourceBranchID, destBranchID, createdBy uuid.UUID) (*StockTransfer, error) {
	if transferNumber == "" {
		return nil, shared.NewDomainError("INVALID_TRANSFER_NUMBER", "Transfer number cannot be empty")
	}
	if sourceBranchID == uuid.Nil || destBranchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Source and destination branch IDs cannot be empty")
	}
	if sourceBranchID == destBranchID {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Source and destination branches must differ")
	}

	transfer := &StockTransfer{
		BusinessAggregateRoot: shared.NewBusinessAggregateRootWithCreator(businessID, createdBy),
		TransferNumber:        transferNumber,
		SourceBranchID:        sourceBranchID,
		DestBranchID:          destBranchID,
		Items:                 make([]StockTransferItem, 0),
		Status:                TransferStatusPending,
	}

	return transfer, nil
}

// AddItem adds a product line. Only allowed while pending.
func (t *StockTransfer) AddItem(productID uuid.UUID, quantityRequested, unitCost decimal.Decimal) (*StockTransferItem, error) {
	if t.Status != TransferStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-pending transfer")
	}
	for _, item := range t.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists on transfer")
		}
	}

	item, err := NewStockTransferItem(t.ID, productID, quantityRequested, unitCost)
	if err != nil {
		return nil, err
	}

	t.Items = append(t.Items, *item)
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return item, nil
}

// Approve transitions pending -> approved. Pure status change, no ledger effect.
func (t *StockTransfer) Approve(actorID uuid.UUID) error {
	if t.Status != TransferStatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot approve transfer in %s status", t.Status))
	}
	if actorID == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Approver ID cannot be empty")
	}

	now := time.Now()
	t.Status = TransferStatusApproved
	t.ApprovedBy = &actorID
	t.ApprovedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	return nil
}

// MarkInTransit transitions to in_transit once every line has been sent.
// Legal from pending or approved.
func (t *StockTransfer) MarkInTransit(actorID uuid.UUID) error {
	if !t.Status.CanTransitionTo(TransferStatusInTransit) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot send transfer in %s status", t.Status))
	}
	if len(t.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot send a transfer without items")
	}

	now := time.Now()
	t.Status = TransferStatusInTransit
	t.SentBy = &actorID
	t.SentAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferSentEvent(t))

	return nil
}

// Complete transitions in_transit -> completed after all receipts are recorded
func (t *StockTransfer) Complete(actorID uuid.UUID) error {
	if t.Status != TransferStatusInTransit {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot receive transfer in %s status", t.Status))
	}

	now := time.Now()
	t.Status = TransferStatusCompleted
	t.ReceivedBy = &actorID
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferCompletedEvent(t))

	return nil
}

// Cancel transitions any non-terminal status to cancelled. Callers are
// responsible for reversing sent stock first when cancelling in transit.
func (t *StockTransfer) Cancel(reason string) error {
	if !t.Status.CanTransitionTo(TransferStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel transfer in %s status", t.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	t.Status = TransferStatusCancelled
	t.CancelledAt = &now
	t.CancelReason = reason
	t.UpdatedAt = now
	t.IncrementVersion()

	return nil
}

// RequiresReversalOnCancel returns true when stock has already left the source
func (t *StockTransfer) RequiresReversalOnCancel() bool {
	return t.Status == TransferStatusInTransit
}

// GetItem returns an item by its ID
func (t *StockTransfer) GetItem(itemID uuid.UUID) *StockTransferItem {
	for idx := range t.Items {
		if t.Items[idx].ID == itemID {
			return &t.Items[idx]
		}
	}
	return nil
}

// TotalDiscrepancy sums the in-transit loss across all lines
func (t *StockTransfer) TotalDiscrepancy() decimal.Decimal {
	total := decimal.Zero
	for _, item := range t.Items {
		total = total.Add(item.Discrepancy())
	}
	return total
}
