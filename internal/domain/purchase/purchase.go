package purchase

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
)

// PurchaseStatus represents the status of a purchase order
type PurchaseStatus string

const (
	PurchaseStatusDraft             PurchaseStatus = "DRAFT"
	PurchaseStatusOrdered           PurchaseStatus = "ORDERED"
	PurchaseStatusPartiallyReceived PurchaseStatus = "PARTIALLY_RECEIVED"
	PurchaseStatusReceived          PurchaseStatus = "RECEIVED"
	PurchaseStatusCancelled         PurchaseStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseStatus
func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusDraft, PurchaseStatusOrdered, PurchaseStatusPartiallyReceived,
		PurchaseStatusReceived, PurchaseStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseStatus
func (s PurchaseStatus) String() string {
	return string(s)
}

// CanReceive returns true if receiving goods is allowed in this status
func (s PurchaseStatus) CanReceive() bool {
	return s == PurchaseStatusOrdered || s == PurchaseStatusPartiallyReceived
}

// PurchaseItem is a line item on a purchase order. Ordered and received
// quantities are tracked per line and drive the receiving workflow.
type PurchaseItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	PurchaseID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	QuantityOrdered  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityReceived decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Denominated in the purchase currency
	Amount           decimal.Decimal `gorm:"type:decimal(18,4);not null"` // QuantityOrdered * UnitCost
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseItem) TableName() string {
	return "purchase_items"
}

// NewPurchaseItem creates a purchase line
func NewPurchaseItem(purchaseID, productID uuid.UUID, quantity, unitCost decimal.Decimal) (*PurchaseItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Ordered quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	now := time.Now()
	return &PurchaseItem{
		ID:               uuid.New(),
		PurchaseID:       purchaseID,
		ProductID:        productID,
		QuantityOrdered:  quantity,
		QuantityReceived: decimal.Zero,
		UnitCost:         unitCost,
		Amount:           quantity.Mul(unitCost),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// RemainingQuantity returns the quantity still to be received
func (i *PurchaseItem) RemainingQuantity() decimal.Decimal {
	remaining := i.QuantityOrdered.Sub(i.QuantityReceived)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsFullyReceived returns true if all ordered quantity has been received
func (i *PurchaseItem) IsFullyReceived() bool {
	return i.QuantityReceived.GreaterThanOrEqual(i.QuantityOrdered)
}

// AddReceived adds to the received quantity, rejecting over-receipt
func (i *PurchaseItem) AddReceived(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Receive quantity must be positive")
	}

	newReceived := i.QuantityReceived.Add(quantity)
	if newReceived.GreaterThan(i.QuantityOrdered) {
		return shared.NewDomainError("OVER_RECEIPT",
			fmt.Sprintf("Cannot receive %s for product %s, only %s remaining",
				quantity.String(), i.ProductID, i.RemainingQuantity().String()))
	}

	i.QuantityReceived = newReceived
	i.UpdatedAt = time.Now()
	return nil
}

// Purchase is a supplier order aggregate root. Line costs are denominated in
// the purchase currency; the exchange rate converts them to the business's
// base currency at receipt time.
type Purchase struct {
	shared.BusinessAggregateRoot
	PurchaseNumber string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchase_number,priority:2"`
	BranchID       uuid.UUID            `gorm:"type:uuid;not null;index"` // Receiving branch
	SupplierID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	Currency       valueobject.Currency `gorm:"type:varchar(3);not null"`
	ExchangeRate   decimal.Decimal      `gorm:"type:decimal(18,6);not null;default:1"` // Purchase currency -> base currency
	Items          []PurchaseItem       `gorm:"foreignKey:PurchaseID;references:ID"`
	Subtotal       decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount      decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount    decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Status         PurchaseStatus       `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	OrderedAt      *time.Time
	ReceivedBy     *uuid.UUID `gorm:"type:uuid"`
	ReceivedDate   *time.Time
	CancelledAt    *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Purchase) TableName() string {
	return "purchases"
}

// NewPurchase creates a draft purchase order
func NewPurchase(businessID uuid.UUID, purchaseNumber string, branchID, supplierID uuid.UUID, currency valueobject.Currency, exchangeRate decimal.Decimal) (*Purchase, error) {
	if purchaseNumber == "" {
		return nil, shared.NewDomainError("INVALID_PURCHASE_NUMBER", "Purchase number cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if exchangeRate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_EXCHANGE_RATE", "Exchange rate must be positive")
	}

	return &Purchase{
		BusinessAggregateRoot: shared.NewBusinessAggregateRoot(businessID),
		PurchaseNumber:        purchaseNumber,
		BranchID:              branchID,
		SupplierID:            supplierID,
		Currency:              currency,
		ExchangeRate:          exchangeRate,
		Items:                 make([]PurchaseItem, 0),
		Subtotal:              decimal.Zero,
		TaxAmount:             decimal.Zero,
		TotalAmount:           decimal.Zero,
		Status:                PurchaseStatusDraft,
	}, nil
}

// AddItem adds a line item. Only allowed while in draft.
func (p *Purchase) AddItem(productID uuid.UUID, quantity, unitCost decimal.Decimal) (*PurchaseItem, error) {
	if p.Status != PurchaseStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft purchase")
	}
	for _, item := range p.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists on purchase")
		}
	}

	item, err := NewPurchaseItem(p.ID, productID, quantity, unitCost)
	if err != nil {
		return nil, err
	}

	p.Items = append(p.Items, *item)
	p.recalculateTotals()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return item, nil
}

// SetTax sets the order-level tax amount. Only allowed while in draft.
func (p *Purchase) SetTax(tax decimal.Decimal) error {
	if p.Status != PurchaseStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change tax on a non-draft purchase")
	}
	if tax.IsNegative() {
		return shared.NewDomainError("INVALID_TAX", "Tax amount cannot be negative")
	}

	p.TaxAmount = tax
	p.recalculateTotals()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Place transitions draft -> ordered
func (p *Purchase) Place() error {
	if p.Status != PurchaseStatusDraft {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot place purchase in %s status", p.Status))
	}
	if len(p.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot place a purchase without items")
	}

	now := time.Now()
	p.Status = PurchaseStatusOrdered
	p.OrderedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	return nil
}

// GetItem returns an item by its ID, nil if it does not belong to this purchase
func (p *Purchase) GetItem(itemID uuid.UUID) *PurchaseItem {
	for idx := range p.Items {
		if p.Items[idx].ID == itemID {
			return &p.Items[idx]
		}
	}
	return nil
}

// RefreshReceiptStatus updates the status after receiving: received when
// every line is fully received, otherwise partially received. Stamps the
// receiver on full receipt.
func (p *Purchase) RefreshReceiptStatus(actorID uuid.UUID, receivedDate time.Time) {
	if p.isFullyReceived() {
		p.Status = PurchaseStatusReceived
		p.ReceivedBy = &actorID
		p.ReceivedDate = &receivedDate
	} else {
		p.Status = PurchaseStatusPartiallyReceived
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Cancel cancels the purchase. Not allowed once goods have been received.
func (p *Purchase) Cancel(reason string) error {
	if p.Status == PurchaseStatusReceived || p.Status == PurchaseStatusCancelled {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel purchase in %s status", p.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}
	if p.hasReceivedAnyGoods() {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel purchase after goods have been received")
	}

	now := time.Now()
	p.Status = PurchaseStatusCancelled
	p.CancelledAt = &now
	p.CancelReason = reason
	p.UpdatedAt = now
	p.IncrementVersion()

	return nil
}

// BaseCurrencyUnitCost converts a line's unit cost into the base currency
// using the purchase's exchange rate. All ledger and batch costs are stored
// in base currency regardless of purchase currency.
func (p *Purchase) BaseCurrencyUnitCost(item *PurchaseItem) decimal.Decimal {
	return item.UnitCost.Mul(p.ExchangeRate).Round(4)
}

func (p *Purchase) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range p.Items {
		subtotal = subtotal.Add(item.Amount)
	}
	p.Subtotal = subtotal
	p.TotalAmount = subtotal.Add(p.TaxAmount)
}

func (p *Purchase) isFullyReceived() bool {
	for _, item := range p.Items {
		if !item.IsFullyReceived() {
			return false
		}
	}
	return len(p.Items) > 0
}

func (p *Purchase) hasReceivedAnyGoods() bool {
	for _, item := range p.Items {
		if item.QuantityReceived.GreaterThan(decimal.Zero) {
			return true
		}
	}
	return false
}
