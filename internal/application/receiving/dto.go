package receiving

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/purchase"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
)

// CreatePurchaseCommand creates a draft purchase order
type CreatePurchaseCommand struct {
	BusinessID     uuid.UUID
	PurchaseNumber string
	BranchID       uuid.UUID
	SupplierID     uuid.UUID
	Currency       valueobject.Currency
	ExchangeRate   decimal.Decimal
	TaxAmount      decimal.Decimal
	ActorID        uuid.UUID
	Items          []PurchaseLineInput
}

// PurchaseLineInput is one ordered line on a new purchase
type PurchaseLineInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal // Denominated in the purchase currency
}

// ReceiveGoodsCommand records goods arriving against an ordered purchase.
// Lines may cover any subset of the order; each receipt is all-or-nothing.
type ReceiveGoodsCommand struct {
	BusinessID   uuid.UUID
	PurchaseID   uuid.UUID
	ActorID      uuid.UUID
	ReceivedDate time.Time
	Lines        []ReceiveLineInput
}

// ReceiveLineInput is one received quantity against a purchase line
type ReceiveLineInput struct {
	PurchaseItemID uuid.UUID
	Quantity       decimal.Decimal
}

// PurchaseItemView is the read model for a purchase line
type PurchaseItemView struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	QuantityOrdered  decimal.Decimal `json:"quantity_ordered"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	Amount           decimal.Decimal `json:"amount"`
}

// PurchaseView is the read model for a purchase order
type PurchaseView struct {
	ID             uuid.UUID          `json:"id"`
	PurchaseNumber string             `json:"purchase_number"`
	BranchID       uuid.UUID          `json:"branch_id"`
	SupplierID     uuid.UUID          `json:"supplier_id"`
	Currency       string             `json:"currency"`
	ExchangeRate   decimal.Decimal    `json:"exchange_rate"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	TaxAmount      decimal.Decimal    `json:"tax_amount"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	Status         string             `json:"status"`
	Items          []PurchaseItemView `json:"items"`
	ReceivedBy     *uuid.UUID         `json:"received_by,omitempty"`
	ReceivedDate   *time.Time         `json:"received_date,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// NewPurchaseView builds the read model from a purchase
func NewPurchaseView(p *purchase.Purchase) PurchaseView {
	items := make([]PurchaseItemView, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, PurchaseItemView{
			ID:               item.ID,
			ProductID:        item.ProductID,
			QuantityOrdered:  item.QuantityOrdered,
			QuantityReceived: item.QuantityReceived,
			UnitCost:         item.UnitCost,
			Amount:           item.Amount,
		})
	}
	return PurchaseView{
		ID:             p.ID,
		PurchaseNumber: p.PurchaseNumber,
		BranchID:       p.BranchID,
		SupplierID:     p.SupplierID,
		Currency:       p.Currency.String(),
		ExchangeRate:   p.ExchangeRate,
		Subtotal:       p.Subtotal,
		TaxAmount:      p.TaxAmount,
		TotalAmount:    p.TotalAmount,
		Status:         p.Status.String(),
		Items:          items,
		ReceivedBy:     p.ReceivedBy,
		ReceivedDate:   p.ReceivedDate,
		CreatedAt:      p.CreatedAt,
	}
}
