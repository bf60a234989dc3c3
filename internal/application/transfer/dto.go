package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/transfer"
)

// CreateTransferCommand creates a pending transfer between two branches
type CreateTransferCommand struct {
	BusinessID     uuid.UUID
	TransferNumber string
	SourceBranchID uuid.UUID
	DestBranchID   uuid.UUID
	Note           string
	ActorID        uuid.UUID
	Items          []TransferLineInput
}

// TransferLineInput is one requested product line on a new transfer
type TransferLineInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// SendTransferCommand moves a transfer to in_transit and decrements the
// source ledger. Sent quantities default to the requested quantities; a line
// entry overrides its quantity (short shipping).
type SendTransferCommand struct {
	BusinessID uuid.UUID
	TransferID uuid.UUID
	ActorID    uuid.UUID
	Lines      []SendLineInput
}

// SendLineInput overrides the sent quantity for one line
type SendLineInput struct {
	TransferItemID uuid.UUID
	Quantity       decimal.Decimal
}

// ReceiveTransferCommand completes a transfer and increments the destination
// ledger. Received quantities default to the sent quantities; a line entry
// overrides its quantity (loss in transit).
type ReceiveTransferCommand struct {
	BusinessID uuid.UUID
	TransferID uuid.UUID
	ActorID    uuid.UUID
	Lines      []ReceiveLineInput
}

// ReceiveLineInput overrides the received quantity for one line
type ReceiveLineInput struct {
	TransferItemID uuid.UUID
	Quantity       decimal.Decimal
}

// TransferItemView is the read model for a transfer line
type TransferItemView struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	QuantityRequested decimal.Decimal `json:"quantity_requested"`
	QuantitySent      decimal.Decimal `json:"quantity_sent"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
}

// TransferView is the read model for a transfer
type TransferView struct {
	ID             uuid.UUID          `json:"id"`
	TransferNumber string             `json:"transfer_number"`
	SourceBranchID uuid.UUID          `json:"source_branch_id"`
	DestBranchID   uuid.UUID          `json:"dest_branch_id"`
	Status         string             `json:"status"`
	Note           string             `json:"note,omitempty"`
	Items          []TransferItemView `json:"items"`
	Discrepancy    decimal.Decimal    `json:"discrepancy"`
	ApprovedBy     *uuid.UUID         `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time         `json:"approved_at,omitempty"`
	SentBy         *uuid.UUID         `json:"sent_by,omitempty"`
	SentAt         *time.Time         `json:"sent_at,omitempty"`
	ReceivedBy     *uuid.UUID         `json:"received_by,omitempty"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
	CancelledAt    *time.Time         `json:"cancelled_at,omitempty"`
	CancelReason   string             `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// NewTransferView builds the read model from a transfer
func NewTransferView(t *transfer.StockTransfer) TransferView {
	items := make([]TransferItemView, 0, len(t.Items))
	for _, item := range t.Items {
		items = append(items, TransferItemView{
			ID:                item.ID,
			ProductID:         item.ProductID,
			QuantityRequested: item.QuantityRequested,
			QuantitySent:      item.QuantitySent,
			QuantityReceived:  item.QuantityReceived,
			UnitCost:          item.UnitCost,
		})
	}
	return TransferView{
		ID:             t.ID,
		TransferNumber: t.TransferNumber,
		SourceBranchID: t.SourceBranchID,
		DestBranchID:   t.DestBranchID,
		Status:         t.Status.String(),
		Note:           t.Note,
		Items:          items,
		Discrepancy:    t.TotalDiscrepancy(),
		ApprovedBy:     t.ApprovedBy,
		ApprovedAt:     t.ApprovedAt,
		SentBy:         t.SentBy,
		SentAt:         t.SentAt,
		ReceivedBy:     t.ReceivedBy,
		CompletedAt:    t.CompletedAt,
		CancelledAt:    t.CancelledAt,
		CancelReason:   t.CancelReason,
		CreatedAt:      t.CreatedAt,
	}
}
