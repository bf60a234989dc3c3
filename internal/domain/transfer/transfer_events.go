package transfer

import (
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants for the transfer aggregate
const (
	EventTypeTransferSent      = "transfer.sent"
	EventTypeTransferCompleted = "transfer.completed"
)

// TransferSentEvent is emitted when stock leaves the source branch
type TransferSentEvent struct {
	shared.BaseDomainEvent
	TransferNumber string `json:"transfer_number"`
	SourceBranchID string `json:"source_branch_id"`
	DestBranchID   string `json:"dest_branch_id"`
	ItemCount      int    `json:"item_count"`
}

// NewTransferSentEvent creates a TransferSentEvent
func NewTransferSentEvent(t *StockTransfer) *TransferSentEvent {
	return &TransferSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferSent, "StockTransfer", t.ID, t.BusinessID),
		TransferNumber:  t.TransferNumber,
		SourceBranchID:  t.SourceBranchID.String(),
		DestBranchID:    t.DestBranchID.String(),
		ItemCount:       len(t.Items),
	}
}

// TransferCompletedEvent is emitted when the destination confirms receipt.
// A non-zero discrepancy is loss in transit; it is logged, never absorbed
// back into any ledger.
type TransferCompletedEvent struct {
	shared.BaseDomainEvent
	TransferNumber string          `json:"transfer_number"`
	Discrepancy    decimal.Decimal `json:"discrepancy"`
}

// NewTransferCompletedEvent creates a TransferCompletedEvent
func NewTransferCompletedEvent(t *StockTransfer) *TransferCompletedEvent {
	return &TransferCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCompleted, "StockTransfer", t.ID, t.BusinessID),
		TransferNumber:  t.TransferNumber,
		Discrepancy:     t.TotalDiscrepancy(),
	}
}
