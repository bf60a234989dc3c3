package transfer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/transfer"
)

// DiscrepancyHandler listens for completed transfers and flags in-transit
// loss. The lost quantity is already off both ledgers; this handler is the
// audit trail that makes the shrinkage visible to operators.
type DiscrepancyHandler struct {
	logger *zap.Logger
}

// NewDiscrepancyHandler creates a new DiscrepancyHandler
func NewDiscrepancyHandler(logger *zap.Logger) *DiscrepancyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscrepancyHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *DiscrepancyHandler) EventTypes() []string {
	return []string{transfer.EventTypeTransferCompleted}
}

// Handle processes a TransferCompletedEvent
func (h *DiscrepancyHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	completed, ok := event.(*transfer.TransferCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			transfer.EventTypeTransferCompleted, event.EventType())
	}

	if completed.Discrepancy.IsZero() {
		return nil
	}

	h.logger.Warn("transfer shrinkage detected",
		zap.String("transfer_id", completed.AggregateID().String()),
		zap.String("transfer_number", completed.TransferNumber),
		zap.String("discrepancy", completed.Discrepancy.String()),
	)
	return nil
}

// Ensure DiscrepancyHandler implements EventHandler
var _ shared.EventHandler = (*DiscrepancyHandler)(nil)
