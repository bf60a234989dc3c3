package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/domain/shared"
)

// InMemoryEventBus implements shared.EventPublisher with synchronous
// in-process dispatch. Handler failures are logged, never propagated into
// the workflow that published the event.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	logger   *zap.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		handlers: make(map[string][]shared.EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for the event types it declares
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, eventType := range handler.EventTypes() {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
	}
}

// Publish dispatches events to all registered handlers synchronously
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		b.mu.RLock()
		handlers := b.handlers[e.EventType()]
		b.mu.RUnlock()

		for _, handler := range handlers {
			if err := b.dispatch(ctx, handler, e); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", e.EventType()),
					zap.String("event_id", e.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// dispatch safely dispatches an event to a handler
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, e shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", e.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	return handler.Handle(ctx, e)
}

// Ensure InMemoryEventBus implements EventPublisher
var _ shared.EventPublisher = (*InMemoryEventBus)(nil)
