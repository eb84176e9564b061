package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/amirasaad/fxpay/pkg/eventbus"
)

// MemoryEventBus dispatches events synchronously to registered handlers.
// Emit returns the joined handler errors so callers can report failure to
// the sender and let it redeliver.
type MemoryEventBus struct {
	handlers  map[string][]eventbus.HandlerFunc
	mu        sync.RWMutex
	logger    *slog.Logger
	published []eventbus.Event
}

// NewWithMemory creates a new in-memory event bus.
func NewWithMemory(logger *slog.Logger) *MemoryEventBus {
	return &MemoryEventBus{
		handlers: make(map[string][]eventbus.HandlerFunc),
		logger:   logger.With("bus", "memory"),
	}
}

// Register registers a handler for a specific event type.
func (b *MemoryEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit dispatches the event to all registered handlers for its type.
func (b *MemoryEventBus) Emit(ctx context.Context, event eventbus.Event) error {
	eventType := event.Type()

	b.mu.Lock()
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[eventType]...)
	b.published = append(b.published, event)
	b.mu.Unlock()

	if len(handlers) == 0 {
		b.logger.Warn("no handler registered", "type", eventType)
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := b.invoke(ctx, handler, event); err != nil {
			b.logger.Error("failed to process event", "type", eventType, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *MemoryEventBus) invoke(ctx context.Context, handler eventbus.HandlerFunc, event eventbus.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s handler: %v", event.Type(), r)
		}
	}()
	return handler(ctx, event)
}

// Published returns the events emitted so far. This is useful for testing.
func (b *MemoryEventBus) Published() []eventbus.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]eventbus.Event(nil), b.published...)
}

// Ensure MemoryEventBus implements the Bus interface.
var _ eventbus.Bus = (*MemoryEventBus)(nil)
