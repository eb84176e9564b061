package eventbus

import (
	"context"
)

// Event is anything dispatched on the bus; Type selects the handlers.
type Event interface {
	Type() string
}

// HandlerFunc processes one event.
type HandlerFunc func(ctx context.Context, event Event) error

// Bus defines the contract for publishing and subscribing to domain events.
type Bus interface {
	Register(eventType string, handler HandlerFunc)
	Emit(ctx context.Context, event Event) error
}
