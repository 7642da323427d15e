package event

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles a published event.
type Handler func(Event)

// allKinds is the subscription key for handlers registered with SubscribeAll.
const allKinds Kind = 0

type subscription struct {
	id      string
	handler Handler
}

// Bus is a synchronous pub-sub event bus.
type Bus struct {
	logger *zap.Logger

	mu            sync.RWMutex
	subscriptions map[Kind][]subscription
}

// NewBus creates a new event bus. A nil logger discards handler panics reports.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Bus{
		logger:        logger,
		subscriptions: make(map[Kind][]subscription),
	}
}

// Subscribe registers a handler for one kind of event and returns the subscription id.
func (b *Bus) Subscribe(kind Kind, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	b.subscriptions[kind] = append(b.subscriptions[kind], subscription{id: id, handler: handler})
	return id
}

// SubscribeAll registers a handler for every event.
func (b *Bus) SubscribeAll(handler Handler) string {
	return b.Subscribe(allKinds, handler)
}

// Unsubscribe removes a subscription by id and reports whether it existed.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for kind, subs := range b.subscriptions {
		for i, sub := range subs {
			if sub.id == id {
				next := make([]subscription, 0, len(subs)-1)
				next = append(next, subs[:i]...)
				b.subscriptions[kind] = append(next, subs[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Publish dispatches e to the handlers of its kind and then to the wildcard
// handlers, each group in registration order. A panicking handler is logged
// and does not stop delivery to the others.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	specific := b.subscriptions[e.Kind()]
	wildcard := b.subscriptions[allKinds]
	b.mu.RUnlock()

	for _, sub := range specific {
		b.safeCall(sub.handler, e)
	}
	for _, sub := range wildcard {
		b.safeCall(sub.handler, e)
	}
}

func (b *Bus) safeCall(handler Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.Stringer("kind", e.Kind()),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()
	handler(e)
}

// SubscriptionCount returns the number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, subs := range b.subscriptions {
		count += len(subs)
	}
	return count
}
