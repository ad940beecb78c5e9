package feed

import (
	"sync"

	"github.com/feedmux/feedmux-go/pkg/registry"
)

// Broadcast is an in-memory fan-out feed. Publish delivers a value to
// every handler whose subscription is currently started for that key.
// It is safe for concurrent use.
type Broadcast struct {
	mu       sync.RWMutex
	handlers map[string]map[uint64]Handler // key -> handler ID -> handler
	nextID   uint64
}

// NewBroadcast creates an empty broadcast feed.
func NewBroadcast() *Broadcast {
	return &Broadcast{
		handlers: make(map[string]map[uint64]Handler),
	}
}

// Start returns a start function that registers handler for key. The
// returned teardown removes the registration.
func (b *Broadcast) Start(key string, handler Handler) registry.StartFunc {
	return func() (registry.TeardownFunc, error) {
		b.mu.Lock()
		id := b.nextID
		b.nextID++
		if b.handlers[key] == nil {
			b.handlers[key] = make(map[uint64]Handler)
		}
		b.handlers[key][id] = handler
		b.mu.Unlock()

		return func() {
			b.mu.Lock()
			delete(b.handlers[key], id)
			if len(b.handlers[key]) == 0 {
				delete(b.handlers, key)
			}
			b.mu.Unlock()
		}, nil
	}
}

// Publish delivers value to every handler started for key.
func (b *Broadcast) Publish(key string, value any) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[key]))
	for _, h := range b.handlers[key] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(key, value)
	}
}

// Handlers returns the number of started handlers for key.
func (b *Broadcast) Handlers(key string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[key])
}
