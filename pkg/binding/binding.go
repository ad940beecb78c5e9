package binding

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/feedmux/feedmux-go/pkg/registry"
)

// ErrClosed is returned by Update after the binding has been closed.
var ErrClosed = errors.New("binding: closed")

// Binding is the per-consumer adapter over a shared Registry. It owns no
// shared state; it remembers only the key it last attached under so that
// detaches always balance its own attaches.
//
// A Binding is safe for concurrent use, though hosts normally drive it
// from a single goroutine.
type Binding struct {
	mu sync.Mutex

	reg *registry.Registry

	// id identifies this binding to callers, e.g. in host logs.
	id string

	// key is the last key passed to Update, empty for none.
	key string

	// attached reports whether this binding currently holds one
	// ref-count unit in the registry, under key.
	attached bool

	closed bool
}

// New creates a binding against the given registry.
func New(reg *registry.Registry) *Binding {
	return &Binding{
		reg: reg,
		id:  uuid.NewString(),
	}
}

// ID returns the binding's unique identifier.
func (b *Binding) ID() string {
	return b.id
}

// Key returns the key the binding last observed. Empty means none.
func (b *Binding) Key() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.key
}

// Attached reports whether the binding currently holds a registry
// reference.
func (b *Binding) Attached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attached
}

// Update re-evaluates the binding against its current inputs. Call it on
// first activation and whenever the key, the enabled flag, or the start
// function changes. An empty key means no interest regardless of
// enabled.
//
// Transitions apply the symmetric difference between the previous
// (key, attached) state and the requested one: a detach of the old key
// when interest ends or moves, then an attach of the new key when
// interest begins or moves. Same key, still enabled, different start is
// a no-op.
//
// If the attach fails the binding is left detached and the error
// returned; a later Update retries.
func (b *Binding) Update(key string, enabled bool, start registry.StartFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	want := enabled && key != ""

	if b.attached && want && key == b.key {
		// Only the start function changed; the live subscription is
		// reused and the new function not consulted.
		return nil
	}

	// Release before acquire so a key move never double-counts.
	if b.attached {
		b.reg.Detach(b.key)
		b.attached = false
	}

	b.key = key
	if !want {
		return nil
	}

	if err := b.reg.Attach(key, start); err != nil {
		return err
	}
	b.attached = true
	return nil
}

// Close releases the binding's registry reference, if any. Close is
// idempotent; Update after Close returns ErrClosed.
func (b *Binding) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	if b.attached {
		b.reg.Detach(b.key)
		b.attached = false
	}
}
