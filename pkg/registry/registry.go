package registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/feedmux/feedmux-go/pkg/log"
)

// Registry errors.
var (
	ErrEmptyKey    = errors.New("registry: empty subscription key")
	ErrNilStart    = errors.New("registry: nil start function for cold key")
	ErrNilTeardown = errors.New("registry: start function returned nil teardown")
)

// StartFunc starts an underlying subscription and returns its teardown.
// The registry calls it at most once per key while the key is hot. An
// error means the subscription could not be started; the attach that
// triggered it is rolled back.
type StartFunc func() (TeardownFunc, error)

// TeardownFunc reverses the side effects of a started subscription.
// The registry calls it exactly once per subscription instance.
type TeardownFunc func()

// Config holds registry configuration.
type Config struct {
	// Logger receives lifecycle events. Nil disables logging.
	Logger log.Logger
}

// DefaultConfig returns the default registry configuration.
func DefaultConfig() Config {
	return Config{Logger: log.NoopLogger{}}
}

// Registry multiplexes observers onto one underlying subscription per key.
// All methods are safe for concurrent use.
//
// Start functions and teardowns run while the registry lock is held and
// must not call back into the same Registry.
type Registry struct {
	mu sync.Mutex

	// id identifies this registry instance in lifecycle events.
	id string

	// handles maps hot keys to their retained teardowns.
	handles map[string]TeardownFunc

	// observers maps keys to their current observer count.
	// A key is present here iff it is present in handles.
	observers map[string]int

	logger log.Logger
}

// New creates a registry with default configuration.
func New() *Registry {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a registry with custom configuration.
func NewWithConfig(config Config) *Registry {
	logger := config.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Registry{
		id:        uuid.NewString(),
		handles:   make(map[string]TeardownFunc),
		observers: make(map[string]int),
		logger:    logger,
	}
}

// ID returns the registry instance identifier used in lifecycle events.
func (r *Registry) ID() string {
	return r.id
}

// Attach registers interest in key, incrementing its observer count.
// If the key is cold, start is invoked exactly once and its teardown
// retained; if the key is hot, the live subscription is reused and start
// is not called. On return the key has at least one observer and a live
// subscription.
//
// If start fails, the increment is rolled back and the error returned:
// a failed attach leaves no trace.
func (r *Registry) Attach(key string, start StartFunc) error {
	if key == "" {
		return ErrEmptyKey
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, hot := r.handles[key]; hot {
		r.observers[key]++
		r.emit(log.OpAttach, key, r.observers[key], nil)
		return nil
	}

	if start == nil {
		return ErrNilStart
	}

	teardown, err := start()
	if err != nil {
		r.emit(log.OpStartError, key, 0, err)
		return fmt.Errorf("registry: start subscription for key %q: %w", key, err)
	}
	if teardown == nil {
		return ErrNilTeardown
	}

	r.handles[key] = teardown
	r.observers[key] = 1
	r.emit(log.OpStart, key, 1, nil)
	return nil
}

// Detach releases one unit of interest in key. When the count reaches
// zero the retained teardown runs synchronously, before Detach returns,
// and the key becomes cold. Detaching an unknown key, or more often than
// attached, is a no-op.
func (r *Registry) Detach(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count, ok := r.observers[key]
	if !ok {
		return
	}

	if count > 1 {
		r.observers[key] = count - 1
		r.emit(log.OpDetach, key, count-1, nil)
		return
	}

	// Last observer: remove both entries before invoking the teardown so
	// a panicking teardown cannot leave the key permanently hot.
	teardown := r.handles[key]
	delete(r.handles, key)
	delete(r.observers, key)
	r.emit(log.OpTeardown, key, 0, nil)
	teardown()
}

// ClearAll tears down every live subscription and empties the registry,
// regardless of observer counts. Subsequent attaches behave as
// first-time attaches.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	teardowns := make([]TeardownFunc, 0, len(r.handles))
	for key, teardown := range r.handles {
		teardowns = append(teardowns, teardown)
		r.emit(log.OpClear, key, 0, nil)
	}

	// Reset the maps before invoking anything so a panicking teardown
	// cannot leave stale entries behind.
	r.handles = make(map[string]TeardownFunc)
	r.observers = make(map[string]int)

	for _, teardown := range teardowns {
		teardown()
	}
}

// Observers returns the current observer count for key. Cold keys
// report zero.
func (r *Registry) Observers(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.observers[key]
}

// Active reports whether key currently has a live subscription.
func (r *Registry) Active(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, hot := r.handles[key]
	return hot
}

// Keys returns the keys with live subscriptions, in no particular order.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.handles))
	for key := range r.handles {
		keys = append(keys, key)
	}
	return keys
}

// Len returns the number of keys with live subscriptions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// emit sends a lifecycle event. Called with the lock held.
func (r *Registry) emit(op log.Op, key string, observers int, err error) {
	event := log.Event{
		Timestamp:  time.Now(),
		RegistryID: r.id,
		Op:         op,
		Key:        key,
		Observers:  observers,
	}
	if err != nil {
		event.Err = err.Error()
	}
	r.logger.Log(event)
}
