package log

import (
	"time"
)

// Event represents a registry lifecycle event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// RegistryID uniquely identifies the registry instance (UUID).
	RegistryID string `cbor:"2,keyasint"`

	// Op is the lifecycle operation that produced the event.
	Op Op `cbor:"3,keyasint"`

	// Key is the subscription key the operation applied to.
	// Empty for OpClear, which applies to the whole registry.
	Key string `cbor:"4,keyasint,omitempty"`

	// Observers is the observer count for Key after the operation.
	Observers int `cbor:"5,keyasint,omitempty"`

	// Err carries the start error text for OpStartError events.
	Err string `cbor:"6,keyasint,omitempty"`
}

// Op identifies a registry lifecycle operation.
type Op uint8

const (
	// OpAttach records an observer increment on an already-hot key.
	OpAttach Op = 0
	// OpStart records a cold-key attach that invoked the start function.
	OpStart Op = 1
	// OpDetach records an observer decrement that left the key hot.
	OpDetach Op = 2
	// OpTeardown records the last observer leaving and the teardown running.
	OpTeardown Op = 3
	// OpClear records a global reset; one event is emitted per torn-down key.
	OpClear Op = 4
	// OpStartError records a failed start; the attach was rolled back.
	OpStartError Op = 5
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpAttach:
		return "ATTACH"
	case OpStart:
		return "START"
	case OpDetach:
		return "DETACH"
	case OpTeardown:
		return "TEARDOWN"
	case OpClear:
		return "CLEAR"
	case OpStartError:
		return "START_ERROR"
	default:
		return "UNKNOWN"
	}
}
