// Package registry implements keyed subscription multiplexing.
//
// A Registry guarantees that exactly one underlying subscription exists
// per distinct key while at least one observer is interested in it, and
// that the subscription is torn down exactly once, synchronously, when
// the last observer leaves.
//
// # Ref Counting
//
// Attach increments the observer count for a key; the first attach for a
// cold key invokes the start function and retains the returned teardown.
// Further attaches to a hot key reuse the live subscription without
// calling start again. Detach decrements the count; on reaching zero the
// teardown runs before Detach returns, and the key becomes cold again.
//
// # Misuse Tolerance
//
// Detach of an unknown key, or more detaches than attaches, is ignored
// rather than surfaced: raising would punish unrelated observers sharing
// the key. Counts never go negative.
//
// # Start Failure
//
// Attach is all-or-nothing. If the start function returns an error, the
// observer increment is rolled back, no teardown is retained, and the
// error is returned to the caller. A later attach for the same key calls
// start again.
//
// # Locking
//
// All operations are serialized behind a single mutex guarding both the
// handle and observer maps; an attach that increments and conditionally
// starts, or a detach that decrements and conditionally tears down, is
// one critical section. Start functions and teardowns therefore run with
// the lock held and must not call back into the same Registry.
//
// # Global Reset
//
// ClearAll tears down every live subscription regardless of observer
// counts. It is a deliberate escape hatch for events like sign-out, not
// part of the ref-count discipline.
package registry
