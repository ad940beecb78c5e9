// Package binding adapts a single consumer's lifecycle to a registry.
//
// A Binding tracks three independently changing inputs - the
// subscription key, the enabled flag, and the start function - and keeps
// the registry's ref-counts consistent across every combination of
// changes. Host frameworks call Update whenever any input changes and
// Close when the consumer is destroyed.
//
// The two concerns of a transition are independent and both satisfied on
// every Update: ref-counting (never double-increment or double-decrement
// across a re-evaluation) and subscription reuse (resolved purely
// through the registry's live-subscription check, never through cached
// teardown identity). When a transition both releases and acquires,
// the release happens first so counts never transiently double.
//
// A change of the start function alone, with key and enabled unchanged,
// has no effect: the live subscription keeps running, and the new
// function is only consulted the next time the key must be started from
// cold.
package binding
