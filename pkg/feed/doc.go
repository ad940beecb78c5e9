// Package feed provides example subscription backends.
//
// A backend is anything that can produce a registry.StartFunc: calling
// the start function begins a long-lived side effect (a goroutine, a
// listener registration) and returns the teardown that fully reverses
// it. The registry only ever sees the teardown; it never learns what
// the backend does.
//
// Two backends are included: Ticker, a time-driven feed that emits an
// incrementing sequence until torn down, and Broadcast, an in-memory
// fan-out that delivers published values to every started handler.
// They are demonstration collaborators for the demo CLI and tests, not
// part of the multiplexing core.
package feed
