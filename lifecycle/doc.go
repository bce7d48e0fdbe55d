// Package lifecycle orchestrates applying, reloading, and rolling back
// broker configurations against an injected external engine.
//
// # Apply protocol
//
// Manager.Apply runs a fixed sequence: validate, diff, cancelable
// pre-notify, delegate to the engine (start or hot reload), record a new
// immutable version, promote the candidate to current, post-notify. Every
// failure before promotion discards the candidate with zero observable
// side effects; there is no partial application.
//
// # Concurrency
//
// Each Manager owns exactly one gate. Apply, ApplyChanges, Rollback,
// Query, and Shutdown hold it for their full duration, so cross-operation
// ordering on one instance is total and queries always see a consistent
// pairing of configuration and engine. Independent Manager instances
// proceed fully in parallel.
//
// The only cancellation point inside the protocol is the pre-notify round:
// an observer cancels via ChangingEvent.Cancel before the engine is
// touched. Once the delegate call is issued the apply runs to completion;
// abandoning the wait does not abort it.
//
// # Shutdown
//
// Shutdown bounds its gate acquisition. On timeout it proceeds forced and
// leaks the gate for the remaining life of the process — a documented
// tradeoff so disposal never hangs.
package lifecycle
