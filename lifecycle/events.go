package lifecycle

import (
	"github.com/c360/brokerconf/conf"
	"github.com/c360/brokerconf/version"
)

// ChangingEvent is delivered to observers before the engine is touched.
// Any observer may cancel the in-flight apply with a reason; the first
// cancellation short-circuits the remaining observers in the round and
// aborts the apply with zero side effects.
//
// Current and Proposed are deep copies; observers cannot reach the
// orchestrator's own state through them.
type ChangingEvent struct {
	Current  *conf.Document
	Proposed *conf.Document
	Diff     []conf.Change

	canceled bool
	reason   string
}

// Cancel aborts the in-flight apply. The first reason wins.
func (e *ChangingEvent) Cancel(reason string) {
	if e.canceled {
		return
	}
	e.canceled = true
	e.reason = reason
}

// Canceled reports whether the apply was canceled and why.
func (e *ChangingEvent) Canceled() (bool, string) {
	return e.canceled, e.reason
}

// ChangedEvent is delivered after a configuration has been promoted. It
// only fires when a prior version existed; the initial apply has no
// "changed" notification. Handler panics are recovered and logged, never
// rolled back: the new configuration is already committed.
type ChangedEvent struct {
	Previous *version.Record
	New      *version.Record
	Diff     []conf.Change
}

// ChangingHandler observes (and may cancel) an apply before delegation.
type ChangingHandler func(*ChangingEvent)

// ChangedHandler observes a committed configuration change.
type ChangedHandler func(ChangedEvent)
