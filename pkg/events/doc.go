// Package events provides a small typed event emitter and helpers that turn
// event notifications into awaitable values.
//
// The central helper is WaitForEvent, which subscribes to a named event on any
// Source, resolves with the first payload accepted by a predicate, and fails
// with a TimeoutError when nothing matches within the timeout (5 seconds by
// default). The subscription is always removed before the result is delivered,
// so a late event after a timeout has no observable effect.
//
// Usage:
//
//	em := events.NewEmitter[PageEvent]()
//	ev, err := events.WaitForEvent(ctx, em, "load", nil)
package events
