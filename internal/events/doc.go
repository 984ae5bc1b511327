// Package events defines the notification events emitted by the engine and
// the in-memory emitter that dispatches them to registered handlers. Emission
// is fire-and-forget: the engine never waits on a handler's acknowledgment.
package events
