package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/focal-api/internal/events"
)

// Emitter is a capturing events.Emitter. Tests inspect the recorded events
// to assert what the engine announced.
type Emitter struct {
	mu       sync.Mutex
	recorded []*events.Event
}

// NewEmitter creates an empty capturing Emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Ensure Emitter implements events.Emitter interface
var _ events.Emitter = (*Emitter)(nil)

// Emit implements events.Emitter.Emit
func (e *Emitter) Emit(ctx context.Context, event *events.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recorded = append(e.recorded, event)
}

// Events returns the recorded events in emission order.
func (e *Emitter) Events() []*events.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*events.Event, len(e.recorded))
	copy(out, e.recorded)
	return out
}

// EventsOfType returns the recorded events with the given type.
func (e *Emitter) EventsOfType(eventType string) []*events.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []*events.Event
	for _, event := range e.recorded {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

// Reset discards all recorded events.
func (e *Emitter) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recorded = nil
}
