package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the engine.
const (
	// TypeTasksActivated is emitted when the deferred-activation job moves
	// one or more tasks to Active.
	TypeTasksActivated = "tasks_activated"

	// TypeFollowUpNeeded is emitted when a delegated task's follow-up date
	// has arrived. The task's state is not changed; the review workflow
	// decides the disposition.
	TypeFollowUpNeeded = "follow_up_needed"

	// TypeSomedayReviewNeeded is emitted on the configured interval with
	// the current set of Someday tasks.
	TypeSomedayReviewNeeded = "someday_review_needed"

	// TypePostponeInterventionNeeded is emitted when a task's postponement
	// pattern crosses the configured threshold and a disposition is
	// required before the next deferral.
	TypePostponeInterventionNeeded = "postpone_intervention_needed"
)

// Event is a notification published to the Notification collaborator.
// The payload is serialized JSON specific to the event type.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// TasksActivatedPayload lists the tasks the deferred-activation job moved
// to Active in one run.
type TasksActivatedPayload struct {
	TaskIDs []uuid.UUID `json:"task_ids"`
}

// FollowUpNeededPayload identifies a delegated task whose follow-up is due.
type FollowUpNeededPayload struct {
	TaskID       uuid.UUID `json:"task_id"`
	DelegatedTo  string    `json:"delegated_to"`
	FollowUpDate time.Time `json:"follow_up_date"`
}

// SomedayReviewPayload lists the Someday tasks awaiting periodic review.
type SomedayReviewPayload struct {
	TaskIDs []uuid.UUID `json:"task_ids"`
}

// InterventionNeededPayload identifies a task whose postponement pattern
// requires an explicit disposition.
type InterventionNeededPayload struct {
	TaskID        uuid.UUID `json:"task_id"`
	PostponeCount int       `json:"postpone_count"`
	// RepeatedReason is set when the threshold was crossed early because
	// the same reason was given for consecutive deferrals.
	RepeatedReason string `json:"repeated_reason,omitempty"`
}

// Handler defines an interface for components that receive events.
type Handler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// Emitter defines an interface for components that publish events.
// This allows services to publish events without direct knowledge of handlers.
type Emitter interface {
	// Emit publishes the given event to all registered handlers. Handler
	// failures are logged, never propagated; emission does not block on
	// delivery outcomes.
	Emit(ctx context.Context, event *Event)
}
