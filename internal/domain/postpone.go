package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PostponeReasonKind identifies why a task was deferred. The kind selects
// which workflow runs as part of the deferral.
type PostponeReasonKind string

// Possible postpone reason kinds
const (
	// ReasonLater is a plain deferral to a new start date with no side effects.
	ReasonLater PostponeReasonKind = "later"
	// ReasonBlocker defers because a single blocking task must happen first.
	ReasonBlocker PostponeReasonKind = "blocker"
	// ReasonDependency defers because one or more existing tasks block this one.
	ReasonDependency PostponeReasonKind = "dependency"
	// ReasonSubtasks defers by breaking the task down into smaller tasks.
	ReasonSubtasks PostponeReasonKind = "subtasks"
)

// IsValid returns true if the kind is a known value.
func (k PostponeReasonKind) IsValid() bool {
	switch k {
	case ReasonLater, ReasonBlocker, ReasonDependency, ReasonSubtasks:
		return true
	default:
		return false
	}
}

// Postpone reason validation errors
var (
	ErrBlockerUnderspecified = errors.New(
		"blocker reason requires either an existing task ID or a new task title",
	)
	ErrBlockerOverspecified = errors.New(
		"blocker reason cannot name both an existing task and a new title",
	)
	ErrNoDeferralDate   = errors.New("later reason requires a new start date")
	ErrNoBlockingTasks  = errors.New("dependency reason requires at least one blocking task")
	ErrNoSubtaskTitles  = errors.New("subtask breakdown requires at least one title")
	ErrEmptySubtaskName = errors.New("subtask titles cannot be empty")
)

// PostponeReason is the tagged variant describing why a task is being
// deferred. Each concrete reason carries exactly the payload its workflow
// needs, so malformed inputs are rejected before any write happens.
type PostponeReason interface {
	Kind() PostponeReasonKind
	// Validate checks the reason payload before the workflow runs.
	Validate() error
}

// LaterReason defers the task with no side effects beyond the state change.
// Until is required: a deferred task with no start date and no blockers
// would be picked up again by the very next activation scan.
type LaterReason struct {
	// Until is the new start date.
	Until *time.Time
	Notes string
}

// Kind implements PostponeReason.
func (r LaterReason) Kind() PostponeReasonKind { return ReasonLater }

// Validate implements PostponeReason.
func (r LaterReason) Validate() error {
	if r.Until == nil {
		return ErrNoDeferralDate
	}
	return nil
}

// BlockerReason defers the task because something else must happen first.
// Exactly one of ExistingTaskID or NewTaskTitle must be set: either an
// existing task becomes the blocker, or a new Active task is created for it.
type BlockerReason struct {
	ExistingTaskID *uuid.UUID
	NewTaskTitle   string
	Notes          string
}

// Kind implements PostponeReason.
func (r BlockerReason) Kind() PostponeReasonKind { return ReasonBlocker }

// Validate implements PostponeReason.
func (r BlockerReason) Validate() error {
	if r.ExistingTaskID == nil && r.NewTaskTitle == "" {
		return ErrBlockerUnderspecified
	}
	if r.ExistingTaskID != nil && r.NewTaskTitle != "" {
		return ErrBlockerOverspecified
	}
	return nil
}

// DependencyReason defers the task by linking existing tasks as blockers.
type DependencyReason struct {
	BlockingTaskIDs []uuid.UUID
	Notes           string
}

// Kind implements PostponeReason.
func (r DependencyReason) Kind() PostponeReasonKind { return ReasonDependency }

// Validate implements PostponeReason.
func (r DependencyReason) Validate() error {
	if len(r.BlockingTaskIDs) == 0 {
		return ErrNoBlockingTasks
	}
	return nil
}

// SubtasksReason defers the task by breaking it into smaller tasks. Subtasks
// inherit the original's tier, due date, and tags but start with fresh
// ratings and no delegation.
type SubtasksReason struct {
	Titles []string
	// TrashOriginal moves the original task to Trash after the breakdown;
	// otherwise the original is left as-is.
	TrashOriginal bool
	Notes         string
}

// Kind implements PostponeReason.
func (r SubtasksReason) Kind() PostponeReasonKind { return ReasonSubtasks }

// Validate implements PostponeReason.
func (r SubtasksReason) Validate() error {
	if len(r.Titles) == 0 {
		return ErrNoSubtaskTitles
	}
	for _, title := range r.Titles {
		if title == "" {
			return ErrEmptySubtaskName
		}
	}
	return nil
}

// PostponeRecord is an append-only log entry describing a completed deferral.
// A record is only ever written after the underlying state transition has
// been applied, so the log never mentions a deferral that did not happen.
type PostponeRecord struct {
	ID          uuid.UUID          `json:"id"`
	TaskID      uuid.UUID          `json:"task_id"`
	ReasonKind  PostponeReasonKind `json:"reason_kind"`
	Notes       string             `json:"notes,omitempty"`
	ActionTaken string             `json:"action_taken"`
	CreatedAt   time.Time          `json:"created_at"`
}

// NewPostponeRecord creates a log entry for a completed deferral.
func NewPostponeRecord(
	taskID uuid.UUID,
	kind PostponeReasonKind,
	notes, actionTaken string,
	now time.Time,
) *PostponeRecord {
	return &PostponeRecord{
		ID:          uuid.New(),
		TaskID:      taskID,
		ReasonKind:  kind,
		Notes:       notes,
		ActionTaken: actionTaken,
		CreatedAt:   now,
	}
}
