package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PriorityTier is the user-chosen coarse priority class. Each tier fixes the
// numeric band a task's effective priority can occupy.
type PriorityTier string

// Possible priority tier values
const (
	TierHigh   PriorityTier = "high"
	TierMedium PriorityTier = "medium"
	TierLow    PriorityTier = "low"
)

// IsValid returns true if the tier is a known value.
func (t PriorityTier) IsValid() bool {
	switch t {
	case TierHigh, TierMedium, TierLow:
		return true
	default:
		return false
	}
}

// Band returns the closed effective-priority band for the tier.
func (t PriorityTier) Band() (low, high float64) {
	switch t {
	case TierHigh:
		return 2.0, 3.0
	case TierMedium:
		return 1.0, 2.0
	default:
		return 0.0, 1.0
	}
}

// TaskState represents a task's lifecycle state. Tasks are never hard-deleted;
// StateTrash is the terminal soft-delete state.
type TaskState string

// Possible task state values
const (
	StateActive    TaskState = "active"
	StateDeferred  TaskState = "deferred"
	StateDelegated TaskState = "delegated"
	StateSomeday   TaskState = "someday"
	StateCompleted TaskState = "completed"
	StateTrash     TaskState = "trash"
)

// IsValid returns true if the state is a known value.
func (s TaskState) IsValid() bool {
	switch s {
	case StateActive, StateDeferred, StateDelegated, StateSomeday, StateCompleted, StateTrash:
		return true
	default:
		return false
	}
}

// Elo rating bounds. A task's rating always stays within these limits.
const (
	RatingFloor   = 1000.0
	RatingCeiling = 2000.0
	RatingInitial = 1500.0
)

// Task-specific validation errors
var (
	ErrTaskIDEmpty        = errors.New("task ID cannot be empty")
	ErrTaskTitleEmpty     = errors.New("task title cannot be empty")
	ErrInvalidTier        = errors.New("invalid priority tier")
	ErrInvalidState       = errors.New("invalid task state")
	ErrRatingOutOfRange   = errors.New("elo rating must be between 1000 and 2000")
	ErrNegativeCount      = errors.New("count cannot be negative")
	ErrMissingFollowUp    = errors.New("delegated task requires a follow-up date")
	ErrMissingDelegatedTo = errors.New("delegated task requires a delegate name")
)

// Task represents a single unit of work tracked by the engine. The task store
// owns persistence; this core transitions state and maintains the rating,
// dependency, and postponement fields.
type Task struct {
	ID              uuid.UUID    `json:"id"`
	Title           string       `json:"title"`
	Notes           string       `json:"notes,omitempty"`
	Tier            PriorityTier `json:"tier"`
	EloRating       float64      `json:"elo_rating"`
	ComparisonCount int          `json:"comparison_count"`
	DueDate         *time.Time   `json:"due_date,omitempty"`
	StartDate       *time.Time   `json:"start_date,omitempty"`
	State           TaskState    `json:"state"`
	PostponeCount   int          `json:"postpone_count"`
	LastPostponedAt *time.Time   `json:"last_postponed_at,omitempty"`
	DelegatedTo     string       `json:"delegated_to,omitempty"`
	FollowUpDate    *time.Time   `json:"follow_up_date,omitempty"`
	Tags            []string     `json:"tags,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// NewTask creates a new Task with the given title and tier. The task starts
// Active with a fresh rating, or Deferred when a future start date is given.
// Returns an error if validation fails.
func NewTask(title string, tier PriorityTier, startDate *time.Time) (*Task, error) {
	now := time.Now().UTC()

	state := StateActive
	if startDate != nil && startDate.After(now) {
		state = StateDeferred
	}

	task := &Task{
		ID:              uuid.New(),
		Title:           title,
		Tier:            tier,
		EloRating:       RatingInitial,
		ComparisonCount: 0,
		StartDate:       startDate,
		State:           state,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if !t.Tier.IsValid() {
		return ErrInvalidTier
	}

	if !t.State.IsValid() {
		return ErrInvalidState
	}

	if t.EloRating < RatingFloor || t.EloRating > RatingCeiling {
		return ErrRatingOutOfRange
	}

	if t.ComparisonCount < 0 || t.PostponeCount < 0 {
		return ErrNegativeCount
	}

	if t.State == StateDelegated {
		if t.DelegatedTo == "" {
			return ErrMissingDelegatedTo
		}
		if t.FollowUpDate == nil {
			return ErrMissingFollowUp
		}
	}

	return nil
}

// ChangeTier moves the task to a new priority tier. The rating and comparison
// count reset together with the tier change so the task re-enters its new
// band at the midpoint.
func (t *Task) ChangeTier(tier PriorityTier) error {
	if !tier.IsValid() {
		return ErrInvalidTier
	}

	if tier == t.Tier {
		return nil
	}

	t.Tier = tier
	t.EloRating = RatingInitial
	t.ComparisonCount = 0

	return nil
}

// IsActionableAt reports whether the task itself qualifies for focus
// consideration at the given instant: Active, with no start date still in the
// future. Blocking dependencies are evaluated separately by the dependency
// manager.
func (t *Task) IsActionableAt(now time.Time) bool {
	if t.State != StateActive {
		return false
	}
	if t.StartDate != nil && t.StartDate.After(now) {
		return false
	}
	return true
}
