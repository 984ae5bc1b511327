package api

import (
	"time"

	"github.com/google/uuid"
)

// Common request/response structures

// LoginRequest defines the payload for the session login endpoint.
type LoginRequest struct {
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for the login endpoint.
type AuthResponse struct {
	// Token is the JWT used for API authorization
	Token string `json:"token"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title     string     `json:"title"      validate:"required,min=1,max=500"`
	Notes     string     `json:"notes,omitempty"`
	Tier      string     `json:"tier"       validate:"required,oneof=high medium low"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
}

// ChangeTierRequest defines the payload for moving a task between tiers.
type ChangeTierRequest struct {
	Tier string `json:"tier" validate:"required,oneof=high medium low"`
}

// DelegateRequest defines the payload for delegating a task.
type DelegateRequest struct {
	To           string    `json:"to"             validate:"required,min=1"`
	FollowUpDate time.Time `json:"follow_up_date" validate:"required"`
}

// DeferRequest defines the payload for the reason-driven defer endpoint.
// The reason kind selects which of the optional fields apply.
type DeferRequest struct {
	Reason string `json:"reason" validate:"required,oneof=later blocker dependency subtasks"`
	Notes  string `json:"notes,omitempty"`

	// later
	Until *time.Time `json:"until,omitempty"`

	// blocker: exactly one of the two
	ExistingTaskID *uuid.UUID `json:"existing_task_id,omitempty"`
	NewTaskTitle   string     `json:"new_task_title,omitempty"`

	// dependency
	BlockingTaskIDs []uuid.UUID `json:"blocking_task_ids,omitempty"`

	// subtasks
	SubtaskTitles []string `json:"subtask_titles,omitempty"`
	TrashOriginal bool     `json:"trash_original,omitempty"`
}

// ComparisonRequest defines the payload for recording a pairwise judgment.
type ComparisonRequest struct {
	WinnerID uuid.UUID `json:"winner_id" validate:"required"`
	LoserID  uuid.UUID `json:"loser_id"  validate:"required"`
}

// SkipComparisonRequest defines the payload for skipping a pair.
type SkipComparisonRequest struct {
	TaskAID uuid.UUID `json:"task_a_id" validate:"required"`
	TaskBID uuid.UUID `json:"task_b_id" validate:"required"`
}

// AddDependencyRequest defines the payload for adding a blocking edge.
type AddDependencyRequest struct {
	BlockingTaskID uuid.UUID `json:"blocking_task_id" validate:"required"`
}

// FollowUpResolutionRequest defines the payload for resolving a due
// delegated follow-up.
type FollowUpResolutionRequest struct {
	Disposition     string     `json:"disposition" validate:"required,oneof=activate complete extend"`
	NewFollowUpDate *time.Time `json:"new_follow_up_date,omitempty"`
}

// SomedayResolutionRequest defines the payload for resolving a someday
// review.
type SomedayResolutionRequest struct {
	Disposition string `json:"disposition" validate:"required,oneof=activate keep trash"`
}

// InterventionResolutionRequest defines the payload for resolving a
// postponement intervention.
type InterventionResolutionRequest struct {
	Disposition   string     `json:"disposition" validate:"required,oneof=defer_again someday trash subtasks"`
	NewStartDate  *time.Time `json:"new_start_date,omitempty"`
	SubtaskTitles []string   `json:"subtask_titles,omitempty"`
	TrashOriginal bool       `json:"trash_original,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// SuggestionResponse defines the response for subtask suggestions.
type SuggestionResponse struct {
	TaskID      uuid.UUID `json:"task_id"`
	Suggestions []string  `json:"suggestions"`
}

// JobListResponse defines the response listing scheduler jobs.
type JobListResponse struct {
	Jobs []string `json:"jobs"`
}
