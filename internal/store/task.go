package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/focal-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors if the task data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update persists all mutable fields of the task using optimistic
	// concurrency: the write only applies if the stored row still carries
	// the UpdatedAt the caller read. On success the task's UpdatedAt is
	// refreshed in place; on conflict ErrStaleState is returned and nothing
	// is written.
	Update(ctx context.Context, task *domain.Task) error

	// FindByState retrieves all tasks in the given state, ordered by
	// creation time.
	FindByState(ctx context.Context, state domain.TaskState) ([]*domain.Task, error)

	// FindDeferredStartingBy retrieves Deferred tasks whose start date is
	// absent or not after asOf. Used by the deferred-activation job.
	FindDeferredStartingBy(ctx context.Context, asOf time.Time) ([]*domain.Task, error)

	// FindDelegatedFollowUpsDue retrieves Delegated tasks whose follow-up
	// date is not after asOf. Used by the delegated follow-up job.
	FindDelegatedFollowUpsDue(ctx context.Context, asOf time.Time) ([]*domain.Task, error)

	// WithTx returns a TaskStore bound to the given transaction so multiple
	// writes can share a single atomic commit.
	WithTx(tx *sql.Tx) TaskStore
}
