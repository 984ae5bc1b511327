package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/store"
)

// taskColumns is the column list shared by every task SELECT.
const taskColumns = `id, title, notes, tier, elo_rating, comparison_count,
	due_date, start_date, state, postpone_count, last_postponed_at,
	delegated_to, follow_up_date, tags, created_at, updated_at`

// TaskStore implements the store.TaskStore interface using a PostgreSQL
// database as the storage backend.
type TaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTaskStore creates a new PostgreSQL implementation of the TaskStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller. If logger is nil, a default logger
// will be used.
func NewTaskStore(db store.DBTX, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	tags, err := marshalTags(task.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `
		INSERT INTO tasks (id, title, notes, tier, elo_rating, comparison_count,
			due_date, start_date, state, postpone_count, last_postponed_at,
			delegated_to, follow_up_date, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = s.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Notes,
		task.Tier,
		task.EloRating,
		task.ComparisonCount,
		task.DueDate,
		task.StartDate,
		task.State,
		task.PostponeCount,
		task.LastPostponedAt,
		task.DelegatedTo,
		task.FollowUpDate,
		tags,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return store.NewStoreError("task", "create", "failed to insert task", err)
	}

	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, store.NewStoreError("task", "get", "failed to scan task", err)
	}

	return task, nil
}

// Update implements store.TaskStore.Update using optimistic concurrency:
// the write only applies if the stored row still carries the UpdatedAt the
// caller read. On success the task's UpdatedAt is refreshed in place.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	tags, err := marshalTags(task.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	expected := task.UpdatedAt
	now := time.Now().UTC()

	query := `
		UPDATE tasks
		SET title = $1, notes = $2, tier = $3, elo_rating = $4,
			comparison_count = $5, due_date = $6, start_date = $7, state = $8,
			postpone_count = $9, last_postponed_at = $10, delegated_to = $11,
			follow_up_date = $12, tags = $13, updated_at = $14
		WHERE id = $15 AND updated_at = $16
	`

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Notes,
		task.Tier,
		task.EloRating,
		task.ComparisonCount,
		task.DueDate,
		task.StartDate,
		task.State,
		task.PostponeCount,
		task.LastPostponedAt,
		task.DelegatedTo,
		task.FollowUpDate,
		tags,
		now,
		task.ID,
		expected,
	)
	if err != nil {
		return store.NewStoreError("task", "update", "failed to update task", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("task", "update", "failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		// Distinguish a vanished row from a concurrent modification.
		var exists bool
		checkErr := s.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`, task.ID).Scan(&exists)
		if checkErr != nil {
			return store.NewStoreError("task", "update", "failed to check task existence", checkErr)
		}
		if !exists {
			return store.ErrTaskNotFound
		}
		return store.ErrStaleState
	}

	task.UpdatedAt = now
	return nil
}

// FindByState implements store.TaskStore.FindByState
func (s *TaskStore) FindByState(
	ctx context.Context,
	state domain.TaskState,
) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE state = $1 ORDER BY created_at ASC`
	return s.findTasks(ctx, query, state)
}

// FindDeferredStartingBy implements store.TaskStore.FindDeferredStartingBy
func (s *TaskStore) FindDeferredStartingBy(
	ctx context.Context,
	asOf time.Time,
) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE state = $1 AND (start_date IS NULL OR start_date <= $2)
		ORDER BY created_at ASC`
	return s.findTasks(ctx, query, domain.StateDeferred, asOf)
}

// FindDelegatedFollowUpsDue implements store.TaskStore.FindDelegatedFollowUpsDue
func (s *TaskStore) FindDelegatedFollowUpsDue(
	ctx context.Context,
	asOf time.Time,
) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE state = $1 AND follow_up_date IS NOT NULL AND follow_up_date <= $2
		ORDER BY follow_up_date ASC`
	return s.findTasks(ctx, query, domain.StateDelegated, asOf)
}

func (s *TaskStore) findTasks(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("task", "query", "failed to query tasks", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, store.NewStoreError("task", "query", "failed to scan task row", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "query", "row iteration failed", err)
	}

	return tasks, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task domain.Task
		tags []byte
	)

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Notes,
		&task.Tier,
		&task.EloRating,
		&task.ComparisonCount,
		&task.DueDate,
		&task.StartDate,
		&task.State,
		&task.PostponeCount,
		&task.LastPostponedAt,
		&task.DelegatedTo,
		&task.FollowUpDate,
		&tags,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &task.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	}

	return &task, nil
}

func marshalTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}
