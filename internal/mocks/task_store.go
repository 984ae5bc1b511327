package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/store"
)

// TaskStore is an in-memory implementation of store.TaskStore. Tasks are
// deep-copied on the way in and out so tests cannot observe aliasing that a
// real database would not produce.
type TaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task

	// CreateErr, GetErr, and UpdateErr force the corresponding operation to
	// fail, for exercising rollback paths.
	CreateErr error
	GetErr    error
	UpdateErr error
}

// NewTaskStore creates an empty in-memory TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// WithTx implements store.TaskStore.WithTx; the in-memory store has no
// transaction isolation, so it returns the same store.
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore { return s }

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if err := task.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[task.ID]; exists {
		return store.ErrDuplicate
	}
	s.tasks[task.ID] = copyTask(task)
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return copyTask(task), nil
}

// Update implements store.TaskStore.Update with the same optimistic
// concurrency semantics as the real store.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	if err := task.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	if !current.UpdatedAt.Equal(task.UpdatedAt) {
		return store.ErrStaleState
	}

	task.UpdatedAt = time.Now().UTC()
	s.tasks[task.ID] = copyTask(task)
	return nil
}

// FindByState implements store.TaskStore.FindByState
func (s *TaskStore) FindByState(
	ctx context.Context,
	state domain.TaskState,
) ([]*domain.Task, error) {
	return s.find(func(t *domain.Task) bool { return t.State == state })
}

// FindDeferredStartingBy implements store.TaskStore.FindDeferredStartingBy
func (s *TaskStore) FindDeferredStartingBy(
	ctx context.Context,
	asOf time.Time,
) ([]*domain.Task, error) {
	return s.find(func(t *domain.Task) bool {
		if t.State != domain.StateDeferred {
			return false
		}
		return t.StartDate == nil || !t.StartDate.After(asOf)
	})
}

// FindDelegatedFollowUpsDue implements store.TaskStore.FindDelegatedFollowUpsDue
func (s *TaskStore) FindDelegatedFollowUpsDue(
	ctx context.Context,
	asOf time.Time,
) ([]*domain.Task, error) {
	return s.find(func(t *domain.Task) bool {
		if t.State != domain.StateDelegated || t.FollowUpDate == nil {
			return false
		}
		return !t.FollowUpDate.After(asOf)
	})
}

func (s *TaskStore) find(match func(*domain.Task) bool) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*domain.Task
	for _, task := range s.tasks {
		if match(task) {
			result = append(result, copyTask(task))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

// Count returns the number of stored tasks.
func (s *TaskStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func copyTask(t *domain.Task) *domain.Task {
	clone := *t
	if t.DueDate != nil {
		d := *t.DueDate
		clone.DueDate = &d
	}
	if t.StartDate != nil {
		d := *t.StartDate
		clone.StartDate = &d
	}
	if t.LastPostponedAt != nil {
		d := *t.LastPostponedAt
		clone.LastPostponedAt = &d
	}
	if t.FollowUpDate != nil {
		d := *t.FollowUpDate
		clone.FollowUpDate = &d
	}
	if t.Tags != nil {
		clone.Tags = append([]string(nil), t.Tags...)
	}
	return &clone
}
