package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/store"
)

// PostponeStore is an in-memory implementation of store.PostponeStore.
type PostponeStore struct {
	mu      sync.Mutex
	records []*domain.PostponeRecord

	// AppendErr forces Append to fail, for exercising rollback paths.
	AppendErr error
}

// NewPostponeStore creates an empty in-memory PostponeStore.
func NewPostponeStore() *PostponeStore {
	return &PostponeStore{}
}

// Ensure PostponeStore implements store.PostponeStore interface
var _ store.PostponeStore = (*PostponeStore)(nil)

// WithTx implements store.PostponeStore.WithTx; the in-memory store has no
// transaction isolation, so it returns the same store.
func (s *PostponeStore) WithTx(tx *sql.Tx) store.PostponeStore { return s }

// Append implements store.PostponeStore.Append
func (s *PostponeStore) Append(ctx context.Context, record *domain.PostponeRecord) error {
	if s.AppendErr != nil {
		return s.AppendErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	s.records = append(s.records, &copied)
	return nil
}

// LastByTask implements store.PostponeStore.LastByTask
func (s *PostponeStore) LastByTask(ctx context.Context, taskID uuid.UUID) (*domain.PostponeRecord, error) {
	records, err := s.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, store.ErrPostponeRecordNotFound
	}
	return records[0], nil
}

// ListByTask implements store.PostponeStore.ListByTask
func (s *PostponeStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.PostponeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []*domain.PostponeRecord
	for _, record := range s.records {
		if record.TaskID == taskID {
			copied := *record
			records = append(records, &copied)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// CountByTask returns the number of records logged for the task.
func (s *PostponeStore) CountByTask(taskID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, record := range s.records {
		if record.TaskID == taskID {
			count++
		}
	}
	return count
}
