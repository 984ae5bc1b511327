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

// ComparisonStore is an in-memory implementation of store.ComparisonStore.
type ComparisonStore struct {
	mu          sync.Mutex
	comparisons []*domain.Comparison

	// AppendErr forces Append to fail, for exercising rollback paths.
	AppendErr error
}

// NewComparisonStore creates an empty in-memory ComparisonStore.
func NewComparisonStore() *ComparisonStore {
	return &ComparisonStore{}
}

// Ensure ComparisonStore implements store.ComparisonStore interface
var _ store.ComparisonStore = (*ComparisonStore)(nil)

// WithTx implements store.ComparisonStore.WithTx; the in-memory store has no
// transaction isolation, so it returns the same store.
func (s *ComparisonStore) WithTx(tx *sql.Tx) store.ComparisonStore { return s }

// Append implements store.ComparisonStore.Append
func (s *ComparisonStore) Append(ctx context.Context, comparison *domain.Comparison) error {
	if s.AppendErr != nil {
		return s.AppendErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *comparison
	if comparison.WinnerID != nil {
		winner := *comparison.WinnerID
		copied.WinnerID = &winner
	}
	s.comparisons = append(s.comparisons, &copied)
	return nil
}

// ListByTask implements store.ComparisonStore.ListByTask
func (s *ComparisonStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comparison, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var comparisons []*domain.Comparison
	for _, c := range s.comparisons {
		if c.TaskAID == taskID || c.TaskBID == taskID {
			copied := *c
			if c.WinnerID != nil {
				winner := *c.WinnerID
				copied.WinnerID = &winner
			}
			comparisons = append(comparisons, &copied)
		}
	}
	sort.SliceStable(comparisons, func(i, j int) bool {
		return comparisons[i].CreatedAt.After(comparisons[j].CreatedAt)
	})
	return comparisons, nil
}

// Count returns the total number of recorded comparisons.
func (s *ComparisonStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.comparisons)
}
