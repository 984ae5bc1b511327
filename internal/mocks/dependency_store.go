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

// DependencyStore is an in-memory implementation of store.DependencyStore.
type DependencyStore struct {
	mu    sync.Mutex
	edges map[edgeKey]*domain.DependencyEdge

	// AddErr forces AddEdge to fail, for exercising rollback paths.
	AddErr error
}

type edgeKey struct {
	blocked  uuid.UUID
	blocking uuid.UUID
}

// NewDependencyStore creates an empty in-memory DependencyStore.
func NewDependencyStore() *DependencyStore {
	return &DependencyStore{edges: make(map[edgeKey]*domain.DependencyEdge)}
}

// Ensure DependencyStore implements store.DependencyStore interface
var _ store.DependencyStore = (*DependencyStore)(nil)

// WithTx implements store.DependencyStore.WithTx; the in-memory store has no
// transaction isolation, so it returns the same store.
func (s *DependencyStore) WithTx(tx *sql.Tx) store.DependencyStore { return s }

// AddEdge implements store.DependencyStore.AddEdge
func (s *DependencyStore) AddEdge(ctx context.Context, edge *domain.DependencyEdge) error {
	if s.AddErr != nil {
		return s.AddErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := edgeKey{blocked: edge.BlockedTaskID, blocking: edge.BlockingTaskID}
	if _, exists := s.edges[key]; exists {
		return store.ErrEdgeExists
	}
	copied := *edge
	s.edges[key] = &copied
	return nil
}

// RemoveEdge implements store.DependencyStore.RemoveEdge
func (s *DependencyStore) RemoveEdge(ctx context.Context, blockedID, blockingID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.edges, edgeKey{blocked: blockedID, blocking: blockingID})
	return nil
}

// ListEdges implements store.DependencyStore.ListEdges
func (s *DependencyStore) ListEdges(ctx context.Context) ([]*domain.DependencyEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	edges := make([]*domain.DependencyEdge, 0, len(s.edges))
	for _, edge := range s.edges {
		copied := *edge
		edges = append(edges, &copied)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].BlockedTaskID != edges[j].BlockedTaskID {
			return edges[i].BlockedTaskID.String() < edges[j].BlockedTaskID.String()
		}
		return edges[i].BlockingTaskID.String() < edges[j].BlockingTaskID.String()
	})
	return edges, nil
}

// ListBlockerIDs implements store.DependencyStore.ListBlockerIDs
func (s *DependencyStore) ListBlockerIDs(ctx context.Context, blockedID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []uuid.UUID
	for key := range s.edges {
		if key.blocked == blockedID {
			ids = append(ids, key.blocking)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}
