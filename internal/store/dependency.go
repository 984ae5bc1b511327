package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/focal-api/internal/domain"
)

// DependencyStore defines the interface for dependency edge persistence.
// Cycle prevention is not this layer's concern: the dependency manager
// checks reachability before calling AddEdge.
type DependencyStore interface {
	// AddEdge inserts a blocking relationship.
	// Returns ErrEdgeExists if the edge is already present.
	AddEdge(ctx context.Context, edge *domain.DependencyEdge) error

	// RemoveEdge deletes a blocking relationship. Removing an edge that
	// does not exist is a no-op.
	RemoveEdge(ctx context.Context, blockedID, blockingID uuid.UUID) error

	// ListEdges retrieves every edge in the graph.
	ListEdges(ctx context.Context) ([]*domain.DependencyEdge, error)

	// ListBlockerIDs retrieves the ids of tasks directly blocking the given
	// task, regardless of their state.
	ListBlockerIDs(ctx context.Context, blockedID uuid.UUID) ([]uuid.UUID, error)

	// WithTx returns a DependencyStore bound to the given transaction.
	WithTx(tx *sql.Tx) DependencyStore
}
