package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/store"
)

// DependencyStore implements the store.DependencyStore interface using a
// PostgreSQL database as the storage backend.
type DependencyStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewDependencyStore creates a new PostgreSQL implementation of the
// DependencyStore interface. If logger is nil, a default logger will be used.
func NewDependencyStore(db store.DBTX, logger *slog.Logger) *DependencyStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DependencyStore{
		db:     db,
		logger: logger.With(slog.String("component", "dependency_store")),
	}
}

// Ensure DependencyStore implements store.DependencyStore interface
var _ store.DependencyStore = (*DependencyStore)(nil)

// WithTx implements store.DependencyStore.WithTx
func (s *DependencyStore) WithTx(tx *sql.Tx) store.DependencyStore {
	return &DependencyStore{
		db:     tx,
		logger: s.logger,
	}
}

// AddEdge implements store.DependencyStore.AddEdge
func (s *DependencyStore) AddEdge(ctx context.Context, edge *domain.DependencyEdge) error {
	query := `
		INSERT INTO dependency_edges (blocked_task_id, blocking_task_id, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := s.db.ExecContext(ctx, query,
		edge.BlockedTaskID, edge.BlockingTaskID, edge.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrEdgeExists
		}
		return store.NewStoreError("dependency", "add", "failed to insert edge", err)
	}

	return nil
}

// RemoveEdge implements store.DependencyStore.RemoveEdge
func (s *DependencyStore) RemoveEdge(ctx context.Context, blockedID, blockingID uuid.UUID) error {
	query := `
		DELETE FROM dependency_edges
		WHERE blocked_task_id = $1 AND blocking_task_id = $2
	`

	_, err := s.db.ExecContext(ctx, query, blockedID, blockingID)
	if err != nil {
		return store.NewStoreError("dependency", "remove", "failed to delete edge", err)
	}

	return nil
}

// ListEdges implements store.DependencyStore.ListEdges
func (s *DependencyStore) ListEdges(ctx context.Context) ([]*domain.DependencyEdge, error) {
	query := `
		SELECT blocked_task_id, blocking_task_id, created_at
		FROM dependency_edges
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, store.NewStoreError("dependency", "list", "failed to query edges", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var edges []*domain.DependencyEdge
	for rows.Next() {
		var edge domain.DependencyEdge
		if err := rows.Scan(&edge.BlockedTaskID, &edge.BlockingTaskID, &edge.CreatedAt); err != nil {
			return nil, store.NewStoreError("dependency", "list", "failed to scan edge row", err)
		}
		edges = append(edges, &edge)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("dependency", "list", "row iteration failed", err)
	}

	return edges, nil
}

// ListBlockerIDs implements store.DependencyStore.ListBlockerIDs
func (s *DependencyStore) ListBlockerIDs(
	ctx context.Context,
	blockedID uuid.UUID,
) ([]uuid.UUID, error) {
	query := `
		SELECT blocking_task_id
		FROM dependency_edges
		WHERE blocked_task_id = $1
		ORDER BY blocking_task_id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, blockedID)
	if err != nil {
		return nil, store.NewStoreError("dependency", "list", "failed to query blockers", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, store.NewStoreError("dependency", "list", "failed to scan blocker id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("dependency", "list", "row iteration failed", err)
	}

	return ids, nil
}
