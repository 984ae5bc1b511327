package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/store"
)

// ComparisonStore implements the store.ComparisonStore interface using a
// PostgreSQL database as the storage backend.
type ComparisonStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewComparisonStore creates a new PostgreSQL implementation of the
// ComparisonStore interface. If logger is nil, a default logger will be used.
func NewComparisonStore(db store.DBTX, logger *slog.Logger) *ComparisonStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ComparisonStore{
		db:     db,
		logger: logger.With(slog.String("component", "comparison_store")),
	}
}

// Ensure ComparisonStore implements store.ComparisonStore interface
var _ store.ComparisonStore = (*ComparisonStore)(nil)

// WithTx implements store.ComparisonStore.WithTx
func (s *ComparisonStore) WithTx(tx *sql.Tx) store.ComparisonStore {
	return &ComparisonStore{
		db:     tx,
		logger: s.logger,
	}
}

// Append implements store.ComparisonStore.Append
func (s *ComparisonStore) Append(ctx context.Context, comparison *domain.Comparison) error {
	query := `
		INSERT INTO comparisons (id, task_a_id, task_b_id, winner_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query,
		comparison.ID,
		comparison.TaskAID,
		comparison.TaskBID,
		comparison.WinnerID,
		comparison.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return store.NewStoreError("comparison", "append", "failed to insert comparison", err)
	}

	return nil
}

// ListByTask implements store.ComparisonStore.ListByTask
func (s *ComparisonStore) ListByTask(
	ctx context.Context,
	taskID uuid.UUID,
) ([]*domain.Comparison, error) {
	query := `
		SELECT id, task_a_id, task_b_id, winner_id, created_at
		FROM comparisons
		WHERE task_a_id = $1 OR task_b_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, store.NewStoreError("comparison", "list", "failed to query comparisons", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var comparisons []*domain.Comparison
	for rows.Next() {
		var comparison domain.Comparison
		err := rows.Scan(
			&comparison.ID,
			&comparison.TaskAID,
			&comparison.TaskBID,
			&comparison.WinnerID,
			&comparison.CreatedAt,
		)
		if err != nil {
			return nil, store.NewStoreError("comparison", "list", "failed to scan comparison row", err)
		}
		comparisons = append(comparisons, &comparison)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("comparison", "list", "row iteration failed", err)
	}

	return comparisons, nil
}
