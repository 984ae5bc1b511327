package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/focal-api/internal/domain"
)

// ComparisonStore defines the interface for the append-only comparison log.
type ComparisonStore interface {
	// Append adds a comparison event to the log.
	Append(ctx context.Context, comparison *domain.Comparison) error

	// ListByTask retrieves all comparison events involving the task,
	// newest first.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comparison, error)

	// WithTx returns a ComparisonStore bound to the given transaction.
	WithTx(tx *sql.Tx) ComparisonStore
}
