package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/focal-api/internal/domain"
)

// PostponeStore defines the interface for the append-only postponement log.
type PostponeStore interface {
	// Append adds a record to the log. Records are never updated or deleted.
	Append(ctx context.Context, record *domain.PostponeRecord) error

	// LastByTask retrieves the most recent record for the task.
	// Returns ErrPostponeRecordNotFound if the task has never been postponed.
	LastByTask(ctx context.Context, taskID uuid.UUID) (*domain.PostponeRecord, error)

	// ListByTask retrieves all records for the task, newest first.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.PostponeRecord, error)

	// WithTx returns a PostponeStore bound to the given transaction.
	WithTx(tx *sql.Tx) PostponeStore
}
