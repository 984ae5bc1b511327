package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/store"
)

// PostponeStore implements the store.PostponeStore interface using a
// PostgreSQL database as the storage backend.
type PostponeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostponeStore creates a new PostgreSQL implementation of the
// PostponeStore interface. If logger is nil, a default logger will be used.
func NewPostponeStore(db store.DBTX, logger *slog.Logger) *PostponeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostponeStore{
		db:     db,
		logger: logger.With(slog.String("component", "postpone_store")),
	}
}

// Ensure PostponeStore implements store.PostponeStore interface
var _ store.PostponeStore = (*PostponeStore)(nil)

// WithTx implements store.PostponeStore.WithTx
func (s *PostponeStore) WithTx(tx *sql.Tx) store.PostponeStore {
	return &PostponeStore{
		db:     tx,
		logger: s.logger,
	}
}

// Append implements store.PostponeStore.Append
func (s *PostponeStore) Append(ctx context.Context, record *domain.PostponeRecord) error {
	query := `
		INSERT INTO postpone_records (id, task_id, reason_kind, notes, action_taken, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.TaskID,
		record.ReasonKind,
		record.Notes,
		record.ActionTaken,
		record.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return store.NewStoreError("postpone", "append", "failed to insert record", err)
	}

	return nil
}

// LastByTask implements store.PostponeStore.LastByTask
func (s *PostponeStore) LastByTask(
	ctx context.Context,
	taskID uuid.UUID,
) (*domain.PostponeRecord, error) {
	query := `
		SELECT id, task_id, reason_kind, notes, action_taken, created_at
		FROM postpone_records
		WHERE task_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var record domain.PostponeRecord
	err := s.db.QueryRowContext(ctx, query, taskID).Scan(
		&record.ID,
		&record.TaskID,
		&record.ReasonKind,
		&record.Notes,
		&record.ActionTaken,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPostponeRecordNotFound
		}
		return nil, store.NewStoreError("postpone", "get", "failed to scan record", err)
	}

	return &record, nil
}

// ListByTask implements store.PostponeStore.ListByTask
func (s *PostponeStore) ListByTask(
	ctx context.Context,
	taskID uuid.UUID,
) ([]*domain.PostponeRecord, error) {
	query := `
		SELECT id, task_id, reason_kind, notes, action_taken, created_at
		FROM postpone_records
		WHERE task_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, store.NewStoreError("postpone", "list", "failed to query records", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var records []*domain.PostponeRecord
	for rows.Next() {
		var record domain.PostponeRecord
		err := rows.Scan(
			&record.ID,
			&record.TaskID,
			&record.ReasonKind,
			&record.Notes,
			&record.ActionTaken,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, store.NewStoreError("postpone", "list", "failed to scan record row", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("postpone", "list", "row iteration failed", err)
	}

	return records, nil
}
