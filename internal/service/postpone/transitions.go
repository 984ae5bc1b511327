package postpone

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/focal-api/internal/domain"
)

// Delegate hands the task to someone else. The follow-up date drives the
// delegated follow-up job.
func (c *Coordinator) Delegate(
	ctx context.Context,
	taskID uuid.UUID,
	to string,
	followUpDate time.Time,
) error {
	if to == "" {
		return fmt.Errorf("%w: delegate name is required", domain.ErrValidation)
	}

	return c.transition(ctx, taskID, func(task *domain.Task) error {
		task.State = domain.StateDelegated
		task.DelegatedTo = to
		followUp := followUpDate
		task.FollowUpDate = &followUp
		return nil
	})
}

// MoveToSomeday parks the task for periodic review.
func (c *Coordinator) MoveToSomeday(ctx context.Context, taskID uuid.UUID) error {
	return c.transition(ctx, taskID, func(task *domain.Task) error {
		task.State = domain.StateSomeday
		return nil
	})
}

// MoveToTrash soft-deletes the task. Nothing is ever hard-deleted.
func (c *Coordinator) MoveToTrash(ctx context.Context, taskID uuid.UUID) error {
	return c.transition(ctx, taskID, func(task *domain.Task) error {
		task.State = domain.StateTrash
		return nil
	})
}

// Complete marks the task done. Tasks blocked behind it become unblocked on
// their next actionability query.
func (c *Coordinator) Complete(ctx context.Context, taskID uuid.UUID) error {
	return c.transition(ctx, taskID, func(task *domain.Task) error {
		task.State = domain.StateCompleted
		return nil
	})
}

// Activate returns the task to Active consideration, clearing any delegation
// fields left from a previous state.
func (c *Coordinator) Activate(ctx context.Context, taskID uuid.UUID) error {
	return c.transition(ctx, taskID, func(task *domain.Task) error {
		task.State = domain.StateActive
		task.DelegatedTo = ""
		task.FollowUpDate = nil
		return nil
	})
}

// transition loads the task, applies the mutation, and persists it inside
// the shared transactional write path.
func (c *Coordinator) transition(
	ctx context.Context,
	taskID uuid.UUID,
	mutate func(task *domain.Task) error,
) error {
	return c.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		taskStore := c.taskStore.WithTx(tx)

		task, err := taskStore.GetByID(ctx, taskID)
		if err != nil {
			return fmt.Errorf("failed to load task: %w", err)
		}

		if err := mutate(task); err != nil {
			return err
		}
		if err := task.Validate(); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}

		if err := taskStore.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		return nil
	})
}

// ChangeTier moves the task to a new priority tier. The rating reset and the
// tier change commit atomically.
func (c *Coordinator) ChangeTier(
	ctx context.Context,
	taskID uuid.UUID,
	tier domain.PriorityTier,
) error {
	return c.transition(ctx, taskID, func(task *domain.Task) error {
		return task.ChangeTier(tier)
	})
}
