// Package postpone implements the postpone workflow coordinator: the
// multi-step side effects of deferring a task (blocker creation, dependency
// linking, subtask breakdown), the plain state transitions (delegate,
// someday, trash, complete), and the dispositions that resolve follow-ups,
// someday reviews, and postponement interventions.
package postpone

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/events"
	"github.com/phrazzld/focal-api/internal/platform/clock"
	"github.com/phrazzld/focal-api/internal/platform/logger"
	"github.com/phrazzld/focal-api/internal/store"
)

// EdgeLinker adds a cycle-checked dependency edge inside the caller's
// transaction. Implemented by the dependency manager.
type EdgeLinker interface {
	AddDependencyWithTx(ctx context.Context, tx *sql.Tx, blockedID, blockingID uuid.UUID) error
}

// Thresholds control when repeated postponement demands an intervention.
type Thresholds struct {
	// PostponeCount triggers an intervention once a task has been deferred
	// this many times.
	PostponeCount int
	// RepeatReason is the lower trigger applied when the incoming reason
	// kind matches the task's previous deferral reason.
	RepeatReason int
}

// DefaultThresholds returns the standard intervention thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{PostponeCount: 3, RepeatReason: 2}
}

// WorkflowResult is the structured outcome of a postpone workflow, so the
// caller can react without inspecting internal state.
type WorkflowResult struct {
	Success        bool        `json:"success"`
	Message        string      `json:"message"`
	CreatedTaskIDs []uuid.UUID `json:"created_task_ids,omitempty"`
}

// Coordinator orchestrates deferral workflows and task state transitions.
// Every multi-step workflow runs inside a single transaction: all constituent
// writes commit together or none do, and the postpone record is written
// strictly after the state transition it describes.
type Coordinator struct {
	taskStore     store.TaskStore
	postponeStore store.PostponeStore
	linker        EdgeLinker
	tx            store.Transactor
	emitter       events.Emitter
	clock         clock.Clock
	thresholds    Thresholds
	logger        *slog.Logger
}

// NewCoordinator creates a postpone Coordinator.
func NewCoordinator(
	taskStore store.TaskStore,
	postponeStore store.PostponeStore,
	linker EdgeLinker,
	tx store.Transactor,
	emitter events.Emitter,
	clk clock.Clock,
	thresholds Thresholds,
	logger *slog.Logger,
) *Coordinator {
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}
	if postponeStore == nil {
		panic("postponeStore cannot be nil")
	}
	if linker == nil {
		panic("linker cannot be nil")
	}
	if tx == nil {
		panic("tx cannot be nil")
	}
	if clk == nil {
		clk = clock.System{}
	}
	if thresholds.PostponeCount == 0 {
		thresholds = DefaultThresholds()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Coordinator{
		taskStore:     taskStore,
		postponeStore: postponeStore,
		linker:        linker,
		tx:            tx,
		emitter:       emitter,
		clock:         clk,
		thresholds:    thresholds,
		logger:        logger.With(slog.String("component", "postpone_coordinator")),
	}
}

// Defer runs the reason-appropriate deferral workflow for the task. When the
// task's postponement pattern has crossed the intervention threshold, the
// deferral is refused with domain.ErrInterventionRequired and an
// intervention-needed event is emitted; an explicit disposition through
// ResolveIntervention is required before the task may be deferred again.
func (c *Coordinator) Defer(
	ctx context.Context,
	taskID uuid.UUID,
	reason domain.PostponeReason,
) (*WorkflowResult, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	if reason == nil {
		return nil, fmt.Errorf("%w: postpone reason is required", domain.ErrValidation)
	}
	if err := reason.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	task, err := c.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}

	needed, repeated, err := c.interventionNeeded(ctx, task, reason.Kind())
	if err != nil {
		return nil, err
	}
	if needed {
		c.emitInterventionNeeded(ctx, task, repeated)
		log.Info("deferral blocked pending intervention",
			slog.String("task_id", taskID.String()),
			slog.Int("postpone_count", task.PostponeCount))
		return nil, domain.ErrInterventionRequired
	}

	return c.runDeferWorkflow(ctx, task, reason)
}

// interventionNeeded applies the threshold rules against the task's current
// postponement pattern. repeated names the reason kind when the lower
// repeat-reason threshold fired.
func (c *Coordinator) interventionNeeded(
	ctx context.Context,
	task *domain.Task,
	incoming domain.PostponeReasonKind,
) (needed bool, repeated string, err error) {
	if task.PostponeCount >= c.thresholds.PostponeCount {
		return true, "", nil
	}

	if task.PostponeCount >= c.thresholds.RepeatReason {
		last, err := c.postponeStore.LastByTask(ctx, task.ID)
		if err != nil {
			if errors.Is(err, store.ErrPostponeRecordNotFound) {
				return false, "", nil
			}
			return false, "", fmt.Errorf("failed to load last postpone record: %w", err)
		}
		if last.ReasonKind == incoming {
			return true, string(incoming), nil
		}
	}

	return false, "", nil
}

func (c *Coordinator) emitInterventionNeeded(ctx context.Context, task *domain.Task, repeated string) {
	if c.emitter == nil {
		return
	}
	event, err := events.NewEvent(events.TypePostponeInterventionNeeded, events.InterventionNeededPayload{
		TaskID:         task.ID,
		PostponeCount:  task.PostponeCount,
		RepeatedReason: repeated,
	})
	if err != nil {
		c.logger.Error("failed to build intervention event", slog.String("error", err.Error()))
		return
	}
	c.emitter.Emit(ctx, event)
}

// runDeferWorkflow dispatches on the reason kind and executes the workflow
// transactionally.
func (c *Coordinator) runDeferWorkflow(
	ctx context.Context,
	task *domain.Task,
	reason domain.PostponeReason,
) (*WorkflowResult, error) {
	switch r := reason.(type) {
	case domain.LaterReason:
		return c.deferLater(ctx, task, r)
	case domain.BlockerReason:
		return c.deferWithBlocker(ctx, task, r)
	case domain.DependencyReason:
		return c.deferWithDependencies(ctx, task, r)
	case domain.SubtasksReason:
		return c.breakIntoSubtasks(ctx, task, r)
	default:
		return nil, fmt.Errorf("%w: unknown postpone reason kind %q", domain.ErrValidation, reason.Kind())
	}
}

// deferLater is the plain deferral: a new start date and nothing else.
func (c *Coordinator) deferLater(
	ctx context.Context,
	task *domain.Task,
	reason domain.LaterReason,
) (*WorkflowResult, error) {
	err := c.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		now := c.clock.Now()
		taskStore := c.taskStore.WithTx(tx)

		task.State = domain.StateDeferred
		task.StartDate = reason.Until
		c.markPostponed(task, now)

		if err := taskStore.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to defer task: %w", err)
		}

		return c.appendRecord(ctx, tx, task.ID, reason.Kind(), reason.Notes, "deferred", now)
	})
	if err != nil {
		return nil, err
	}

	return &WorkflowResult{Success: true, Message: "task deferred"}, nil
}

// deferWithBlocker creates (or references) the blocking task, links the
// dependency, and defers the original, all in one transaction.
func (c *Coordinator) deferWithBlocker(
	ctx context.Context,
	task *domain.Task,
	reason domain.BlockerReason,
) (*WorkflowResult, error) {
	var createdIDs []uuid.UUID

	err := c.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		now := c.clock.Now()
		taskStore := c.taskStore.WithTx(tx)

		var blockerID uuid.UUID
		if reason.ExistingTaskID != nil {
			blockerID = *reason.ExistingTaskID
		} else {
			blocker, err := domain.NewTask(reason.NewTaskTitle, task.Tier, nil)
			if err != nil {
				return fmt.Errorf("%w: %w", domain.ErrValidation, err)
			}
			if err := taskStore.Create(ctx, blocker); err != nil {
				return fmt.Errorf("failed to create blocker task: %w", err)
			}
			blockerID = blocker.ID
			createdIDs = append(createdIDs, blocker.ID)
		}

		// Cycle rejection aborts the whole workflow, including any blocker
		// task created above.
		if err := c.linker.AddDependencyWithTx(ctx, tx, task.ID, blockerID); err != nil {
			return err
		}

		task.State = domain.StateDeferred
		c.markPostponed(task, now)
		if err := taskStore.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to defer task: %w", err)
		}

		return c.appendRecord(ctx, tx, task.ID, reason.Kind(), reason.Notes, "deferred behind blocker", now)
	})
	if err != nil {
		return nil, err
	}

	return &WorkflowResult{
		Success:        true,
		Message:        "task deferred behind blocker",
		CreatedTaskIDs: createdIDs,
	}, nil
}

// deferWithDependencies links the named tasks as blockers and defers the
// original, all in one transaction. A cycle in any link aborts every link.
func (c *Coordinator) deferWithDependencies(
	ctx context.Context,
	task *domain.Task,
	reason domain.DependencyReason,
) (*WorkflowResult, error) {
	err := c.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		now := c.clock.Now()
		taskStore := c.taskStore.WithTx(tx)

		for _, blockingID := range reason.BlockingTaskIDs {
			if err := c.linker.AddDependencyWithTx(ctx, tx, task.ID, blockingID); err != nil {
				return err
			}
		}

		task.State = domain.StateDeferred
		c.markPostponed(task, now)
		if err := taskStore.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to defer task: %w", err)
		}

		return c.appendRecord(ctx, tx, task.ID, reason.Kind(), reason.Notes, "deferred behind dependencies", now)
	})
	if err != nil {
		return nil, err
	}

	return &WorkflowResult{Success: true, Message: "task deferred behind dependencies"}, nil
}

// breakIntoSubtasks creates one task per title inheriting the original's
// tier, due date, and tags, but never its rating, comparison count, or
// delegation fields. The original moves to Trash only when the reason says
// so. The breakdown itself is a disposition, so the postpone counter does
// not advance.
func (c *Coordinator) breakIntoSubtasks(
	ctx context.Context,
	task *domain.Task,
	reason domain.SubtasksReason,
) (*WorkflowResult, error) {
	var createdIDs []uuid.UUID

	err := c.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		now := c.clock.Now()
		taskStore := c.taskStore.WithTx(tx)

		for _, title := range reason.Titles {
			subtask, err := domain.NewTask(title, task.Tier, nil)
			if err != nil {
				return fmt.Errorf("%w: %w", domain.ErrValidation, err)
			}
			subtask.DueDate = task.DueDate
			subtask.Tags = append([]string(nil), task.Tags...)

			if err := taskStore.Create(ctx, subtask); err != nil {
				return fmt.Errorf("failed to create subtask: %w", err)
			}
			createdIDs = append(createdIDs, subtask.ID)
		}

		action := "broken into subtasks"
		if reason.TrashOriginal {
			task.State = domain.StateTrash
			if err := taskStore.Update(ctx, task); err != nil {
				return fmt.Errorf("failed to trash original task: %w", err)
			}
			action = "broken into subtasks, original trashed"
		}

		return c.appendRecord(ctx, tx, task.ID, reason.Kind(), reason.Notes, action, now)
	})
	if err != nil {
		return nil, err
	}

	return &WorkflowResult{
		Success:        true,
		Message:        "task broken into subtasks",
		CreatedTaskIDs: createdIDs,
	}, nil
}

// markPostponed advances the postponement pattern fields on an actual
// deferral.
func (c *Coordinator) markPostponed(task *domain.Task, now time.Time) {
	task.PostponeCount++
	postponedAt := now
	task.LastPostponedAt = &postponedAt
}

// appendRecord writes the postpone log entry. It is always called after the
// state transition inside the same transaction, so the log never describes a
// deferral that did not commit.
func (c *Coordinator) appendRecord(
	ctx context.Context,
	tx *sql.Tx,
	taskID uuid.UUID,
	kind domain.PostponeReasonKind,
	notes, action string,
	now time.Time,
) error {
	record := domain.NewPostponeRecord(taskID, kind, notes, action, now)
	if err := c.postponeStore.WithTx(tx).Append(ctx, record); err != nil {
		return fmt.Errorf("failed to append postpone record: %w", err)
	}
	return nil
}
