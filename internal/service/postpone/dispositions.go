package postpone

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/focal-api/internal/domain"
)

// FollowUpDisposition is the caller's decision for a delegated task whose
// follow-up date has arrived.
type FollowUpDisposition string

// Possible follow-up dispositions
const (
	FollowUpActivate FollowUpDisposition = "activate"
	FollowUpComplete FollowUpDisposition = "complete"
	FollowUpExtend   FollowUpDisposition = "extend"
)

// SomedayDisposition is the caller's decision for a Someday task surfaced by
// the periodic review.
type SomedayDisposition string

// Possible someday review dispositions
const (
	SomedayActivate SomedayDisposition = "activate"
	SomedayKeep     SomedayDisposition = "keep"
	SomedayTrash    SomedayDisposition = "trash"
)

// InterventionDisposition is the mandatory decision for a task whose
// postponement pattern crossed the threshold.
type InterventionDisposition string

// Possible intervention dispositions
const (
	// InterventionDeferAgain continues deferring with a new start date.
	InterventionDeferAgain InterventionDisposition = "defer_again"
	// InterventionSomeday moves the task to Someday.
	InterventionSomeday InterventionDisposition = "someday"
	// InterventionTrash moves the task to Trash.
	InterventionTrash InterventionDisposition = "trash"
	// InterventionSubtasks breaks the task into subtasks.
	InterventionSubtasks InterventionDisposition = "subtasks"
)

// ResolveFollowUp applies the caller's disposition for a due delegated
// follow-up. Extend requires a new follow-up date.
func (c *Coordinator) ResolveFollowUp(
	ctx context.Context,
	taskID uuid.UUID,
	disposition FollowUpDisposition,
	newFollowUp *time.Time,
) error {
	switch disposition {
	case FollowUpActivate:
		return c.Activate(ctx, taskID)
	case FollowUpComplete:
		return c.Complete(ctx, taskID)
	case FollowUpExtend:
		if newFollowUp == nil {
			return fmt.Errorf("%w: extend requires a new follow-up date", domain.ErrValidation)
		}
		return c.transition(ctx, taskID, func(task *domain.Task) error {
			if task.State != domain.StateDelegated {
				return fmt.Errorf("%w: task is not delegated", domain.ErrInvalidTransition)
			}
			followUp := *newFollowUp
			task.FollowUpDate = &followUp
			return nil
		})
	default:
		return fmt.Errorf("%w: unknown follow-up disposition %q", domain.ErrValidation, disposition)
	}
}

// ResolveSomedayReview applies the caller's disposition for a Someday task.
// Keep is an explicit no-op that leaves the task for the next review cycle.
func (c *Coordinator) ResolveSomedayReview(
	ctx context.Context,
	taskID uuid.UUID,
	disposition SomedayDisposition,
) error {
	switch disposition {
	case SomedayActivate:
		return c.Activate(ctx, taskID)
	case SomedayKeep:
		return nil
	case SomedayTrash:
		return c.MoveToTrash(ctx, taskID)
	default:
		return fmt.Errorf("%w: unknown someday disposition %q", domain.ErrValidation, disposition)
	}
}

// InterventionResolution carries the payload for ResolveIntervention.
// NewStartDate is used by the defer-again disposition; SubtaskTitles and
// TrashOriginal by the subtasks disposition.
type InterventionResolution struct {
	Disposition   InterventionDisposition
	NewStartDate  *time.Time
	SubtaskTitles []string
	TrashOriginal bool
	Notes         string
}

// ResolveIntervention applies the mandatory disposition for a task blocked
// by the postponement gate. The chosen action runs through the same
// workflows as a normal deferral but bypasses the gate, since the
// disposition is itself the required intervention.
func (c *Coordinator) ResolveIntervention(
	ctx context.Context,
	taskID uuid.UUID,
	resolution InterventionResolution,
) (*WorkflowResult, error) {
	task, err := c.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}

	switch resolution.Disposition {
	case InterventionDeferAgain:
		if resolution.NewStartDate == nil {
			return nil, fmt.Errorf("%w: defer-again requires a new start date", domain.ErrValidation)
		}
		return c.deferLater(ctx, task, domain.LaterReason{
			Until: resolution.NewStartDate,
			Notes: resolution.Notes,
		})
	case InterventionSomeday:
		if err := c.MoveToSomeday(ctx, taskID); err != nil {
			return nil, err
		}
		return &WorkflowResult{Success: true, Message: "task moved to someday"}, nil
	case InterventionTrash:
		if err := c.MoveToTrash(ctx, taskID); err != nil {
			return nil, err
		}
		return &WorkflowResult{Success: true, Message: "task moved to trash"}, nil
	case InterventionSubtasks:
		reason := domain.SubtasksReason{
			Titles:        resolution.SubtaskTitles,
			TrashOriginal: resolution.TrashOriginal,
			Notes:         resolution.Notes,
		}
		if err := reason.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		return c.breakIntoSubtasks(ctx, task, reason)
	default:
		return nil, fmt.Errorf(
			"%w: unknown intervention disposition %q",
			domain.ErrValidation,
			resolution.Disposition,
		)
	}
}
