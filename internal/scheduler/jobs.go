package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/events"
	"github.com/phrazzld/focal-api/internal/platform/clock"
	"github.com/phrazzld/focal-api/internal/service/postpone"
	"github.com/phrazzld/focal-api/internal/store"
)

// Job names, used by TriggerNow and the scheduler API surface.
const (
	JobDeferredActivation = "deferred_activation"
	JobDelegatedFollowUp  = "delegated_follow_up"
	JobSomedayReview      = "someday_review"
	JobInterventionScan   = "intervention_scan"
)

// BlockedChecker answers whether a task still has incomplete blockers.
// Implemented by the dependency manager.
type BlockedChecker interface {
	IsBlocked(ctx context.Context, taskID uuid.UUID) (bool, error)
}

// Activator transitions a task back to Active through the shared
// transactional write path. Implemented by the postpone coordinator.
type Activator interface {
	Activate(ctx context.Context, taskID uuid.UUID) error
}

// DeferredActivationJob scans Deferred tasks whose start date has arrived
// and activates those with no incomplete blockers. Tasks still blocked are
// skipped and re-checked on the next pass; activation never bypasses a
// pending dependency.
type DeferredActivationJob struct {
	taskStore store.TaskStore
	blocked   BlockedChecker
	activator Activator
	emitter   events.Emitter
	clock     clock.Clock
	logger    *slog.Logger
}

// NewDeferredActivationJob creates the deferred-activation job.
func NewDeferredActivationJob(
	taskStore store.TaskStore,
	blocked BlockedChecker,
	activator Activator,
	emitter events.Emitter,
	clk clock.Clock,
	logger *slog.Logger,
) *DeferredActivationJob {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DeferredActivationJob{
		taskStore: taskStore,
		blocked:   blocked,
		activator: activator,
		emitter:   emitter,
		clock:     clk,
		logger:    logger.With(slog.String("component", "deferred_activation_job")),
	}
}

// Name implements Job.
func (j *DeferredActivationJob) Name() string { return JobDeferredActivation }

// Run implements Job.
func (j *DeferredActivationJob) Run(ctx context.Context) error {
	now := j.clock.Now()

	due, err := j.taskStore.FindDeferredStartingBy(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to find due deferred tasks: %w", err)
	}

	var activated []uuid.UUID
	for _, task := range due {
		isBlocked, err := j.blocked.IsBlocked(ctx, task.ID)
		if err != nil {
			return fmt.Errorf("failed to check blockers for %s: %w", task.ID, err)
		}
		if isBlocked {
			j.logger.Debug("skipping blocked deferred task",
				slog.String("task_id", task.ID.String()))
			continue
		}

		if err := j.activator.Activate(ctx, task.ID); err != nil {
			return fmt.Errorf("failed to activate task %s: %w", task.ID, err)
		}
		activated = append(activated, task.ID)
	}

	if len(activated) == 0 {
		return nil
	}

	j.logger.Info("activated deferred tasks", slog.Int("count", len(activated)))

	if j.emitter != nil {
		event, err := events.NewEvent(events.TypeTasksActivated, events.TasksActivatedPayload{
			TaskIDs: activated,
		})
		if err != nil {
			return fmt.Errorf("failed to build activation event: %w", err)
		}
		j.emitter.Emit(ctx, event)
	}
	return nil
}

// DelegatedFollowUpJob scans Delegated tasks whose follow-up date has
// arrived and emits a follow-up-needed event for each. It never changes
// state: the review workflow decides the disposition. Each due follow-up is
// announced once per follow-up date; a restart re-announces at most once.
type DelegatedFollowUpJob struct {
	taskStore store.TaskStore
	emitter   events.Emitter
	clock     clock.Clock
	logger    *slog.Logger

	mu       sync.Mutex
	notified map[followUpKey]struct{}
}

type followUpKey struct {
	taskID   uuid.UUID
	followUp time.Time
}

// NewDelegatedFollowUpJob creates the delegated follow-up job.
func NewDelegatedFollowUpJob(
	taskStore store.TaskStore,
	emitter events.Emitter,
	clk clock.Clock,
	logger *slog.Logger,
) *DelegatedFollowUpJob {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DelegatedFollowUpJob{
		taskStore: taskStore,
		emitter:   emitter,
		clock:     clk,
		logger:    logger.With(slog.String("component", "delegated_follow_up_job")),
		notified:  make(map[followUpKey]struct{}),
	}
}

// Name implements Job.
func (j *DelegatedFollowUpJob) Name() string { return JobDelegatedFollowUp }

// Run implements Job.
func (j *DelegatedFollowUpJob) Run(ctx context.Context) error {
	due, err := j.taskStore.FindDelegatedFollowUpsDue(ctx, j.clock.Now())
	if err != nil {
		return fmt.Errorf("failed to find due follow-ups: %w", err)
	}

	for _, task := range due {
		if task.FollowUpDate == nil {
			continue
		}
		key := followUpKey{taskID: task.ID, followUp: *task.FollowUpDate}

		j.mu.Lock()
		_, seen := j.notified[key]
		if !seen {
			j.notified[key] = struct{}{}
		}
		j.mu.Unlock()
		if seen {
			continue
		}

		if j.emitter != nil {
			event, err := events.NewEvent(events.TypeFollowUpNeeded, events.FollowUpNeededPayload{
				TaskID:       task.ID,
				DelegatedTo:  task.DelegatedTo,
				FollowUpDate: *task.FollowUpDate,
			})
			if err != nil {
				return fmt.Errorf("failed to build follow-up event: %w", err)
			}
			j.emitter.Emit(ctx, event)
		}

		j.logger.Info("follow-up needed",
			slog.String("task_id", task.ID.String()),
			slog.String("delegated_to", task.DelegatedTo))
	}

	return nil
}

// SomedayReviewJob emits a review-needed event listing all Someday tasks.
// Dispositions (Activate / Keep / Trash) are decided externally per task.
type SomedayReviewJob struct {
	taskStore store.TaskStore
	emitter   events.Emitter
	logger    *slog.Logger
}

// NewSomedayReviewJob creates the someday periodic review job.
func NewSomedayReviewJob(
	taskStore store.TaskStore,
	emitter events.Emitter,
	logger *slog.Logger,
) *SomedayReviewJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SomedayReviewJob{
		taskStore: taskStore,
		emitter:   emitter,
		logger:    logger.With(slog.String("component", "someday_review_job")),
	}
}

// Name implements Job.
func (j *SomedayReviewJob) Name() string { return JobSomedayReview }

// Run implements Job.
func (j *SomedayReviewJob) Run(ctx context.Context) error {
	someday, err := j.taskStore.FindByState(ctx, domain.StateSomeday)
	if err != nil {
		return fmt.Errorf("failed to find someday tasks: %w", err)
	}
	if len(someday) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(someday))
	for _, task := range someday {
		ids = append(ids, task.ID)
	}

	if j.emitter != nil {
		event, err := events.NewEvent(events.TypeSomedayReviewNeeded, events.SomedayReviewPayload{
			TaskIDs: ids,
		})
		if err != nil {
			return fmt.Errorf("failed to build someday review event: %w", err)
		}
		j.emitter.Emit(ctx, event)
	}

	j.logger.Info("someday review needed", slog.Int("count", len(ids)))
	return nil
}

// InterventionScanJob watches postponement patterns and emits an
// intervention-needed event for any task at or past the threshold. The
// coordinator's deferral gate enforces the disposition; this job makes the
// pattern visible without waiting for the next deferral attempt. Each
// (task, postpone count) pair is announced once.
type InterventionScanJob struct {
	taskStore  store.TaskStore
	emitter    events.Emitter
	thresholds postpone.Thresholds
	logger     *slog.Logger

	mu       sync.Mutex
	notified map[interventionKey]struct{}
}

type interventionKey struct {
	taskID uuid.UUID
	count  int
}

// NewInterventionScanJob creates the postponement intervention scan job.
func NewInterventionScanJob(
	taskStore store.TaskStore,
	emitter events.Emitter,
	thresholds postpone.Thresholds,
	logger *slog.Logger,
) *InterventionScanJob {
	if thresholds.PostponeCount == 0 {
		thresholds = postpone.DefaultThresholds()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &InterventionScanJob{
		taskStore:  taskStore,
		emitter:    emitter,
		thresholds: thresholds,
		logger:     logger.With(slog.String("component", "intervention_scan_job")),
		notified:   make(map[interventionKey]struct{}),
	}
}

// Name implements Job.
func (j *InterventionScanJob) Name() string { return JobInterventionScan }

// Run implements Job.
func (j *InterventionScanJob) Run(ctx context.Context) error {
	deferred, err := j.taskStore.FindByState(ctx, domain.StateDeferred)
	if err != nil {
		return fmt.Errorf("failed to find deferred tasks: %w", err)
	}

	for _, task := range deferred {
		if task.PostponeCount < j.thresholds.PostponeCount {
			continue
		}
		key := interventionKey{taskID: task.ID, count: task.PostponeCount}

		j.mu.Lock()
		_, seen := j.notified[key]
		if !seen {
			j.notified[key] = struct{}{}
		}
		j.mu.Unlock()
		if seen {
			continue
		}

		if j.emitter != nil {
			event, err := events.NewEvent(
				events.TypePostponeInterventionNeeded,
				events.InterventionNeededPayload{
					TaskID:        task.ID,
					PostponeCount: task.PostponeCount,
				},
			)
			if err != nil {
				return fmt.Errorf("failed to build intervention event: %w", err)
			}
			j.emitter.Emit(ctx, event)
		}

		j.logger.Info("postponement intervention needed",
			slog.String("task_id", task.ID.String()),
			slog.Int("postpone_count", task.PostponeCount))
	}

	return nil
}
