package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/events"
	"github.com/phrazzld/focal-api/internal/mocks"
	"github.com/phrazzld/focal-api/internal/scheduler"
	"github.com/phrazzld/focal-api/internal/service/postpone"
)

// stubBlocked marks a fixed set of task ids as blocked.
type stubBlocked struct {
	blocked map[uuid.UUID]bool
}

func (s *stubBlocked) IsBlocked(_ context.Context, taskID uuid.UUID) (bool, error) {
	return s.blocked[taskID], nil
}

// storeActivator activates directly against the mock store.
type storeActivator struct {
	taskStore *mocks.TaskStore
}

func (a *storeActivator) Activate(ctx context.Context, taskID uuid.UUID) error {
	task, err := a.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	task.State = domain.StateActive
	return a.taskStore.Update(ctx, task)
}

func createTask(t *testing.T, taskStore *mocks.TaskStore, title string, mutate func(*domain.Task)) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(title, domain.TierMedium, nil)
	require.NoError(t, err)
	if mutate != nil {
		mutate(task)
	}
	require.NoError(t, taskStore.Create(context.Background(), task))
	return task
}

func TestDeferredActivationJob(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	newFixture := func() (*scheduler.DeferredActivationJob, *mocks.TaskStore, *stubBlocked, *mocks.Emitter) {
		taskStore := mocks.NewTaskStore()
		blocked := &stubBlocked{blocked: make(map[uuid.UUID]bool)}
		emitter := mocks.NewEmitter()
		job := scheduler.NewDeferredActivationJob(
			taskStore, blocked, &storeActivator{taskStore: taskStore},
			emitter, mocks.NewClock(now), nil)
		return job, taskStore, blocked, emitter
	}

	t.Run("activates due unblocked tasks", func(t *testing.T) {
		t.Parallel()

		job, taskStore, _, emitter := newFixture()
		due := createTask(t, taskStore, "Due", func(task *domain.Task) {
			task.State = domain.StateDeferred
			task.StartDate = &past
		})
		notYet := createTask(t, taskStore, "Not yet", func(task *domain.Task) {
			task.State = domain.StateDeferred
			task.StartDate = &future
		})

		require.NoError(t, job.Run(context.Background()))

		reloaded, err := taskStore.GetByID(context.Background(), due.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateActive, reloaded.State)

		reloaded, err = taskStore.GetByID(context.Background(), notYet.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateDeferred, reloaded.State)

		activations := emitter.EventsOfType(events.TypeTasksActivated)
		require.Len(t, activations, 1)

		var payload events.TasksActivatedPayload
		require.NoError(t, activations[0].UnmarshalPayload(&payload))
		assert.Equal(t, []uuid.UUID{due.ID}, payload.TaskIDs)

		// A second run with no new triggers is a no-op.
		require.NoError(t, job.Run(context.Background()))

		reloaded, err = taskStore.GetByID(context.Background(), due.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateActive, reloaded.State)
		reloaded, err = taskStore.GetByID(context.Background(), notYet.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateDeferred, reloaded.State)
		assert.Len(t, emitter.EventsOfType(events.TypeTasksActivated), 1)
	})

	t.Run("deferred task without start date is due", func(t *testing.T) {
		t.Parallel()

		job, taskStore, _, _ := newFixture()
		task := createTask(t, taskStore, "No start date", func(task *domain.Task) {
			task.State = domain.StateDeferred
		})

		require.NoError(t, job.Run(context.Background()))

		reloaded, err := taskStore.GetByID(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateActive, reloaded.State)
	})

	t.Run("blocked tasks are skipped", func(t *testing.T) {
		t.Parallel()

		job, taskStore, blocked, emitter := newFixture()
		task := createTask(t, taskStore, "Blocked", func(task *domain.Task) {
			task.State = domain.StateDeferred
			task.StartDate = &past
		})
		blocked.blocked[task.ID] = true

		require.NoError(t, job.Run(context.Background()))

		reloaded, err := taskStore.GetByID(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateDeferred, reloaded.State)
		assert.Empty(t, emitter.Events())
	})

	t.Run("no due tasks emits nothing", func(t *testing.T) {
		t.Parallel()

		job, _, _, emitter := newFixture()
		require.NoError(t, job.Run(context.Background()))
		assert.Empty(t, emitter.Events())
	})
}

func TestDelegatedFollowUpJob(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	t.Run("announces due follow-ups once", func(t *testing.T) {
		t.Parallel()

		taskStore := mocks.NewTaskStore()
		emitter := mocks.NewEmitter()
		job := scheduler.NewDelegatedFollowUpJob(taskStore, emitter, mocks.NewClock(now), nil)

		task := createTask(t, taskStore, "Delegated", func(task *domain.Task) {
			task.State = domain.StateDelegated
			task.DelegatedTo = "Sam"
			task.FollowUpDate = &past
		})

		require.NoError(t, job.Run(context.Background()))
		require.NoError(t, job.Run(context.Background()))

		followUps := emitter.EventsOfType(events.TypeFollowUpNeeded)
		require.Len(t, followUps, 1, "repeat runs do not re-announce")

		var payload events.FollowUpNeededPayload
		require.NoError(t, followUps[0].UnmarshalPayload(&payload))
		assert.Equal(t, task.ID, payload.TaskID)
		assert.Equal(t, "Sam", payload.DelegatedTo)
	})

	t.Run("extending the follow-up re-arms the announcement", func(t *testing.T) {
		t.Parallel()

		taskStore := mocks.NewTaskStore()
		emitter := mocks.NewEmitter()
		clk := mocks.NewClock(now)
		job := scheduler.NewDelegatedFollowUpJob(taskStore, emitter, clk, nil)

		task := createTask(t, taskStore, "Delegated", func(task *domain.Task) {
			task.State = domain.StateDelegated
			task.DelegatedTo = "Sam"
			task.FollowUpDate = &past
		})

		require.NoError(t, job.Run(context.Background()))

		// A new follow-up date is a new announcement key once it comes due.
		extended := now.Add(time.Hour)
		stored, err := taskStore.GetByID(context.Background(), task.ID)
		require.NoError(t, err)
		stored.FollowUpDate = &extended
		require.NoError(t, taskStore.Update(context.Background(), stored))

		clk.Advance(2 * time.Hour)
		require.NoError(t, job.Run(context.Background()))

		assert.Len(t, emitter.EventsOfType(events.TypeFollowUpNeeded), 2)
	})
}

func TestSomedayReviewJob(t *testing.T) {
	t.Parallel()

	t.Run("lists someday tasks for review", func(t *testing.T) {
		t.Parallel()

		taskStore := mocks.NewTaskStore()
		emitter := mocks.NewEmitter()
		job := scheduler.NewSomedayReviewJob(taskStore, emitter, nil)

		a := createTask(t, taskStore, "Learn piano", func(task *domain.Task) {
			task.State = domain.StateSomeday
		})
		b := createTask(t, taskStore, "Write novel", func(task *domain.Task) {
			task.State = domain.StateSomeday
		})
		createTask(t, taskStore, "Active task", nil)

		require.NoError(t, job.Run(context.Background()))

		reviews := emitter.EventsOfType(events.TypeSomedayReviewNeeded)
		require.Len(t, reviews, 1)

		var payload events.SomedayReviewPayload
		require.NoError(t, reviews[0].UnmarshalPayload(&payload))
		assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, payload.TaskIDs)
	})

	t.Run("no someday tasks emits nothing", func(t *testing.T) {
		t.Parallel()

		taskStore := mocks.NewTaskStore()
		emitter := mocks.NewEmitter()
		job := scheduler.NewSomedayReviewJob(taskStore, emitter, nil)

		require.NoError(t, job.Run(context.Background()))
		assert.Empty(t, emitter.Events())
	})
}

func TestInterventionScanJob(t *testing.T) {
	t.Parallel()

	thresholds := postpone.Thresholds{PostponeCount: 3, RepeatReason: 2}

	t.Run("announces tasks at the threshold once per count", func(t *testing.T) {
		t.Parallel()

		taskStore := mocks.NewTaskStore()
		emitter := mocks.NewEmitter()
		job := scheduler.NewInterventionScanJob(taskStore, emitter, thresholds, nil)

		over := createTask(t, taskStore, "Dreaded chore", func(task *domain.Task) {
			task.State = domain.StateDeferred
			task.PostponeCount = 3
		})
		createTask(t, taskStore, "Under threshold", func(task *domain.Task) {
			task.State = domain.StateDeferred
			task.PostponeCount = 2
		})

		require.NoError(t, job.Run(context.Background()))
		require.NoError(t, job.Run(context.Background()))

		interventions := emitter.EventsOfType(events.TypePostponeInterventionNeeded)
		require.Len(t, interventions, 1)

		var payload events.InterventionNeededPayload
		require.NoError(t, interventions[0].UnmarshalPayload(&payload))
		assert.Equal(t, over.ID, payload.TaskID)
		assert.Equal(t, 3, payload.PostponeCount)
	})

	t.Run("a further postponement re-announces", func(t *testing.T) {
		t.Parallel()

		taskStore := mocks.NewTaskStore()
		emitter := mocks.NewEmitter()
		job := scheduler.NewInterventionScanJob(taskStore, emitter, thresholds, nil)

		task := createTask(t, taskStore, "Dreaded chore", func(task *domain.Task) {
			task.State = domain.StateDeferred
			task.PostponeCount = 3
		})

		require.NoError(t, job.Run(context.Background()))

		stored, err := taskStore.GetByID(context.Background(), task.ID)
		require.NoError(t, err)
		stored.PostponeCount = 4
		require.NoError(t, taskStore.Update(context.Background(), stored))

		require.NoError(t, job.Run(context.Background()))

		assert.Len(t, emitter.EventsOfType(events.TypePostponeInterventionNeeded), 2)
	})
}
