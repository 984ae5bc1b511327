package dependency_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/mocks"
	"github.com/phrazzld/focal-api/internal/service/dependency"
	"github.com/phrazzld/focal-api/internal/store"
)

type managerFixture struct {
	manager   *dependency.Manager
	taskStore *mocks.TaskStore
	depStore  *mocks.DependencyStore
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()

	taskStore := mocks.NewTaskStore()
	depStore := mocks.NewDependencyStore()
	clk := mocks.NewClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	return &managerFixture{
		manager:   dependency.NewManager(taskStore, depStore, mocks.NewTransactor(), clk, nil),
		taskStore: taskStore,
		depStore:  depStore,
	}
}

func (f *managerFixture) createTask(t *testing.T, title string) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(title, domain.TierMedium, nil)
	require.NoError(t, err)
	require.NoError(t, f.taskStore.Create(context.Background(), task))
	return task
}

func TestAddDependency(t *testing.T) {
	t.Parallel()

	t.Run("adds an edge between existing tasks", func(t *testing.T) {
		t.Parallel()

		f := newManagerFixture(t)
		blocked := f.createTask(t, "Ship release")
		blocking := f.createTask(t, "Fix flaky test")

		require.NoError(t, f.manager.AddDependency(context.Background(), blocked.ID, blocking.ID))

		ids, err := f.depStore.ListBlockerIDs(context.Background(), blocked.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{blocking.ID}, ids)
	})

	t.Run("rejects self dependency", func(t *testing.T) {
		t.Parallel()

		f := newManagerFixture(t)
		task := f.createTask(t, "Ship release")

		err := f.manager.AddDependency(context.Background(), task.ID, task.ID)
		assert.ErrorIs(t, err, domain.ErrSelfDependency)
	})

	t.Run("rejects missing endpoints", func(t *testing.T) {
		t.Parallel()

		f := newManagerFixture(t)
		task := f.createTask(t, "Ship release")

		err := f.manager.AddDependency(context.Background(), task.ID, uuid.New())
		assert.ErrorIs(t, err, store.ErrTaskNotFound)

		err = f.manager.AddDependency(context.Background(), uuid.New(), task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("rejects a direct cycle", func(t *testing.T) {
		t.Parallel()

		f := newManagerFixture(t)
		a := f.createTask(t, "A")
		b := f.createTask(t, "B")

		require.NoError(t, f.manager.AddDependency(context.Background(), a.ID, b.ID))

		err := f.manager.AddDependency(context.Background(), b.ID, a.ID)
		assert.ErrorIs(t, err, domain.ErrCircularDependency)

		// The rejected edge must leave the graph untouched.
		ids, listErr := f.depStore.ListBlockerIDs(context.Background(), b.ID)
		require.NoError(t, listErr)
		assert.Empty(t, ids)
	})

	t.Run("rejects a transitive cycle", func(t *testing.T) {
		t.Parallel()

		f := newManagerFixture(t)
		a := f.createTask(t, "A")
		b := f.createTask(t, "B")
		c := f.createTask(t, "C")

		require.NoError(t, f.manager.AddDependency(context.Background(), a.ID, b.ID))
		require.NoError(t, f.manager.AddDependency(context.Background(), b.ID, c.ID))

		err := f.manager.AddDependency(context.Background(), c.ID, a.ID)
		assert.ErrorIs(t, err, domain.ErrCircularDependency)
	})

	t.Run("adding an existing edge is a no-op", func(t *testing.T) {
		t.Parallel()

		f := newManagerFixture(t)
		blocked := f.createTask(t, "Ship release")
		blocking := f.createTask(t, "Fix flaky test")

		require.NoError(t, f.manager.AddDependency(context.Background(), blocked.ID, blocking.ID))
		require.NoError(t, f.manager.AddDependency(context.Background(), blocked.ID, blocking.ID))

		ids, err := f.depStore.ListBlockerIDs(context.Background(), blocked.ID)
		require.NoError(t, err)
		assert.Len(t, ids, 1)
	})
}

func TestRemoveDependency(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	blocked := f.createTask(t, "Ship release")
	blocking := f.createTask(t, "Fix flaky test")

	require.NoError(t, f.manager.AddDependency(context.Background(), blocked.ID, blocking.ID))
	require.NoError(t, f.manager.RemoveDependency(context.Background(), blocked.ID, blocking.ID))

	ids, err := f.depStore.ListBlockerIDs(context.Background(), blocked.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	// Removing an absent edge is a no-op.
	require.NoError(t, f.manager.RemoveDependency(context.Background(), blocked.ID, blocking.ID))
}

func TestBlockingTasksOf(t *testing.T) {
	t.Parallel()

	t.Run("excludes completed blockers", func(t *testing.T) {
		t.Parallel()

		f := newManagerFixture(t)
		blocked := f.createTask(t, "Ship release")
		open := f.createTask(t, "Fix flaky test")
		done := f.createTask(t, "Update changelog")

		require.NoError(t, f.manager.AddDependency(context.Background(), blocked.ID, open.ID))
		require.NoError(t, f.manager.AddDependency(context.Background(), blocked.ID, done.ID))

		done.State = domain.StateCompleted
		require.NoError(t, f.taskStore.Update(context.Background(), done))

		blockers, err := f.manager.BlockingTasksOf(context.Background(), blocked.ID)
		require.NoError(t, err)
		require.Len(t, blockers, 1)
		assert.Equal(t, open.ID, blockers[0].ID)
	})

	t.Run("no blockers yields empty slice", func(t *testing.T) {
		t.Parallel()

		f := newManagerFixture(t)
		task := f.createTask(t, "Ship release")

		blockers, err := f.manager.BlockingTasksOf(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Empty(t, blockers)
	})
}

func TestIsBlocked(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	blocked := f.createTask(t, "Ship release")
	blocking := f.createTask(t, "Fix flaky test")

	require.NoError(t, f.manager.AddDependency(context.Background(), blocked.ID, blocking.ID))

	isBlocked, err := f.manager.IsBlocked(context.Background(), blocked.ID)
	require.NoError(t, err)
	assert.True(t, isBlocked)

	blocking.State = domain.StateCompleted
	require.NoError(t, f.taskStore.Update(context.Background(), blocking))

	isBlocked, err = f.manager.IsBlocked(context.Background(), blocked.ID)
	require.NoError(t, err)
	assert.False(t, isBlocked, "completing the blocker unblocks the task")
}

func TestBuildDependencyTree(t *testing.T) {
	t.Parallel()

	f := newManagerFixture(t)
	root := f.createTask(t, "Ship release")
	mid := f.createTask(t, "Fix flaky test")
	leaf := f.createTask(t, "Reproduce failure")

	require.NoError(t, f.manager.AddDependency(context.Background(), root.ID, mid.ID))
	require.NoError(t, f.manager.AddDependency(context.Background(), mid.ID, leaf.ID))

	tree, err := f.manager.BuildDependencyTree(context.Background(), root.ID)
	require.NoError(t, err)

	assert.Equal(t, root.ID, tree.TaskID)
	require.Len(t, tree.Blockers, 1)
	assert.Equal(t, mid.ID, tree.Blockers[0].TaskID)
	require.Len(t, tree.Blockers[0].Blockers, 1)
	assert.Equal(t, leaf.ID, tree.Blockers[0].Blockers[0].TaskID)
}
