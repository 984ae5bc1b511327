package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/focal-api/internal/api"
	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/mocks"
	"github.com/phrazzld/focal-api/internal/service/dependency"
	"github.com/phrazzld/focal-api/internal/service/postpone"
)

type apiFixture struct {
	router    chi.Router
	taskStore *mocks.TaskStore
	clock     *mocks.Clock
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	taskStore := mocks.NewTaskStore()
	depStore := mocks.NewDependencyStore()
	postponeStore := mocks.NewPostponeStore()
	clk := mocks.NewClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	tx := mocks.NewTransactor()

	linker := dependency.NewManager(taskStore, depStore, tx, clk, nil)
	coordinator := postpone.NewCoordinator(
		taskStore, postponeStore, linker, tx, mocks.NewEmitter(), clk,
		postpone.DefaultThresholds(), nil)

	handler := api.NewTaskHandler(taskStore, coordinator, nil)

	router := chi.NewRouter()
	router.Post("/tasks", handler.CreateTask)
	router.Get("/tasks", handler.ListTasks)
	router.Get("/tasks/{id}", handler.GetTask)
	router.Patch("/tasks/{id}/tier", handler.ChangeTier)
	router.Post("/tasks/{id}/delegate", handler.Delegate)
	router.Post("/tasks/{id}/complete", handler.Complete)
	router.Post("/tasks/{id}/trash", handler.MoveToTrash)

	return &apiFixture{router: router, taskStore: taskStore, clock: clk}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) createTask(t *testing.T, title string) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(title, domain.TierMedium, nil)
	require.NoError(t, err)
	require.NoError(t, f.taskStore.Create(context.Background(), task))
	return task
}

func decodeTask(t *testing.T, rec *httptest.ResponseRecorder) domain.Task {
	t.Helper()

	var task domain.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	return task
}

func TestCreateTaskEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("creates a task", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		rec := f.do(t, http.MethodPost, "/tasks", map[string]any{
			"title": "Write report",
			"tier":  "high",
			"tags":  []string{"work"},
		})

		require.Equal(t, http.StatusCreated, rec.Code)
		task := decodeTask(t, rec)
		assert.Equal(t, "Write report", task.Title)
		assert.Equal(t, domain.TierHigh, task.Tier)
		assert.Equal(t, domain.StateActive, task.State)
		assert.Equal(t, []string{"work"}, task.Tags)

		stored, err := f.taskStore.GetByID(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Write report", stored.Title)
	})

	t.Run("missing title is rejected", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		rec := f.do(t, http.MethodPost, "/tasks", map[string]any{"tier": "low"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown tier is rejected", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		rec := f.do(t, http.MethodPost, "/tasks", map[string]any{
			"title": "Write report",
			"tier":  "urgent",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		rec := f.do(t, http.MethodPost, "/tasks", map[string]any{
			"title":    "Write report",
			"tier":     "low",
			"priority": 12,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetTaskEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("returns the task", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		task := f.createTask(t, "Write report")

		rec := f.do(t, http.MethodGet, "/tasks/"+task.ID.String(), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, task.ID, decodeTask(t, rec).ID)
	})

	t.Run("unknown id yields 404", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		rec := f.do(t, http.MethodGet, "/tasks/7b0d1c7e-13e5-4f4a-9a4e-111111111111", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id yields 400", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		rec := f.do(t, http.MethodGet, "/tasks/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListTasksEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("defaults to active tasks", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		f.createTask(t, "Active one")
		completed := f.createTask(t, "Done one")
		completed.State = domain.StateCompleted
		require.NoError(t, f.taskStore.Update(context.Background(), completed))

		rec := f.do(t, http.MethodGet, "/tasks", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var tasks []domain.Task
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
		require.Len(t, tasks, 1)
		assert.Equal(t, "Active one", tasks[0].Title)
	})

	t.Run("filters by state", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		completed := f.createTask(t, "Done one")
		completed.State = domain.StateCompleted
		require.NoError(t, f.taskStore.Update(context.Background(), completed))

		rec := f.do(t, http.MethodGet, "/tasks?state=completed", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var tasks []domain.Task
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
		require.Len(t, tasks, 1)
	})

	t.Run("empty result is a JSON array", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		rec := f.do(t, http.MethodGet, "/tasks", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("unknown state yields 400", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		rec := f.do(t, http.MethodGet, "/tasks?state=archived", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestChangeTierEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	task := f.createTask(t, "Write report")

	rec := f.do(t, http.MethodPatch, "/tasks/"+task.ID.String()+"/tier",
		map[string]any{"tier": "high"})
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeTask(t, rec)
	assert.Equal(t, domain.TierHigh, updated.Tier)
	assert.Equal(t, domain.RatingInitial, updated.EloRating)
}

func TestDelegateEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	task := f.createTask(t, "Review contract")
	followUp := f.clock.Now().Add(7 * 24 * time.Hour)

	rec := f.do(t, http.MethodPost, "/tasks/"+task.ID.String()+"/delegate",
		map[string]any{"to": "Sam", "follow_up_date": followUp.Format(time.RFC3339)})
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeTask(t, rec)
	assert.Equal(t, domain.StateDelegated, updated.State)
	assert.Equal(t, "Sam", updated.DelegatedTo)
}

func TestLifecycleEndpoints(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	task := f.createTask(t, "Write report")

	rec := f.do(t, http.MethodPost, "/tasks/"+task.ID.String()+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StateCompleted, decodeTask(t, rec).State)

	rec = f.do(t, http.MethodPost, "/tasks/"+task.ID.String()+"/trash", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StateTrash, decodeTask(t, rec).State)
}
