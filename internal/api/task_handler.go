package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/focal-api/internal/api/shared"
	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/platform/logger"
	"github.com/phrazzld/focal-api/internal/service/postpone"
	"github.com/phrazzld/focal-api/internal/store"
)

// TaskHandler handles task CRUD and lifecycle HTTP requests.
type TaskHandler struct {
	taskStore   store.TaskStore
	coordinator *postpone.Coordinator
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(
	taskStore store.TaskStore,
	coordinator *postpone.Coordinator,
	logger *slog.Logger,
) *TaskHandler {
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}
	if coordinator == nil {
		panic("coordinator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskHandler{
		taskStore:   taskStore,
		coordinator: coordinator,
		validator:   validator.New(),
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateTaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := domain.NewTask(req.Title, domain.PriorityTier(req.Tier), req.StartDate)
	if err != nil {
		HandleAPIError(w, r, err, "Invalid task data")
		return
	}
	task.Notes = req.Notes
	task.DueDate = req.DueDate
	task.Tags = req.Tags

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("created task",
		slog.String("task_id", task.ID.String()),
		slog.String("tier", string(task.Tier)))
	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// GetTask handles GET /tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// ListTasks handles GET /tasks requests. The state query parameter selects
// the lifecycle state; it defaults to active.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	state := domain.TaskState(r.URL.Query().Get("state"))
	if state == "" {
		state = domain.StateActive
	}
	if !state.IsValid() {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Unknown task state")
		return
	}

	tasks, err := h.taskStore.FindByState(r.Context(), state)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// ChangeTier handles PATCH /tasks/{id}/tier requests.
func (h *TaskHandler) ChangeTier(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req ChangeTierRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.coordinator.ChangeTier(r.Context(), id, domain.PriorityTier(req.Tier)); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.respondWithTask(w, r, id)
}

// Delegate handles POST /tasks/{id}/delegate requests.
func (h *TaskHandler) Delegate(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req DelegateRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.coordinator.Delegate(r.Context(), id, req.To, req.FollowUpDate); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.respondWithTask(w, r, id)
}

// MoveToSomeday handles POST /tasks/{id}/someday requests.
func (h *TaskHandler) MoveToSomeday(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.coordinator.MoveToSomeday)
}

// MoveToTrash handles POST /tasks/{id}/trash requests.
func (h *TaskHandler) MoveToTrash(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.coordinator.MoveToTrash)
}

// Complete handles POST /tasks/{id}/complete requests.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.coordinator.Complete)
}

// Activate handles POST /tasks/{id}/activate requests.
func (h *TaskHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.coordinator.Activate)
}

// transition is the shared shape of the bodyless lifecycle endpoints.
func (h *TaskHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, id uuid.UUID) error,
) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := apply(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.respondWithTask(w, r, id)
}

// respondWithTask returns the task's current representation after a
// successful mutation.
func (h *TaskHandler) respondWithTask(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	task, err := h.taskStore.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}
