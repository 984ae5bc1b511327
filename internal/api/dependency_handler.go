package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/focal-api/internal/api/shared"
	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/platform/logger"
	"github.com/phrazzld/focal-api/internal/service/dependency"
)

// DependencyHandler handles dependency graph HTTP requests.
type DependencyHandler struct {
	manager   *dependency.Manager
	validator *validator.Validate
	logger    *slog.Logger
}

// NewDependencyHandler creates a new DependencyHandler.
func NewDependencyHandler(manager *dependency.Manager, logger *slog.Logger) *DependencyHandler {
	if manager == nil {
		panic("manager cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DependencyHandler{
		manager:   manager,
		validator: validator.New(),
		logger:    logger.With(slog.String("component", "dependency_handler")),
	}
}

// AddDependency handles POST /tasks/{id}/dependencies requests. The path id
// is the blocked task; the body names the blocking task.
func (h *DependencyHandler) AddDependency(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	blockedID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req AddDependencyRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.manager.AddDependency(r.Context(), blockedID, req.BlockingTaskID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("dependency added",
		slog.String("blocked_id", blockedID.String()),
		slog.String("blocking_id", req.BlockingTaskID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// RemoveDependency handles DELETE /tasks/{id}/dependencies/{blockingID}
// requests.
func (h *DependencyHandler) RemoveDependency(w http.ResponseWriter, r *http.Request) {
	blockedID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	blockingID, err := getPathUUID(r, "blockingID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.manager.RemoveDependency(r.Context(), blockedID, blockingID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetBlockers handles GET /tasks/{id}/blockers requests, listing the
// incomplete tasks directly blocking the given task.
func (h *DependencyHandler) GetBlockers(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	blockers, err := h.manager.BlockingTasksOf(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if blockers == nil {
		blockers = []*domain.Task{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, blockers)
}

// GetDependencyTree handles GET /tasks/{id}/dependencies/tree requests.
func (h *DependencyHandler) GetDependencyTree(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tree, err := h.manager.BuildDependencyTree(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tree)
}
