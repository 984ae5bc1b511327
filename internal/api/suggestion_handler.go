package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/focal-api/internal/api/shared"
	"github.com/phrazzld/focal-api/internal/generation"
	"github.com/phrazzld/focal-api/internal/platform/logger"
	"github.com/phrazzld/focal-api/internal/store"
)

// SuggestionHandler handles subtask suggestion HTTP requests. The generator
// may be nil when no API key is configured; the endpoint then reports the
// feature as unavailable.
type SuggestionHandler struct {
	taskStore store.TaskStore
	generator generation.Generator
	logger    *slog.Logger
}

// NewSuggestionHandler creates a new SuggestionHandler.
func NewSuggestionHandler(
	taskStore store.TaskStore,
	generator generation.Generator,
	logger *slog.Logger,
) *SuggestionHandler {
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SuggestionHandler{
		taskStore: taskStore,
		generator: generator,
		logger:    logger.With(slog.String("component", "suggestion_handler")),
	}
}

// GetSubtaskSuggestions handles GET /tasks/{id}/subtask-suggestions requests.
func (h *SuggestionHandler) GetSubtaskSuggestions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if h.generator == nil {
		shared.RespondWithError(w, r, http.StatusServiceUnavailable,
			"Subtask suggestions are not configured")
		return
	}

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

	suggestions, err := h.generator.SuggestSubtasks(r.Context(), task)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("generated subtask suggestions",
		slog.String("task_id", id.String()),
		slog.Int("count", len(suggestions)))
	shared.RespondWithJSON(w, r, http.StatusOK, SuggestionResponse{
		TaskID:      id,
		Suggestions: suggestions,
	})
}
