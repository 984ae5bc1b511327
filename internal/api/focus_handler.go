package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/focal-api/internal/api/shared"
	"github.com/phrazzld/focal-api/internal/platform/logger"
	"github.com/phrazzld/focal-api/internal/service/ranking"
)

// FocusHandler handles the focus-task and ranked-list endpoints.
type FocusHandler struct {
	resolver *ranking.Resolver
	logger   *slog.Logger
}

// NewFocusHandler creates a new FocusHandler.
func NewFocusHandler(resolver *ranking.Resolver, logger *slog.Logger) *FocusHandler {
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FocusHandler{
		resolver: resolver,
		logger:   logger.With(slog.String("component", "focus_handler")),
	}
}

// GetFocus handles GET /focus requests. With no actionable tasks the body is
// an empty Focus; with a tie the response carries needs_comparison and the
// next pair to judge.
func (h *FocusHandler) GetFocus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	focus, err := h.resolver.NextFocus(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("resolved focus",
		slog.Bool("needs_comparison", focus.NeedsComparison))
	shared.RespondWithJSON(w, r, http.StatusOK, focus)
}

// GetRankedTasks handles GET /tasks/ranked requests.
func (h *FocusHandler) GetRankedTasks(w http.ResponseWriter, r *http.Request) {
	scored, err := h.resolver.RankedTasks(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if scored == nil {
		scored = []ranking.ScoredTask{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, scored)
}
