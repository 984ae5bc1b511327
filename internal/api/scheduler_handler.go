package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/focal-api/internal/api/shared"
	"github.com/phrazzld/focal-api/internal/platform/logger"
	"github.com/phrazzld/focal-api/internal/scheduler"
)

// SchedulerHandler exposes the background jobs for listing and manual
// triggering.
type SchedulerHandler struct {
	scheduler *scheduler.Scheduler
	logger    *slog.Logger
}

// NewSchedulerHandler creates a new SchedulerHandler.
func NewSchedulerHandler(sched *scheduler.Scheduler, logger *slog.Logger) *SchedulerHandler {
	if sched == nil {
		panic("scheduler cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SchedulerHandler{
		scheduler: sched,
		logger:    logger.With(slog.String("component", "scheduler_handler")),
	}
}

// ListJobs handles GET /scheduler/jobs requests.
func (h *SchedulerHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, JobListResponse{Jobs: h.scheduler.JobNames()})
}

// TriggerJob handles POST /scheduler/jobs/{name}/run requests, running the
// named job synchronously.
func (h *SchedulerHandler) TriggerJob(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	name := chi.URLParam(r, "name")
	if name == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Job name is required")
		return
	}

	if err := h.scheduler.TriggerNow(r.Context(), name); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("job triggered manually", slog.String("job", name))
	w.WriteHeader(http.StatusNoContent)
}
