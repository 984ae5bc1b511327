package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/focal-api/internal/api/shared"
	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/platform/logger"
	"github.com/phrazzld/focal-api/internal/service/postpone"
)

// PostponeHandler handles the defer workflow and disposition HTTP requests.
type PostponeHandler struct {
	coordinator *postpone.Coordinator
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewPostponeHandler creates a new PostponeHandler.
func NewPostponeHandler(coordinator *postpone.Coordinator, logger *slog.Logger) *PostponeHandler {
	if coordinator == nil {
		panic("coordinator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostponeHandler{
		coordinator: coordinator,
		validator:   validator.New(),
		logger:      logger.With(slog.String("component", "postpone_handler")),
	}
}

// DeferTask handles POST /tasks/{id}/defer requests.
func (h *PostponeHandler) DeferTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req DeferRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	reason, err := buildReason(req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.coordinator.Defer(r.Context(), id, reason)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("task deferred",
		slog.String("task_id", id.String()),
		slog.String("reason", req.Reason))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// buildReason converts the wire payload into the typed postpone reason.
func buildReason(req DeferRequest) (domain.PostponeReason, error) {
	switch domain.PostponeReasonKind(req.Reason) {
	case domain.ReasonLater:
		return domain.LaterReason{Until: req.Until, Notes: req.Notes}, nil
	case domain.ReasonBlocker:
		return domain.BlockerReason{
			ExistingTaskID: req.ExistingTaskID,
			NewTaskTitle:   req.NewTaskTitle,
			Notes:          req.Notes,
		}, nil
	case domain.ReasonDependency:
		return domain.DependencyReason{
			BlockingTaskIDs: req.BlockingTaskIDs,
			Notes:           req.Notes,
		}, nil
	case domain.ReasonSubtasks:
		return domain.SubtasksReason{
			Titles:        req.SubtaskTitles,
			TrashOriginal: req.TrashOriginal,
			Notes:         req.Notes,
		}, nil
	default:
		return nil, domain.ErrValidation
	}
}

// ResolveFollowUp handles POST /tasks/{id}/follow-up requests.
func (h *PostponeHandler) ResolveFollowUp(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req FollowUpResolutionRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	err = h.coordinator.ResolveFollowUp(
		r.Context(), id, postpone.FollowUpDisposition(req.Disposition), req.NewFollowUpDate)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ResolveSomedayReview handles POST /tasks/{id}/someday-review requests.
func (h *PostponeHandler) ResolveSomedayReview(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req SomedayResolutionRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	err = h.coordinator.ResolveSomedayReview(
		r.Context(), id, postpone.SomedayDisposition(req.Disposition))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ResolveIntervention handles POST /tasks/{id}/intervention requests.
func (h *PostponeHandler) ResolveIntervention(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req InterventionResolutionRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	result, err := h.coordinator.ResolveIntervention(r.Context(), id, postpone.InterventionResolution{
		Disposition:   postpone.InterventionDisposition(req.Disposition),
		NewStartDate:  req.NewStartDate,
		SubtaskTitles: req.SubtaskTitles,
		TrashOriginal: req.TrashOriginal,
		Notes:         req.Notes,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("intervention resolved",
		slog.String("task_id", id.String()),
		slog.String("disposition", req.Disposition))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
