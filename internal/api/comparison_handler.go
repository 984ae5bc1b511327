package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/focal-api/internal/api/shared"
	"github.com/phrazzld/focal-api/internal/platform/logger"
	"github.com/phrazzld/focal-api/internal/service/comparison"
)

// ComparisonHandler handles pairwise comparison HTTP requests.
type ComparisonHandler struct {
	comparisons *comparison.Service
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewComparisonHandler creates a new ComparisonHandler.
func NewComparisonHandler(comparisons *comparison.Service, logger *slog.Logger) *ComparisonHandler {
	if comparisons == nil {
		panic("comparisons cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ComparisonHandler{
		comparisons: comparisons,
		validator:   validator.New(),
		logger:      logger.With(slog.String("component", "comparison_handler")),
	}
}

// RecordComparison handles POST /comparisons requests.
func (h *ComparisonHandler) RecordComparison(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ComparisonRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	result, err := h.comparisons.RecordComparison(r.Context(), req.WinnerID, req.LoserID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("comparison recorded",
		slog.String("winner_id", req.WinnerID.String()),
		slog.String("loser_id", req.LoserID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// SkipComparison handles POST /comparisons/skip requests.
func (h *ComparisonHandler) SkipComparison(w http.ResponseWriter, r *http.Request) {
	var req SkipComparisonRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.comparisons.SkipComparison(r.Context(), req.TaskAID, req.TaskBID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
