package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/focal-api/internal/api/shared"
	"github.com/phrazzld/focal-api/internal/platform/logger"
	"github.com/phrazzld/focal-api/internal/service/auth"
)

// AuthHandler handles the session login endpoint.
type AuthHandler struct {
	sessions  auth.SessionService
	validator *validator.Validate
	logger    *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(sessions auth.SessionService, logger *slog.Logger) *AuthHandler {
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		sessions:  sessions,
		validator: validator.New(),
		logger:    logger.With(slog.String("component", "auth_handler")),
	}
}

// Login handles POST /auth/session requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	token, err := h.sessions.Login(r.Context(), req.Password)
	if err != nil {
		log.Warn("login attempt failed")
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{Token: token})
}
