package handler

import (
	"net/http"

	"pharma-plus/internal/middleware"
	"pharma-plus/internal/model"
	"pharma-plus/internal/service"

	"github.com/rs/zerolog"
)

// AuthHandler handles account registration and login.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

func requestID(r *http.Request) string {
	return middleware.RequestIDFrom(r.Context())
}

// actor names the account behind a write; "anonymous" when writes are open.
func actor(r *http.Request) string {
	if id, ok := middleware.UserIDFrom(r.Context()); ok {
		return id.String()
	}
	return "anonymous"
}

// Signup handles POST /api/auth/signup and its /register alias.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	h.logger.Info().
		Str("user_id", resp.User.ID.String()).
		Str("request_id", requestID(r)).
		Msg("signup succeeded")

	writeJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
