package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/chartnote/chartnote/internal/services/auth"
)

// AuthHandler serves client registration and login
type AuthHandler struct {
	auth   *auth.Service
	logger arbor.ILogger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *auth.Service, logger arbor.ILogger) *AuthHandler {
	return &AuthHandler{
		auth:   authService,
		logger: logger,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterHandler handles POST /auth/register
func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req credentialsRequest
	if err := DecodeJSONBody(r, &req); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	client, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]string{
		"id":       client.ID,
		"username": client.Username,
	})
}

// LoginHandler handles POST /auth/login
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req credentialsRequest
	if err := DecodeJSONBody(r, &req); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"token":      token,
		"token_type": "bearer",
	})
}
