package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alexiscpa/legal-consultant/internal/apperr"
	"github.com/alexiscpa/legal-consultant/internal/middleware"
	authservice "github.com/alexiscpa/legal-consultant/internal/service/auth"
	"github.com/alexiscpa/legal-consultant/pkg/utils"
)

// Handler exposes registration and session endpoints.
type Handler struct {
	authSvc *authservice.Service
}

// New creates the auth handler.
func New(authSvc *authservice.Service) *Handler {
	return &Handler{authSvc: authSvc}
}

// RegisterPublicRoutes mounts the unauthenticated endpoints.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
}

// RegisterSessionRoutes mounts the endpoints behind the authentication gate.
func (h *Handler) RegisterSessionRoutes(r chi.Router) {
	r.Post("/auth/logout", h.handleLogout)
	r.Get("/auth/me", h.handleMe)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.authSvc.Register(r.Context(), payload.Email, payload.Password, payload.Name)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"message": "Registration successful. Please wait for admin approval.",
		"account": created,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, logged, err := h.authSvc.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"account": logged,
	})
}

// handleLogout acknowledges the client discarding its token. There is no
// server-side revocation; the short expiry bounds a stolen token's life.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	a, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		utils.WriteError(w, apperr.Authentication("not authenticated"))
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"account": a})
}
