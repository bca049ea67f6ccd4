package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alexiscpa/legal-consultant/internal/apperr"
	"github.com/alexiscpa/legal-consultant/internal/middleware"
	"github.com/alexiscpa/legal-consultant/internal/model/account"
	authservice "github.com/alexiscpa/legal-consultant/internal/service/auth"
	"github.com/alexiscpa/legal-consultant/pkg/utils"
)

// Handler exposes the administrator account-management endpoints. The route
// group carries the authenticate+admin gate; handlers only act.
type Handler struct {
	authSvc *authservice.Service
}

// New creates the user-administration handler.
func New(authSvc *authservice.Service) *Handler {
	return &Handler{authSvc: authSvc}
}

// RegisterRoutes mounts the admin endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.handleList)
	r.Get("/users/pending", h.handleListPending)
	r.Patch("/users/{id}/approve", h.handleApprove)
	r.Patch("/users/{id}/reject", h.handleReject)
	r.Delete("/users/{id}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.authSvc.ListAccounts(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if accounts == nil {
		accounts = []account.Account{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.authSvc.ListPending(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if accounts == nil {
		accounts = []account.Account{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		utils.WriteError(w, apperr.Authentication("not authenticated"))
		return
	}

	approved, err := h.authSvc.Approve(r.Context(), admin, chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "Account approved successfully",
		"account": approved,
	})
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		utils.WriteError(w, apperr.Authentication("not authenticated"))
		return
	}

	rejected, err := h.authSvc.Reject(r.Context(), admin, chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "Account rejected",
		"account": rejected,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		utils.WriteError(w, apperr.Authentication("not authenticated"))
		return
	}

	if err := h.authSvc.DeleteAccount(r.Context(), admin, chi.URLParam(r, "id")); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}
