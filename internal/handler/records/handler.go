// Package records exposes persistence for reviewed contracts, saved
// consultations, and the advisor transcript. These are thin data routes; all
// the interesting behavior lives in the AI gateway and the request gate.
package records

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/alexiscpa/legal-consultant/internal/model/chat"
	"github.com/alexiscpa/legal-consultant/internal/model/contract"
	"github.com/alexiscpa/legal-consultant/internal/model/scenario"
	"github.com/alexiscpa/legal-consultant/internal/storage"
	"github.com/alexiscpa/legal-consultant/pkg/utils"
)

// Store bundles the record persistence capabilities the handler needs.
type Store interface {
	storage.ContractStore
	storage.ScenarioStore
	storage.ChatStore
}

// Handler serves the record CRUD routes.
type Handler struct {
	store Store
}

// New creates the records handler.
func New(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the record endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/contracts", h.handleListContracts)
	r.Post("/contracts", h.handleCreateContract)
	r.Delete("/contracts/{id}", h.handleDeleteContract)

	r.Get("/scenarios", h.handleListScenarios)
	r.Post("/scenarios", h.handleCreateScenario)
	r.Delete("/scenarios/{id}", h.handleDeleteScenario)

	r.Get("/chats", h.handleListTurns)
	r.Post("/chats", h.handleAppendTurn)
	r.Delete("/chats", h.handleClearTurns)
}

func (h *Handler) handleListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.store.ListContracts(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to fetch contracts")
		return
	}
	if contracts == nil {
		contracts = []contract.Contract{}
	}
	utils.RespondJSON(w, http.StatusOK, contracts)
}

func (h *Handler) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title   string          `json:"title"`
		Content string          `json:"content"`
		Result  contract.Review `json:"result"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Title == "" || payload.Content == "" {
		utils.RespondError(w, http.StatusBadRequest, "title and content are required")
		return
	}

	c := contract.Contract{
		ID:        uuid.NewString(),
		Title:     payload.Title,
		Content:   payload.Content,
		Result:    payload.Result,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.CreateContract(r.Context(), &c); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to save contract")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleDeleteContract(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteContract(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "contract not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete contract")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Contract deleted"})
}

func (h *Handler) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := h.store.ListScenarios(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to fetch scenarios")
		return
	}
	if scenarios == nil {
		scenarios = []scenario.Scenario{}
	}
	utils.RespondJSON(w, http.StatusOK, scenarios)
}

func (h *Handler) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title       string `json:"title"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Advice      string `json:"advice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Title == "" || payload.Description == "" {
		utils.RespondError(w, http.StatusBadRequest, "title and description are required")
		return
	}

	sc := scenario.Scenario{
		ID:          uuid.NewString(),
		Title:       payload.Title,
		Category:    payload.Category,
		Description: payload.Description,
		Advice:      payload.Advice,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.store.CreateScenario(r.Context(), &sc); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to save scenario")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, sc)
}

func (h *Handler) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteScenario(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "scenario not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete scenario")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Scenario deleted"})
}

func (h *Handler) handleListTurns(w http.ResponseWriter, r *http.Request) {
	turns, err := h.store.ListTurns(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to fetch chat history")
		return
	}
	if turns == nil {
		turns = []chat.Turn{}
	}
	utils.RespondJSON(w, http.StatusOK, turns)
}

func (h *Handler) handleAppendTurn(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Role    string        `json:"role"`
		Text    string        `json:"text"`
		Sources []chat.Source `json:"sources"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Role != chat.RoleUser && payload.Role != chat.RoleModel {
		utils.RespondError(w, http.StatusBadRequest, "role must be user or model")
		return
	}
	if payload.Text == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	t := chat.Turn{
		ID:        uuid.NewString(),
		Role:      payload.Role,
		Text:      payload.Text,
		Sources:   payload.Sources,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.AppendTurn(r.Context(), &t); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to save chat turn")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, t)
}

func (h *Handler) handleClearTurns(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearTurns(r.Context()); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to clear chat history")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Chat history cleared"})
}
