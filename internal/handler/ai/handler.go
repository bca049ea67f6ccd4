package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/alexiscpa/legal-consultant/internal/model/chat"
	aiservice "github.com/alexiscpa/legal-consultant/internal/service/ai"
	"github.com/alexiscpa/legal-consultant/pkg/utils"
)

// doneSentinel terminates the chat event stream.
const doneSentinel = "[DONE]"

// Handler exposes the AI gateway operations over HTTP.
type Handler struct {
	log      *slog.Logger
	gateway  *aiservice.Gateway
	upgrader websocket.Upgrader
}

// New creates the AI handler. gateway may be nil when upstream credentials
// are missing; the routes then answer 503.
func New(log *slog.Logger, gateway *aiservice.Gateway) *Handler {
	return &Handler{
		log:     log,
		gateway: gateway,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the gateway endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ai/status", h.handleStatus)
	r.Post("/ai/scenario", h.handleScenario)
	r.Post("/ai/contract", h.handleContract)
	r.Post("/ai/chat", h.handleChat)
	r.Get("/ai/chat/ws", h.handleChatWS)
}

// handleStatus reports whether the upstream is configured, without leaking
// anything about the credentials themselves.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"available": h.gateway != nil})
}

func (h *Handler) available(w http.ResponseWriter) bool {
	if h.gateway == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "AI advisor unavailable")
		return false
	}
	return true
}

func (h *Handler) handleScenario(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	var payload struct {
		Scenario string `json:"scenario"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Scenario == "" {
		utils.RespondError(w, http.StatusBadRequest, "scenario is required")
		return
	}

	advice, err := h.gateway.ScenarioAdvice(r.Context(), payload.Scenario)
	if err != nil {
		h.log.ErrorContext(r.Context(), "scenario advice failed", slog.Any("error", err))
		utils.WriteError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, advice)
}

func (h *Handler) handleContract(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Content == "" {
		utils.RespondError(w, http.StatusBadRequest, "contract content is required")
		return
	}

	review, err := h.gateway.ReviewContract(r.Context(), payload.Content)
	if err != nil {
		h.log.ErrorContext(r.Context(), "contract review failed", slog.Any("error", err))
		utils.WriteError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, review)
}

type chatRequest struct {
	Message string      `json:"message"`
	History []chat.Turn `json:"history"`
}

// chatEvent is one frame of the incremental reply.
type chatEvent struct {
	Text    string        `json:"text,omitempty"`
	Sources []chat.Source `json:"sources,omitempty"`
	Error   string        `json:"error,omitempty"`
	Done    bool          `json:"done,omitempty"`
}

// handleChat relays the model reply as Server-Sent Events, one flush per
// chunk, terminated by the [DONE] sentinel.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := r.Context()
	stream, err := h.gateway.ChatTurn(ctx, payload.Message, payload.History)
	if err != nil {
		h.log.ErrorContext(ctx, "failed to open chat stream", slog.Any("error", err))
		utils.WriteError(w, err)
		return
	}
	defer stream.Close()

	utils.SetupSSEHeaders(w)

	for {
		select {
		case <-ctx.Done():
			// Client went away; stop relaying, nothing left to write.
			h.log.DebugContext(ctx, "chat client disconnected mid-stream")
			return
		default:
		}

		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			utils.SendSSERaw(w, flusher, doneSentinel)
			return
		}
		if err != nil {
			// A canceled request context means the client dropped while Recv
			// was blocked; the connection is gone, so no error frame.
			if ctx.Err() != nil {
				h.log.DebugContext(ctx, "chat client disconnected mid-stream")
				return
			}
			h.log.ErrorContext(ctx, "chat stream failed", slog.Any("error", err))
			utils.SendSSEChunk(w, flusher, chatEvent{Error: err.Error()})
			return
		}
		if chunk.Text == "" && len(chunk.Sources) == 0 {
			continue
		}

		utils.SendSSEChunk(w, flusher, chatEvent{Text: chunk.Text, Sources: chunk.Sources})
	}
}

// handleChatWS is the websocket variant of the chat relay: the client sends
// one request frame, receives a frame per chunk, then a done frame.
func (h *Handler) handleChatWS(w http.ResponseWriter, r *http.Request) {
	if h.gateway == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "AI advisor unavailable")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WarnContext(r.Context(), "websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	var payload chatRequest
	if err := conn.ReadJSON(&payload); err != nil {
		_ = conn.WriteJSON(chatEvent{Error: "invalid request frame"})
		return
	}
	if payload.Message == "" {
		_ = conn.WriteJSON(chatEvent{Error: "message is required"})
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	stream, err := h.gateway.ChatTurn(ctx, payload.Message, payload.History)
	if err != nil {
		_ = conn.WriteJSON(chatEvent{Error: err.Error()})
		return
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			_ = conn.WriteJSON(chatEvent{Done: true})
			return
		}
		if err != nil {
			if ctx.Err() != nil {
				h.log.DebugContext(ctx, "websocket client disconnected mid-stream")
				return
			}
			h.log.ErrorContext(ctx, "chat stream failed", slog.Any("error", err))
			_ = conn.WriteJSON(chatEvent{Error: err.Error()})
			return
		}
		if chunk.Text == "" && len(chunk.Sources) == 0 {
			continue
		}

		if err := conn.WriteJSON(chatEvent{Text: chunk.Text, Sources: chunk.Sources}); err != nil {
			// Peer closed the socket; abandon the relay.
			h.log.DebugContext(ctx, "websocket client disconnected mid-stream")
			return
		}
	}
}
