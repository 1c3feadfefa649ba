package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jwhyun/finbot/internal/tasks"
)

// Handler exposes the chat service over HTTP.
type Handler struct {
	service *Service
	queue   *tasks.Queue
}

// NewHandler creates the HTTP handler for chat routes.
func NewHandler(service *Service, queue *tasks.Queue) *Handler {
	return &Handler{service: service, queue: queue}
}

// RegisterRoutes mounts the chat endpoints on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/chat", h.handleChat)
	r.Post("/api/chat/async", h.handleChatAsync)
	r.Get("/api/tasks/{id}", h.handleTask)
	r.Get("/ws/chat", h.handleWebSocket)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTurn(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.Turn(r.Context(), req))
}

func (h *Handler) handleChatAsync(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTurn(w, r)
	if !ok {
		return
	}

	id, sessionID, err := h.service.Submit(r.Context(), req)
	if err != nil {
		log.Printf("chat: submitting turn: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to submit turn")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"task_id":    id,
		"session_id": sessionID,
	})
}

func (h *Handler) handleTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	st, err := h.queue.Poll(r.Context(), id)
	if errors.Is(err, tasks.ErrNotFound) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		log.Printf("chat: polling task %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to poll task")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"task_id": st.ID,
		"state":   string(st.State),
		"result":  st.Result,
		"error":   st.Err,
	})
}

func decodeTurn(w http.ResponseWriter, r *http.Request) (TurnRequest, bool) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("chat: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
