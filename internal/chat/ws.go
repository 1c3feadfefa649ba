package chat

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	SessionID string `json:"session_id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type      string `json:"type"` // "response" or "error"
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("chat: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("chat: websocket read: %v", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			h.sendWSError(conn, "", "invalid message format")
			continue
		}
		if req.Message == "" {
			h.sendWSError(conn, req.SessionID, "message is required")
			continue
		}

		resp := h.service.Turn(r.Context(), TurnRequest{
			SessionID: req.SessionID,
			Username:  req.Username,
			Message:   req.Message,
		})

		h.sendWS(conn, wsResponse{
			Type:      "response",
			SessionID: resp.SessionID,
			Content:   resp.Response,
		})
	}
}

func (h *Handler) sendWS(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("chat: websocket write: %v", err)
	}
}

func (h *Handler) sendWSError(conn *websocket.Conn, sessionID, message string) {
	h.sendWS(conn, wsResponse{Type: "error", SessionID: sessionID, Content: message})
}
