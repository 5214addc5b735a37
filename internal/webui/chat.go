package webui

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/docgpt-ai/docgpt/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type    string `json:"type"` // "ask"
	Content string `json:"content"`
}

// chatResponse is the outgoing WebSocket message format. "delta" carries
// the partial concatenation so far; "done" the full response.
type chatResponse struct {
	Type    string `json:"type"` // "delta", "done" or "error"
	Content string `json:"content"`
}

func (u *WebUI) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("webui: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	sess := u.resolveSession(r)

	// One request at a time per connection: each question is answered to
	// completion before the next message is read.
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("webui: websocket read: %v", err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			u.sendError(conn, "invalid message format")
			continue
		}
		if req.Type != "ask" {
			u.sendError(conn, "unknown message type: "+req.Type)
			continue
		}
		if req.Content == "" {
			u.sendError(conn, "content is required")
			continue
		}

		u.handleAsk(conn, r, sess, req.Content)
	}
}

func (u *WebUI) handleAsk(conn *websocket.Conn, r *http.Request, sess *session.Session, query string) {
	ctx := r.Context()

	full, err := sess.Respond(ctx, query, func(partial string) {
		u.send(conn, chatResponse{Type: "delta", Content: partial})
	})
	if err != nil {
		if errors.Is(err, session.ErrMissingCredential) {
			u.sendError(conn, "Please enter your OpenAI API Key")
		} else {
			u.sendError(conn, err.Error())
		}
		return
	}

	u.send(conn, chatResponse{Type: "done", Content: full})

	if u.history != nil {
		if err := u.history.LogMessage(ctx, sess.ID, "user", query); err != nil {
			log.Printf("webui: chat log: %v", err)
		}
		if err := u.history.LogMessage(ctx, sess.ID, "assistant", full); err != nil {
			log.Printf("webui: chat log: %v", err)
		}
	}
}

// resolveSession finds the caller's session from the cookie. The upgrade
// response cannot set cookies, so a connection without one gets a
// connection-scoped session.
func (u *WebUI) resolveSession(r *http.Request) *session.Session {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return u.manager.GetOrCreate(c.Value)
	}
	return u.manager.GetOrCreate("ws-" + r.RemoteAddr)
}

func (u *WebUI) send(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("webui: websocket write: %v", err)
	}
}

func (u *WebUI) sendError(conn *websocket.Conn, message string) {
	u.send(conn, chatResponse{Type: "error", Content: message})
}
