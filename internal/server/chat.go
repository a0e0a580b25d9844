package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/cyanguide/internal/chat"
)

const sessionHeader = "X-Session-ID"

// checkOrigin applies the CORS origin policy to WebSocket upgrades: requests
// without an Origin header, same-origin pages and local pages are accepted,
// anything else only with AllowAll.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || s.cfg.AllowAll {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	if u.Scheme != "http" {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1":
		return true
	}
	return false
}

// chatRequest is the body of POST /api/chat and the incoming WebSocket frame.
type chatRequest struct {
	Type      string `json:"type,omitempty"` // websocket only: "message" or "reset"
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// chatEvent is the payload of an SSE event and the outgoing WebSocket frame.
type chatEvent struct {
	Type      string `json:"type,omitempty"` // websocket only: "fragment", "error" or "done"
	SessionID string `json:"session_id,omitempty"`
	Content   string `json:"content,omitempty"`
	// Partial tells the page to keep the text streamed before an error.
	Partial bool `json:"partial,omitempty"`
}

// runTurn streams one reply, calling emit for every non-empty fragment.
// It returns whatever ended the turn early: a provider error, a failed emit,
// or the context expiring after the stream stopped.
func (s *Server) runTurn(ctx context.Context, conv *conversation, message string, emit func(string) error) error {
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}
	for fragment, err := range conv.client.SendStreaming(ctx, message) {
		if err != nil {
			return err
		}
		if fragment == "" {
			continue
		}
		if err := emit(fragment); err != nil {
			return err
		}
	}
	return ctx.Err()
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	id, conv, err := s.sessions.get(req.SessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !conv.acquire() {
		writeError(w, http.StatusConflict, "a reply is already streaming for this session")
		return
	}
	defer conv.release()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set(sessionHeader, id)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	err = s.runTurn(r.Context(), conv, req.Message, func(fragment string) error {
		if err := writeEvent(w, "fragment", chatEvent{Content: fragment}); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		log.Printf("server: chat session %s: %v", id, err)
		if r.Context().Err() != nil {
			return
		}
		writeEvent(w, "error", chatEvent{SessionID: id, Content: chat.ErrorText, Partial: s.cfg.KeepPartialOnError})
		flusher.Flush()
		return
	}
	writeEvent(w, "done", chatEvent{SessionID: id})
	flusher.Flush()
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	s.sessions.remove(req.SessionID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			sendFrame(conn, chatEvent{Type: "error", Content: "invalid message format"})
			continue
		}

		switch req.Type {
		case "", "message":
			s.handleSocketMessage(r.Context(), conn, req)
		case "reset":
			if req.SessionID != "" {
				s.sessions.remove(req.SessionID)
			}
			sendFrame(conn, chatEvent{Type: "done", SessionID: req.SessionID})
		default:
			sendFrame(conn, chatEvent{Type: "error", SessionID: req.SessionID, Content: "unknown message type: " + req.Type})
		}
	}
}

func (s *Server) handleSocketMessage(ctx context.Context, conn *websocket.Conn, req chatRequest) {
	if strings.TrimSpace(req.Message) == "" {
		sendFrame(conn, chatEvent{Type: "error", SessionID: req.SessionID, Content: "message is required"})
		return
	}
	id, conv, err := s.sessions.get(req.SessionID)
	if err != nil {
		sendFrame(conn, chatEvent{Type: "error", Content: err.Error()})
		return
	}
	if !conv.acquire() {
		sendFrame(conn, chatEvent{Type: "error", SessionID: id, Content: "a reply is already streaming for this session"})
		return
	}
	defer conv.release()

	err = s.runTurn(ctx, conv, req.Message, func(fragment string) error {
		return conn.WriteJSON(chatEvent{Type: "fragment", SessionID: id, Content: fragment})
	})
	if err != nil {
		log.Printf("server: chat session %s: %v", id, err)
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) {
			return
		}
		sendFrame(conn, chatEvent{Type: "error", SessionID: id, Content: chat.ErrorText, Partial: s.cfg.KeepPartialOnError})
		return
	}
	sendFrame(conn, chatEvent{Type: "done", SessionID: id})
}

func sendFrame(conn *websocket.Conn, ev chatEvent) {
	if err := conn.WriteJSON(ev); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}

// writeEvent writes one server-sent event with a JSON data line.
func writeEvent(w http.ResponseWriter, name string, ev chatEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
