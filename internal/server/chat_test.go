package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/cyanguide/internal/chat"
	"github.com/ziadkadry99/cyanguide/internal/llm"
)

type sseEvent struct {
	Name string
	Data chatEvent
}

func parseEvents(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	for _, block := range strings.Split(body, "\n\n") {
		if strings.TrimSpace(block) == "" {
			continue
		}
		var ev sseEvent
		for _, line := range strings.Split(block, "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				ev.Name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev.Data); err != nil {
					t.Fatalf("bad data line %q: %v", line, err)
				}
			}
		}
		events = append(events, ev)
	}
	return events
}

func postChat(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func reply(events []sseEvent) string {
	var sb strings.Builder
	for _, ev := range events {
		if ev.Name == "fragment" {
			sb.WriteString(ev.Data.Content)
		}
	}
	return sb.String()
}

func TestChatStreamsFragments(t *testing.T) {
	srv := newTestServer(t, Config{}, llm.NewFakeProvider())

	w := postChat(t, srv, `{"session_id":"s1","message":"What board name?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	if id := w.Header().Get(sessionHeader); id != "s1" {
		t.Errorf("session header = %q", id)
	}

	events := parseEvents(t, w.Body.String())
	if len(events) < 2 {
		t.Fatalf("expected fragments and done, got %+v", events)
	}
	if got := reply(events); got != "You asked: What board name?" {
		t.Errorf("reply = %q", got)
	}
	last := events[len(events)-1]
	if last.Name != "done" || last.Data.SessionID != "s1" {
		t.Errorf("last event = %+v", last)
	}
}

func TestChatRejectsBadRequests(t *testing.T) {
	srv := newTestServer(t, Config{}, llm.NewFakeProvider())
	tests := []struct {
		name string
		body string
	}{
		{"blank", `{"message":"   "}`},
		{"missing", `{"session_id":"s1"}`},
		{"invalid json", `{"message":`},
		{"long session id", `{"session_id":"` + strings.Repeat("x", maxSessionIDLen+1) + `","message":"hi"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := postChat(t, srv, tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestChatBusySessionConflicts(t *testing.T) {
	p := llm.NewFakeProvider()
	srv := newTestServer(t, Config{}, p)

	_, conv, err := srv.sessions.get("s1")
	if err != nil {
		t.Fatal(err)
	}
	conv.acquire()

	if w := postChat(t, srv, `{"session_id":"s1","message":"second"}`); w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if len(p.Sessions()) != 0 {
		t.Error("a rejected request must not reach the provider")
	}

	conv.release()
	if w := postChat(t, srv, `{"session_id":"s1","message":"second"}`); w.Code != http.StatusOK {
		t.Errorf("expected 200 after release, got %d", w.Code)
	}
}

func TestChatErrorEvent(t *testing.T) {
	for _, keep := range []bool{false, true} {
		p := llm.NewScriptedProvider([]string{"The kernel"}, errors.New("stream reset"))
		srv := newTestServer(t, Config{KeepPartialOnError: keep}, p)

		w := postChat(t, srv, `{"session_id":"s1","message":"kernel?"}`)
		events := parseEvents(t, w.Body.String())
		if len(events) != 2 {
			t.Fatalf("keep=%v: events = %+v", keep, events)
		}
		if events[0].Name != "fragment" || events[0].Data.Content != "The kernel" {
			t.Errorf("keep=%v: first event = %+v", keep, events[0])
		}
		ev := events[1]
		if ev.Name != "error" || ev.Data.Content != chat.ErrorText || ev.Data.Partial != keep {
			t.Errorf("keep=%v: error event = %+v", keep, ev)
		}
	}
}

func TestChatSessionCreationFailure(t *testing.T) {
	p := llm.NewFakeProvider()
	p.OpenErr = errors.New("no route to host")
	srv := newTestServer(t, Config{}, p)

	events := parseEvents(t, postChat(t, srv, `{"session_id":"s1","message":"hello"}`).Body.String())
	if len(events) != 1 || events[0].Name != "error" {
		t.Fatalf("events = %+v", events)
	}
}

func TestChatTimeout(t *testing.T) {
	p := llm.NewScriptedProvider([]string{"never"}, nil)
	p.Delay = time.Minute
	srv := newTestServer(t, Config{RequestTimeout: 20 * time.Millisecond}, p)

	start := time.Now()
	events := parseEvents(t, postChat(t, srv, `{"session_id":"s1","message":"hello"}`).Body.String())
	if time.Since(start) > 10*time.Second {
		t.Fatal("timeout did not end the turn")
	}
	if len(events) != 1 || events[0].Name != "error" {
		t.Fatalf("events = %+v", events)
	}
}

func TestChatReusesSession(t *testing.T) {
	p := llm.NewFakeProvider()
	srv := newTestServer(t, Config{}, p)

	postChat(t, srv, `{"session_id":"s1","message":"one"}`)
	postChat(t, srv, `{"session_id":"s1","message":"two"}`)
	postChat(t, srv, `{"session_id":"s2","message":"three"}`)

	sessions := p.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("expected 2 provider sessions, got %d", len(sessions))
	}
	if got := sessions[0].Messages(); len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("first session messages = %v", got)
	}
	if sessions[0].Config.SystemPrompt == "" {
		t.Error("session should carry the guide system prompt")
	}
}

func TestChatMintsSessionID(t *testing.T) {
	srv := newTestServer(t, Config{}, llm.NewFakeProvider())
	w := postChat(t, srv, `{"message":"hello"}`)

	id := w.Header().Get(sessionHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("session header %q is not a uuid: %v", id, err)
	}
	events := parseEvents(t, w.Body.String())
	if last := events[len(events)-1]; last.Data.SessionID != id {
		t.Errorf("done event session = %q, want %q", last.Data.SessionID, id)
	}
}

func TestChatReset(t *testing.T) {
	p := llm.NewFakeProvider()
	srv := newTestServer(t, Config{}, p)
	postChat(t, srv, `{"session_id":"s1","message":"one"}`)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/reset", strings.NewReader(`{"session_id":"s1"}`))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	postChat(t, srv, `{"session_id":"s1","message":"two"}`)
	if n := len(p.Sessions()); n != 2 {
		t.Errorf("reset should start a new conversation, got %d sessions", n)
	}

	bad := httptest.NewRequest(http.MethodPost, "/api/chat/reset", strings.NewReader(`{}`))
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, bad)
	if w.Code != http.StatusBadRequest {
		t.Errorf("reset without id: expected 400, got %d", w.Code)
	}
}

func TestSessionsAreBounded(t *testing.T) {
	srv := newTestServer(t, Config{MaxSessions: 2}, llm.NewFakeProvider())
	for _, id := range []string{"a", "b", "c"} {
		postChat(t, srv, `{"session_id":"`+id+`","message":"hi"}`)
	}
	if n := srv.Sessions(); n != 2 {
		t.Errorf("expected 2 live sessions, got %d", n)
	}
}

func TestChatWithoutProvider(t *testing.T) {
	srv := newTestServer(t, Config{}, nil)
	if w := postChat(t, srv, `{"message":"hi"}`); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestWebSocketChat(t *testing.T) {
	p := llm.NewFakeProvider()
	srv := newTestServer(t, Config{}, p)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	readTurn := func() (string, chatEvent) {
		var sb strings.Builder
		for {
			var ev chatEvent
			if err := conn.ReadJSON(&ev); err != nil {
				t.Fatalf("read: %v", err)
			}
			if ev.Type != "fragment" {
				return sb.String(), ev
			}
			sb.WriteString(ev.Content)
		}
	}

	if err := conn.WriteJSON(chatRequest{Type: "message", SessionID: "w1", Message: "hi"}); err != nil {
		t.Fatal(err)
	}
	text, end := readTurn()
	if text != "You asked: hi" || end.Type != "done" || end.SessionID != "w1" {
		t.Errorf("turn = %q, %+v", text, end)
	}

	conn.WriteJSON(chatRequest{Type: "message", SessionID: "w1", Message: " "})
	if _, end := readTurn(); end.Type != "error" {
		t.Errorf("blank message should be an error frame, got %+v", end)
	}

	conn.WriteJSON(chatRequest{Type: "bogus"})
	if _, end := readTurn(); end.Type != "error" || !strings.Contains(end.Content, "bogus") {
		t.Errorf("unknown type frame = %+v", end)
	}

	conn.WriteJSON(chatRequest{Type: "reset", SessionID: "w1"})
	if _, end := readTurn(); end.Type != "done" {
		t.Errorf("reset frame = %+v", end)
	}
	conn.WriteJSON(chatRequest{SessionID: "w1", Message: "again"})
	readTurn()

	if n := len(p.Sessions()); n != 2 {
		t.Errorf("expected a new conversation after reset, got %d sessions", n)
	}
}

func TestWebSocketOriginPolicy(t *testing.T) {
	tests := []struct {
		name     string
		allowAll bool
		origin   string
		wantOK   bool
	}{
		{"no origin", false, "", true},
		{"localhost page", false, "http://localhost:3000", true},
		{"loopback page", false, "http://127.0.0.1:8080", true},
		{"foreign site", false, "http://evil.example", false},
		{"https foreign site", false, "https://localhost.evil.example", false},
		{"foreign site with allow all", true, "http://evil.example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, Config{AllowAll: tt.allowAll}, llm.NewFakeProvider())
			ts := httptest.NewServer(srv.Router())
			defer ts.Close()

			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chat"
			conn, resp, err := websocket.DefaultDialer.Dial(url, header)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("dial: %v", err)
				}
				conn.Close()
				return
			}
			if err == nil {
				conn.Close()
				t.Fatal("expected the upgrade to be refused")
			}
			if resp == nil || resp.StatusCode != http.StatusForbidden {
				t.Errorf("expected 403, got %v", resp)
			}
		})
	}
}

func TestWebSocketSameOrigin(t *testing.T) {
	srv := newTestServer(t, Config{}, llm.NewFakeProvider())

	// Same-origin pages are accepted whatever host the server is reached on.
	req := httptest.NewRequest(http.MethodGet, "http://guide.lan:8080/ws/chat", nil)
	req.Header.Set("Origin", "http://guide.lan:8080")
	if !srv.checkOrigin(req) {
		t.Error("same-origin upgrade refused")
	}
	req.Header.Set("Origin", "http://other.lan:8080")
	if srv.checkOrigin(req) {
		t.Error("cross-origin upgrade accepted")
	}
}
