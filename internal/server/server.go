// Package server hosts the rendered guide and proxies the chat assistant.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/cyanguide/internal/guide"
	"github.com/ziadkadry99/cyanguide/internal/llm"
	"github.com/ziadkadry99/cyanguide/internal/search"
	"github.com/ziadkadry99/cyanguide/internal/site"
)

// localOrigins are the page origins allowed to call the API unless
// Config.AllowAll is set.
var localOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}

// Config holds server configuration.
type Config struct {
	Addr     string
	AllowAll bool // allow all CORS origins (dev mode)
	// MaxSessions bounds live conversations; the least recently used one is
	// forgotten when a new reader arrives.
	MaxSessions int
	// RequestTimeout caps one chat turn. Zero means no limit.
	RequestTimeout time.Duration
	// KeepPartialOnError keeps streamed text when a turn fails.
	KeepPartialOnError bool
	Version            string
}

// Server serves the guide page, its JSON APIs and the chat proxy. A nil
// provider disables the chat routes and hides the widget.
type Server struct {
	cfg      Config
	guide    *guide.Guide
	searcher *search.Searcher
	provider llm.Provider
	session  llm.SessionConfig
	sessions *sessionCache

	page       []byte
	index      []byte
	upgrader   websocket.Upgrader
	router     chi.Router
	httpServer *http.Server
}

// New renders the page once and builds the router.
func New(cfg Config, g *guide.Guide, searcher *search.Searcher, provider llm.Provider, session llm.SessionConfig) (*Server, error) {
	if searcher == nil {
		searcher = search.New(g)
	}
	s := &Server{
		cfg:      cfg,
		guide:    g,
		searcher: searcher,
		provider: provider,
		session:  session,
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}

	if provider != nil {
		cache, err := newSessionCache(cfg.MaxSessions, provider, session)
		if err != nil {
			return nil, err
		}
		s.sessions = cache
	}

	if err := s.renderPage(); err != nil {
		return nil, err
	}
	s.router = s.buildRouter()
	return s, nil
}

func (s *Server) renderPage() error {
	r, err := site.NewRenderer(s.guide)
	if err != nil {
		return err
	}
	opts := site.Options{SearchEndpoint: "/api/search", BasePath: "/", Version: s.cfg.Version}
	if s.provider != nil {
		opts.ChatEndpoint = "/api/chat"
	}
	var buf bytes.Buffer
	if err := r.Page(&buf, opts); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	s.page = buf.Bytes()

	if s.index, err = json.Marshal(site.BuildSearchIndex(s.guide)); err != nil {
		return fmt.Errorf("encoding search index: %w", err)
	}
	return nil
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins: localOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{sessionHeader},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/", s.handleIndex)
	r.Get("/style.css", s.asset("text/css; charset=utf-8", site.CSS()))
	r.Get("/script.js", s.asset("application/javascript; charset=utf-8", site.JS()))
	r.Get("/search-index.json", s.handleSearchIndex)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.Get("/sections", s.handleSections)
			r.Get("/sections/{id}", s.handleSection)
			r.Get("/search", s.handleSearch)
		})
		r.Post("/chat", s.handleChat)
		r.Post("/chat/reset", s.handleReset)
	})
	r.Get("/ws/chat", s.handleWebSocket)

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Sessions returns the number of live conversations.
func (s *Server) Sessions() int {
	if s.sessions == nil {
		return 0
	}
	return s.sessions.len()
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = "127.0.0.1:8080"
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("cyanguide server listening on http://%s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
