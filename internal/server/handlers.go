package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/cyanguide/internal/guide"
	"github.com/ziadkadry99/cyanguide/internal/search"
)

const (
	defaultSearchLimit = 8
	maxSearchLimit     = 50
)

// outlineEntry is one row of GET /api/sections.
type outlineEntry struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Path   string `json:"path"`
	Parent string `json:"parent,omitempty"`
	Depth  int    `json:"depth"`
}

// sectionResponse is the JSON response for a single section.
type sectionResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Path        string             `json:"path"`
	Parent      string             `json:"parent,omitempty"`
	Body        string             `json:"body"`
	CodeSamples []guide.CodeSample `json:"code_samples"`
	Children    []string           `json:"children"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(s.page)
}

func (s *Server) asset(contentType, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Write([]byte(body))
	}
}

func (s *Server) handleSearchIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(s.index)
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	entries := []outlineEntry{}
	s.guide.Walk(func(sec *guide.Section, depth int) bool {
		entries = append(entries, outlineEntry{
			ID:     sec.ID,
			Title:  sec.Title,
			Path:   s.guide.Path(sec.ID),
			Parent: s.guide.Parent(sec.ID),
			Depth:  depth,
		})
		return true
	})
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sec, err := s.guide.Find(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	resp := sectionResponse{
		ID:          sec.ID,
		Title:       sec.Title,
		Path:        s.guide.Path(sec.ID),
		Parent:      s.guide.Parent(sec.ID),
		Body:        sec.Body,
		CodeSamples: sec.CodeSamples,
		Children:    []string{},
	}
	if resp.CodeSamples == nil {
		resp.CodeSamples = []guide.CodeSample{}
	}
	for _, c := range sec.Children {
		resp.Children = append(resp.Children, c.ID)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit := defaultSearchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxSearchLimit)
	}

	results := s.searcher.Search(r.Context(), q, limit)
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":    q,
		"semantic": s.searcher.Semantic(),
		"results":  results,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
