package mcp

import (
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/cyanguide/internal/guide"
	"github.com/ziadkadry99/cyanguide/internal/llm"
	"github.com/ziadkadry99/cyanguide/internal/search"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the build guide to agents.
type Server struct {
	guide    *guide.Guide
	searcher *search.Searcher
	provider llm.Provider
	session  llm.SessionConfig
	timeout  time.Duration
	mcp      *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithTimeout caps each ask_guide call.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// NewServer creates a new MCP server. A nil provider leaves ask_guide
// registered but answering with an error.
func NewServer(g *guide.Guide, searcher *search.Searcher, provider llm.Provider, session llm.SessionConfig, opts ...Option) *Server {
	if searcher == nil {
		searcher = search.New(g)
	}
	s := &Server{
		guide:    g,
		searcher: searcher,
		provider: provider,
		session:  session,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = server.NewMCPServer(
		"cyanguide",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listSectionsTool, s.handleListSections)
	s.mcp.AddTool(getSectionTool, s.handleGetSection)
	s.mcp.AddTool(searchGuideTool, s.handleSearchGuide)
	s.mcp.AddTool(askGuideTool, s.handleAskGuide)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
