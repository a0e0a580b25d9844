package mcp

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/cyanguide/internal/guide"
	"github.com/ziadkadry99/cyanguide/internal/llm"
	"github.com/ziadkadry99/cyanguide/internal/search"
)

const defaultSearchLimit = 5

func (s *Server) handleListSections(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", s.guide.Title()))
	sb.WriteString(s.guide.Outline())
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleGetSection(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	sec, err := s.guide.Find(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("No section with id %q. Use list_sections to see valid ids.", id)), nil
	}
	return mcp.NewToolResultText(formatSection(s.guide, sec)), nil
}

func (s *Server) handleSearchGuide(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", defaultSearchLimit)
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	return mcp.NewToolResultText(search.FormatResults(s.searcher.Search(ctx, query, limit))), nil
}

func (s *Server) handleAskGuide(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil || strings.TrimSpace(question) == "" {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}
	if s.provider == nil {
		return mcp.NewToolResultError("No LLM provider configured. Set one with `cyanguide init`."), nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	// Each call is its own conversation.
	client := llm.NewClient(s.provider, s.session)
	var sb strings.Builder
	for fragment, err := range client.SendStreaming(ctx, question) {
		if err != nil {
			log.Printf("mcp: ask_guide: %v", err)
			return mcp.NewToolResultError(fmt.Sprintf("assistant unavailable: %v", err)), nil
		}
		sb.WriteString(fragment)
	}
	if err := ctx.Err(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("assistant unavailable: %v", err)), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatSection renders a section as Markdown for agent consumption.
func formatSection(g *guide.Guide, sec *guide.Section) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", sec.Title))
	sb.WriteString(fmt.Sprintf("Anchor: #%s\nPath: %s\n\n", sec.ID, g.Path(sec.ID)))

	if body := strings.TrimSpace(sec.Body); body != "" {
		sb.WriteString(body)
		sb.WriteString("\n\n")
	}
	for _, c := range sec.CodeSamples {
		if c.Description != "" {
			sb.WriteString(fmt.Sprintf("%s:\n", c.Description))
		}
		sb.WriteString(fmt.Sprintf("```%s\n%s\n```\n\n", c.Language, strings.TrimRight(c.Code, "\n")))
	}
	if len(sec.Children) > 0 {
		sb.WriteString("## Subsections\n\n")
		for _, c := range sec.Children {
			sb.WriteString(fmt.Sprintf("- %s (#%s)\n", c.Title, c.ID))
		}
	}
	return sb.String()
}
