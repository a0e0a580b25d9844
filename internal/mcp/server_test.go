package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/cyanguide/internal/guide"
	"github.com/ziadkadry99/cyanguide/internal/llm"
)

func newTestServer(t *testing.T, provider llm.Provider, opts ...Option) *Server {
	t.Helper()
	g, err := guide.Default()
	if err != nil {
		t.Fatalf("loading guide: %v", err)
	}
	return NewServer(g, nil, provider, llm.SessionConfig{SystemPrompt: g.SystemPrompt()}, opts...)
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// extractText gets the text content from a CallToolResult.
func extractText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		tool     mcp.Tool
		wantName string
	}{
		{listSectionsTool, "list_sections"},
		{getSectionTool, "get_section"},
		{searchGuideTool, "search_guide"},
		{askGuideTool, "ask_guide"},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv := newTestServer(t, nil, WithTimeout(time.Second))
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.searcher == nil {
		t.Error("searcher should default to keyword search")
	}
	if srv.timeout != time.Second {
		t.Errorf("timeout = %v", srv.timeout)
	}
}

func TestHandleListSections(t *testing.T) {
	srv := newTestServer(t, nil)
	result, err := srv.handleListSections(context.Background(), call(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := extractText(result)
	for _, want := range []string{"# Cyan Builder Guide", "- Overview (#overview)", "  - Host System (#host-system)"} {
		if !strings.Contains(text, want) {
			t.Errorf("outline missing %q:\n%s", want, text)
		}
	}
}

func TestHandleGetSection(t *testing.T) {
	srv := newTestServer(t, nil)
	ctx := context.Background()

	t.Run("existing section", func(t *testing.T) {
		result, err := srv.handleGetSection(ctx, call(map[string]any{"id": "kernel-build"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := extractText(result)
		for _, want := range []string{"# 5. Kernel Build (Optional)", "Path: kernel-build", "update_kernel.sh --board=cyan", "## Subsections", "(#manual-config)"} {
			if !strings.Contains(text, want) {
				t.Errorf("section missing %q", want)
			}
		}
	})

	t.Run("nested path", func(t *testing.T) {
		result, _ := srv.handleGetSection(ctx, call(map[string]any{"id": "host-system"}))
		if !strings.Contains(extractText(result), "Path: prerequisites/host-system") {
			t.Errorf("unexpected text: %s", extractText(result))
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		result, err := srv.handleGetSection(ctx, call(map[string]any{"id": "nope"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for unknown id")
		}
	})

	t.Run("missing id", func(t *testing.T) {
		result, _ := srv.handleGetSection(ctx, call(map[string]any{}))
		if !result.IsError {
			t.Error("expected error for missing id")
		}
	})
}

func TestHandleSearchGuide(t *testing.T) {
	srv := newTestServer(t, nil)
	ctx := context.Background()

	t.Run("basic search", func(t *testing.T) {
		result, err := srv.handleSearchGuide(ctx, call(map[string]any{"query": "accept licenses", "limit": 2.0}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if !strings.Contains(extractText(result), "Result 1") {
			t.Errorf("expected results, got %s", extractText(result))
		}
	})

	t.Run("no match", func(t *testing.T) {
		result, _ := srv.handleSearchGuide(ctx, call(map[string]any{"query": "zzyzx"}))
		if result.IsError || extractText(result) != "No results found." {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("missing query", func(t *testing.T) {
		result, _ := srv.handleSearchGuide(ctx, call(map[string]any{}))
		if !result.IsError {
			t.Error("expected error for missing query")
		}
	})
}

func TestHandleAskGuide(t *testing.T) {
	ctx := context.Background()

	t.Run("streams full answer", func(t *testing.T) {
		p := llm.NewScriptedProvider([]string{"Use ", "cros_sdk."}, nil)
		srv := newTestServer(t, p)
		result, err := srv.handleAskGuide(ctx, call(map[string]any{"question": "How do I enter the chroot?"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError || extractText(result) != "Use cros_sdk." {
			t.Errorf("unexpected result: %q", extractText(result))
		}
		if got := p.Sessions()[0].Config.SystemPrompt; got == "" {
			t.Error("session should carry the system prompt")
		}
	})

	t.Run("calls are independent", func(t *testing.T) {
		p := llm.NewFakeProvider()
		srv := newTestServer(t, p)
		srv.handleAskGuide(ctx, call(map[string]any{"question": "one"}))
		srv.handleAskGuide(ctx, call(map[string]any{"question": "two"}))
		if n := len(p.Sessions()); n != 2 {
			t.Errorf("expected 2 sessions, got %d", n)
		}
	})

	t.Run("remote failure", func(t *testing.T) {
		srv := newTestServer(t, llm.NewScriptedProvider([]string{"partial"}, errors.New("reset")))
		result, _ := srv.handleAskGuide(ctx, call(map[string]any{"question": "q"}))
		if !result.IsError {
			t.Error("expected error result")
		}
	})

	t.Run("timeout", func(t *testing.T) {
		p := llm.NewScriptedProvider([]string{"slow"}, nil)
		p.Delay = time.Minute
		srv := newTestServer(t, p, WithTimeout(20*time.Millisecond))
		result, _ := srv.handleAskGuide(ctx, call(map[string]any{"question": "q"}))
		if !result.IsError {
			t.Error("expected timeout error result")
		}
	})

	t.Run("no provider", func(t *testing.T) {
		result, _ := newTestServer(t, nil).handleAskGuide(ctx, call(map[string]any{"question": "q"}))
		if !result.IsError {
			t.Error("expected error without provider")
		}
	})

	t.Run("blank question", func(t *testing.T) {
		result, _ := newTestServer(t, llm.NewFakeProvider()).handleAskGuide(ctx, call(map[string]any{"question": "  "}))
		if !result.IsError {
			t.Error("expected error for blank question")
		}
	})
}
