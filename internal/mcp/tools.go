package mcp

import "github.com/mark3labs/mcp-go/mcp"

var listSectionsTool = mcp.NewTool("list_sections",
	mcp.WithDescription("List every section of the Cyan build guide as an indented outline with anchor ids."),
)

var getSectionTool = mcp.NewTool("get_section",
	mcp.WithDescription("Get one guide section as Markdown, including its code samples and the ids of its subsections."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Section anchor id, e.g. \"kernel-build\""),
	),
)

var searchGuideTool = mcp.NewTool("search_guide",
	mcp.WithDescription("Search the build guide. Returns matching sections with a short snippet each."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Words or a question to look for"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 5)"),
	),
)

var askGuideTool = mcp.NewTool("ask_guide",
	mcp.WithDescription("Ask the build assistant a question. The assistant answers from the guide content."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("The question to ask"),
	),
)
