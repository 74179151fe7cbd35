package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/crossroads-cli/crossroads/internal/tree"
)

// SearchTool handles the tree_search MCP tool.
type SearchTool struct {
	store *tree.Store
}

// NewSearchTool creates a SearchTool.
func NewSearchTool(store *tree.Store) *SearchTool {
	return &SearchTool{store: store}
}

// Definition returns the MCP tool definition for tree_search.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("tree_search",
		mcp.WithDescription("Full-text search across branch summaries in every decision tree."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Words to search for"),
		),
		mcp.WithNumber("limit", mcp.Description("Max results (default 10)")),
	)
}

// Handle processes the tree_search tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	hits, err := t.store.Search(query, intArg(req, "limit", 10))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText("No branches matched."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d matching branches:\n", len(hits))
	for _, h := range hits {
		fmt.Fprintf(&b, "- [%d] (decision %d, depth %d) %s\n", h.ID, h.DecisionID, h.Depth, h.Summary)
	}
	return mcp.NewToolResultText(b.String()), nil
}
