package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/crossroads-cli/crossroads/internal/export"
	"github.com/crossroads-cli/crossroads/internal/tree"
)

// ShowTool handles the tree_show MCP tool.
type ShowTool struct {
	store *tree.Store
}

// NewShowTool creates a ShowTool.
func NewShowTool(store *tree.Store) *ShowTool {
	return &ShowTool{store: store}
}

// Definition returns the MCP tool definition for tree_show.
func (t *ShowTool) Definition() mcp.Tool {
	return mcp.NewTool("tree_show",
		mcp.WithDescription("Render a decision subtree as an indented Markdown tree with its tags."),
		mcp.WithNumber("node_id",
			mcp.Required(),
			mcp.Description("The node to render from (root node ID for the whole tree)"),
		),
	)
}

// Handle processes the tree_show tool call.
func (t *ShowTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeID := intArg(req, "node_id", 0)
	if nodeID == 0 {
		return mcp.NewToolResultError("'node_id' is required"), nil
	}

	snap, err := t.store.Subtree(int64(nodeID))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("show failed: %v", err)), nil
	}

	return mcp.NewToolResultText(export.Markdown(snap)), nil
}
