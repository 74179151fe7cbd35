package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/crossroads-cli/crossroads/internal/engine"
	"github.com/crossroads-cli/crossroads/internal/tree"
)

// ExpandTool handles the tree_expand MCP tool.
type ExpandTool struct {
	eng *engine.Engine
}

// NewExpandTool creates an ExpandTool.
func NewExpandTool(eng *engine.Engine) *ExpandTool {
	return &ExpandTool{eng: eng}
}

// Definition returns the MCP tool definition for tree_expand.
func (t *ExpandTool) Definition() mcp.Tool {
	return mcp.NewTool("tree_expand",
		mcp.WithDescription(
			"Expand additional levels beneath a node of an existing decision tree. "+
				"Nodes that already have children are descended into, never regenerated.",
		),
		mcp.WithNumber("node_id",
			mcp.Required(),
			mcp.Description("The node to expand beneath (use the root node ID for the whole tree)"),
		),
		mcp.WithNumber("depth", mcp.Description("Levels to add (default 1)")),
		mcp.WithNumber("children", mcp.Description("Branches per node (default 2)")),
	)
}

// Handle processes the tree_expand tool call.
func (t *ExpandTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeID := intArg(req, "node_id", 0)
	if nodeID == 0 {
		return mcp.NewToolResultError("'node_id' is required"), nil
	}

	res, err := t.eng.Expand(ctx, int64(nodeID), intArg(req, "depth", 1), intArg(req, "children", 2))
	if err != nil {
		if errors.Is(err, tree.ErrNotFound) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("expand failed: %v", err)), nil
	}

	return mcp.NewToolResultText(describeResult(res)), nil
}
