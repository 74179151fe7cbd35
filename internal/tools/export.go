package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/crossroads-cli/crossroads/internal/export"
	"github.com/crossroads-cli/crossroads/internal/tree"
)

// ExportTool handles the tree_export MCP tool.
type ExportTool struct {
	store       *tree.Store
	sessionsDir string
}

// NewExportTool creates an ExportTool writing into sessionsDir by default.
func NewExportTool(store *tree.Store, sessionsDir string) *ExportTool {
	return &ExportTool{store: store, sessionsDir: sessionsDir}
}

// Definition returns the MCP tool definition for tree_export.
func (t *ExportTool) Definition() mcp.Tool {
	return mcp.NewTool("tree_export",
		mcp.WithDescription(
			"Export a decision subtree to a file. The document format round-trips: "+
				"importing it reconstructs an identical tree.",
		),
		mcp.WithNumber("node_id",
			mcp.Required(),
			mcp.Description("The node to export from (root node ID for the whole tree)"),
		),
		mcp.WithString("format",
			mcp.Description("markdown (default), mermaid, or document"),
			mcp.Enum("markdown", "mermaid", "document"),
		),
		mcp.WithString("path",
			mcp.Description("Output file path. Defaults to a timestamped file in the sessions directory."),
		),
	)
}

// Handle processes the tree_export tool call.
func (t *ExportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeID := intArg(req, "node_id", 0)
	if nodeID == 0 {
		return mcp.NewToolResultError("'node_id' is required"), nil
	}

	format, err := export.ParseFormat(req.GetString("format", "markdown"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	snap, err := t.store.Subtree(int64(nodeID))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
	}

	data, err := export.Render(snap, format)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
	}

	path := req.GetString("path", "")
	if path == "" {
		if err := os.MkdirAll(t.sessionsDir, 0700); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("create sessions dir: %v", err)), nil
		}
		path = filepath.Join(t.sessionsDir,
			fmt.Sprintf("session_%s.%s", time.Now().Format("20060102_150405"), format.Ext()))
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("write export: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Exported %d nodes to %s", snap.Len(), path)), nil
}
