// Package tools provides the MCP tool handlers for the decision tree engine.
//
// Each tool follows the same pattern:
// - A struct with dependencies (tree store, expansion engine) injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}
