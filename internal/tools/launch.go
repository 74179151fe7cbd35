package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/crossroads-cli/crossroads/internal/engine"
	"github.com/crossroads-cli/crossroads/internal/interview"
	"github.com/crossroads-cli/crossroads/internal/tree"
)

// LaunchTool handles the decision_launch MCP tool: create a grounded
// decision root and expand it into a tree in one call.
type LaunchTool struct {
	eng *engine.Engine
}

// NewLaunchTool creates a LaunchTool.
func NewLaunchTool(eng *engine.Engine) *LaunchTool {
	return &LaunchTool{eng: eng}
}

// Definition returns the MCP tool definition for decision_launch.
func (t *LaunchTool) Definition() mcp.Tool {
	return mcp.NewTool("decision_launch",
		mcp.WithDescription(
			"Start exploring a hypothetical life decision. Creates a decision root grounded in the "+
				"given context and expands it into a bounded tree of narrative branches with risk/growth/emotion tags.",
		),
		mcp.WithString("statement",
			mcp.Required(),
			mcp.Description("The decision to explore (e.g. 'Move to Berlin in 2023')"),
		),
		mcp.WithNumber("timeframe",
			mcp.Description("Year the decision takes place. Detected from the statement when omitted."),
		),
		mcp.WithString("career", mcp.Description("Career context, or 'skip' to decline")),
		mcp.WithString("personal_life", mcp.Description("Personal life context, or 'skip' to decline")),
		mcp.WithString("finances", mcp.Description("Financial context, or 'skip' to decline")),
		mcp.WithString("mental_state", mcp.Description("Current mental state, or 'skip' to decline")),
		mcp.WithString("meta_notes", mcp.Description("Anything else worth knowing, or 'skip' to decline")),
		mcp.WithNumber("depth", mcp.Description("Levels to expand (default 2, max 3)")),
		mcp.WithNumber("children", mcp.Description("Branches per node (default 2)")),
	)
}

// Handle processes the decision_launch tool call.
func (t *LaunchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	statement := strings.TrimSpace(req.GetString("statement", ""))
	if statement == "" {
		return mcp.NewToolResultError("'statement' is required"), nil
	}

	var timeframe *int
	if y := intArg(req, "timeframe", 0); y != 0 {
		timeframe = &y
	} else if y, ok := interview.FindYear(statement); ok {
		timeframe = &y
	}

	var entries []tree.ContextEntry
	for _, domain := range tree.Domains() {
		answer, ok := req.GetArguments()[domain].(string)
		if !ok {
			continue // not asked
		}
		entries = append(entries, tree.ContextEntry{
			Domain:  domain,
			Text:    answerOrEmpty(answer),
			Skipped: strings.EqualFold(strings.TrimSpace(answer), interview.SkipAnswer),
		})
	}

	root, res, err := t.eng.Launch(ctx, engine.LaunchParams{
		Statement: statement,
		Timeframe: timeframe,
		Context:   entries,
		Depth:     intArg(req, "depth", 2),
		Children:  intArg(req, "children", 2),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("launch failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Decision tree created.\nRoot node ID: %d\n%s", root.ID, describeResult(res))), nil
}

func answerOrEmpty(answer string) string {
	if strings.EqualFold(strings.TrimSpace(answer), interview.SkipAnswer) {
		return ""
	}
	return strings.TrimSpace(answer)
}

// describeResult formats an expansion result for tool output.
func describeResult(res *engine.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Outcome: %s\nNodes created: %d, annotated: %d",
		res.Status, res.NodesCreated, res.Annotated)
	for _, note := range res.Notes {
		fmt.Fprintf(&b, "\n- %s", note)
	}
	return b.String()
}
