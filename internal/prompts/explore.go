// Package prompts implements MCP prompt handlers for decision exploration.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ExplorePrompt handles the explore-decision MCP prompt.
// It guides the AI through grounding a decision and growing its tree.
type ExplorePrompt struct{}

// NewExplorePrompt creates an ExplorePrompt.
func NewExplorePrompt() *ExplorePrompt {
	return &ExplorePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ExplorePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("explore-decision",
		mcp.WithPromptDescription(
			"Explore a hypothetical life decision. "+
				"This will guide you through grounding the decision in your "+
				"current situation and expanding it into a tree of tagged branches.",
		),
		mcp.WithArgument("statement",
			mcp.ArgumentDescription("The decision to explore, e.g. 'quit my job and go freelance in 2026'"),
		),
		mcp.WithArgument("depth",
			mcp.ArgumentDescription("How many levels of consequences to generate. Default: 2"),
		),
	)
}

// Handle processes the explore-decision prompt request.
func (p *ExplorePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	statement := "a decision I'm weighing"
	if args := req.Params.Arguments; args != nil {
		if s, ok := args["statement"]; ok && s != "" {
			statement = fmt.Sprintf("%q", s)
		}
	}

	depth := "2"
	if args := req.Params.Arguments; args != nil {
		if d, ok := args["depth"]; ok && d != "" {
			depth = d
		}
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Explore decision: %s", statement),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to explore %s as a decision tree.\n\n"+
						"Please:\n"+
						"1. Ask me about my current situation: career, personal life, finances, how I feel about it. I can skip any of these\n"+
						"2. Run `decision_launch` with my statement, my answers, and depth=%s\n"+
						"3. Show me the resulting tree with `tree_show` and walk me through the branches and their risk/growth/emotion tags\n"+
						"4. Ask whether I want to grow any branch further with `tree_expand` or save the tree with `tree_export`",
					statement, depth,
				)),
			},
		},
	}, nil
}
