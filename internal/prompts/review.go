package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// ReviewPrompt handles the review-tree MCP prompt.
// It instructs the AI to read and present an existing decision tree.
type ReviewPrompt struct{}

// NewReviewPrompt creates a ReviewPrompt.
func NewReviewPrompt() *ReviewPrompt {
	return &ReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("review-tree",
		mcp.WithPromptDescription(
			"Review an existing decision tree. "+
				"Shows the branches explored so far, their tags, "+
				"and which paths are still unexpanded.",
		),
		mcp.WithArgument("node_id",
			mcp.ArgumentDescription("Root node of the tree to review"),
		),
	)
}

// Handle processes the review-tree prompt request.
func (p *ReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	nodeID := ""
	if args := req.Params.Arguments; args != nil {
		nodeID = args["node_id"]
	}

	instruction := "Please read the `crossroads://decisions` resource to list my decision trees, " +
		"then pick the most recent one and run `tree_show` on its root.\n\n"
	if nodeID != "" {
		instruction = "Please run `tree_show` with node_id=" + nodeID + ".\n\n"
	}

	return &mcp.GetPromptResult{
		Description: "Review a decision tree",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					instruction +
						"Then:\n" +
						"1. Summarize the tree in a clear, visual format\n" +
						"2. Point out the highest-risk and highest-growth branches by their tags\n" +
						"3. Note any branches without children yet, in case I want to expand them\n" +
						"4. Tell me which path you would explore next and why",
				),
			},
		},
	}, nil
}
