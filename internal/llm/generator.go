package llm

import (
	"context"
	"fmt"

	"github.com/crossroads-cli/crossroads/internal/tree"
)

// GenerateRequest carries the inputs for one branch-generation call.
type GenerateRequest struct {
	ParentSummary string
	Context       []tree.ContextBlock
	Depth         int
	Count         int
	// Hint is an extra prompt instruction for the retry pass.
	Hint string
}

// Generator is the collaborator-facing adapter: it turns store data into
// prompts, and model output into clean, budget-truncated summaries and
// normalized annotations.
type Generator struct {
	client Client
	budget int
}

// NewGenerator wraps a client. budget is the per-summary character budget
// applied before anything reaches storage.
func NewGenerator(client Client, budget int) *Generator {
	return &Generator{client: client, budget: budget}
}

// Generate requests count candidate child summaries for a parent summary.
// Oversized summaries are truncated here, not at export time.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) ([]string, error) {
	prompt := BranchPrompt(FormatContext(req.Context), req.ParentSummary, req.Count, req.Hint)

	content, err := g.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("llm: generate branches: %w", err)
	}

	branches, err := ParseBranches(content)
	if err != nil {
		return nil, err
	}
	if len(branches) > req.Count {
		branches = branches[:req.Count]
	}
	for i, b := range branches {
		branches[i] = TruncateSummary(b, g.budget)
	}
	return branches, nil
}

// Annotate requests the fixed-shape tag set for a summary. Labels outside
// the vocabulary come back as Unknown rather than as errors.
func (g *Generator) Annotate(ctx context.Context, summary string) (tree.Annotation, error) {
	content, err := g.client.Complete(ctx, AnnotatePrompt(summary))
	if err != nil {
		return tree.Annotation{}, fmt.Errorf("llm: annotate: %w", err)
	}

	risk, growth, emotion, err := ParseAnnotation(content)
	if err != nil {
		return tree.Annotation{}, err
	}
	return tree.Annotation{Risk: risk, Growth: growth, Emotion: emotion}, nil
}

// Summarise condenses a decision's context blocks into one situation summary.
func (g *Generator) Summarise(ctx context.Context, blocks []tree.ContextBlock) (string, error) {
	if len(blocks) == 0 {
		return "", fmt.Errorf("llm: summarise: no context blocks")
	}

	content, err := g.client.Complete(ctx, SummaryPrompt(FormatContext(blocks)))
	if err != nil {
		return "", fmt.Errorf("llm: summarise: %w", err)
	}
	return TruncateSummary(content, g.budget), nil
}
