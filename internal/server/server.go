// Package server wires the MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools that depend on abstractions. No business
// logic lives here — only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/crossroads-cli/crossroads/internal/config"
	"github.com/crossroads-cli/crossroads/internal/engine"
	"github.com/crossroads-cli/crossroads/internal/llm"
	"github.com/crossroads-cli/crossroads/internal/prompts"
	"github.com/crossroads-cli/crossroads/internal/resources"
	"github.com/crossroads-cli/crossroads/internal/tools"
	"github.com/crossroads-cli/crossroads/internal/tree"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools registered.
//
// The returned cleanup function closes the tree store's database connection
// and must be called on shutdown (typically via defer). It is always
// non-nil and safe to call.
func New(cfg *config.Config) (*server.MCPServer, func(), error) {
	store, err := tree.New(tree.Config{
		DataDir:  cfg.DataDir,
		MaxNodes: cfg.MaxNodes,
		MaxDepth: cfg.MaxDepth,
	})
	if err != nil {
		return nil, noop, fmt.Errorf("creating tree store: %w", err)
	}

	client := llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.Model,
	})
	generator := llm.NewGenerator(client, cfg.SummaryBudget)
	eng := engine.New(store, generator, cfg.SessionsDir)

	s := server.NewMCPServer(
		"crossroads",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	launchTool := tools.NewLaunchTool(eng)
	s.AddTool(launchTool.Definition(), launchTool.Handle)

	expandTool := tools.NewExpandTool(eng)
	s.AddTool(expandTool.Definition(), expandTool.Handle)

	showTool := tools.NewShowTool(store)
	s.AddTool(showTool.Definition(), showTool.Handle)

	exportTool := tools.NewExportTool(store, cfg.SessionsDir)
	s.AddTool(exportTool.Definition(), exportTool.Handle)

	searchTool := tools.NewSearchTool(store)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	explorePrompt := prompts.NewExplorePrompt()
	s.AddPrompt(explorePrompt.Definition(), explorePrompt.Handle)

	reviewPrompt := prompts.NewReviewPrompt()
	s.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)

	resourceHandler := resources.NewHandler(store)
	s.AddResource(resourceHandler.DecisionsResource(), resourceHandler.HandleDecisions)
	s.AddResourceTemplate(resourceHandler.TreeTemplate(), resourceHandler.HandleTree)

	cleanup := func() { _ = store.Close() }
	return s, cleanup, nil
}

func noop() {}

func serverInstructions() string {
	return `Crossroads explores hypothetical life decisions as bounded narrative trees.

Workflow:
1. decision_launch — ground a decision in context and grow the first levels.
2. tree_expand — add further generations beneath any node.
3. tree_show — render a subtree with its risk/growth/emotion tags.
4. tree_export — write markdown, mermaid, or a re-importable document.
5. tree_search — find branches by summary text across all trees.

Trees are hard-capped by node count and depth; a capped expansion is a
notice, not a failure.`
}
