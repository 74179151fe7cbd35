// Package cli implements the crossroads command-line interface.
package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/crossroads-cli/crossroads/internal/config"
	"github.com/crossroads-cli/crossroads/internal/engine"
	"github.com/crossroads-cli/crossroads/internal/llm"
	"github.com/crossroads-cli/crossroads/internal/server"
	"github.com/crossroads-cli/crossroads/internal/tree"
)

var rootCmd = &cobra.Command{
	Use:   "crossroads",
	Short: "Explore hypothetical life decisions as bounded narrative trees",
	Long: `Crossroads grounds a life decision in your own context, expands it into a
bounded tree of hypothetical branches with risk/growth/emotion tags, and
exports the result for review.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	rootCmd.Version = server.Version
	return rootCmd.Execute()
}

// setup loads config and opens the tree store. Callers own closing it.
func setup() (*config.Config, *tree.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	store, err := tree.New(tree.Config{
		DataDir:  cfg.DataDir,
		MaxNodes: cfg.MaxNodes,
		MaxDepth: cfg.MaxDepth,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

// setupEngine builds the full stack: store, LLM collaborator, engine.
func setupEngine() (*config.Config, *tree.Store, *engine.Engine, error) {
	cfg, store, err := setup()
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, store, engine.New(store, newGenerator(cfg), cfg.SessionsDir), nil
}

func newGenerator(cfg *config.Config) *llm.Generator {
	client := llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.Model,
	})
	return llm.NewGenerator(client, cfg.SummaryBudget)
}

// reportResult prints an expansion result. Capped and degraded runs are
// warnings on a zero exit; only hard store failures become errors.
func reportResult(cmd *cobra.Command, res *engine.Result) {
	switch res.Status {
	case engine.StatusCompleted:
		cmd.Printf("Expansion complete: %d nodes created, %d annotated.\n",
			res.NodesCreated, res.Annotated)
	case engine.StatusDegraded:
		cmd.Printf("Expansion finished with caveats: %d nodes created, %d annotated.\n",
			res.NodesCreated, res.Annotated)
	case engine.StatusCapped:
		cmd.Printf("Warning: tree capped mid-expansion; %d nodes created before the cap.\n",
			res.NodesCreated)
	case engine.StatusLimitReached:
		cmd.Printf("Nothing to expand: %d nodes created.\n", res.NodesCreated)
	}
	for _, note := range res.Notes {
		cmd.Printf("  note: %s\n", note)
	}
}

func parseNodeID(args []string) (int64, error) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid node id %q", args[0])
	}
	return id, nil
}
