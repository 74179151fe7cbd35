package cli

import (
	"github.com/spf13/cobra"

	"github.com/crossroads-cli/crossroads/internal/interview"
	"github.com/crossroads-cli/crossroads/internal/tree"
	"github.com/crossroads-cli/crossroads/internal/view"

	"github.com/google/uuid"
)

var collectCmd = &cobra.Command{
	Use:   "collect <statement>",
	Short: "Interview for context and create a decision without expanding it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	_, store, err := setup()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := interview.Collect(cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	statement := args[0]
	var timeframe *int
	if year, ok := interview.FindYear(statement); ok {
		timeframe = &year
	}

	root, err := store.CreateRoot(tree.CreateRootParams{
		SessionKey: uuid.NewString(),
		Statement:  statement,
		Timeframe:  timeframe,
		Context:    entries,
	})
	if err != nil {
		return err
	}

	blocks, err := store.Context(root.DecisionID)
	if err != nil {
		return err
	}

	cmd.Printf("Decision %d created (root node %d). Expand it with:\n\n", root.DecisionID, root.ID)
	cmd.Printf("  crossroads expand %d\n\n", root.ID)
	cmd.Println(view.ContextSummary(blocks))
	return nil
}
