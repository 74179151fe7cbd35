package cli

import (
	"github.com/spf13/cobra"

	"github.com/crossroads-cli/crossroads/internal/view"
)

var showCmd = &cobra.Command{
	Use:   "show <node-id>",
	Short: "Render the tree below a node in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var (
	showContext bool
	showSummary bool
)

func init() {
	showCmd.Flags().BoolVar(&showContext, "context", false, "also print the decision's context answers")
	showCmd.Flags().BoolVar(&showSummary, "summary", false, "ask the model for a one-paragraph summary of the context")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseNodeID(args)
	if err != nil {
		return err
	}

	cfg, store, err := setup()
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.Subtree(id)
	if err != nil {
		return err
	}

	if showContext || showSummary {
		blocks, err := store.Context(snap.Decision.ID)
		if err != nil {
			return err
		}
		if showContext {
			cmd.Println(view.ContextSummary(blocks))
			cmd.Println()
		}
		if showSummary {
			summary, err := newGenerator(cfg).Summarise(cmd.Context(), blocks)
			if err != nil {
				return err
			}
			cmd.Println(summary)
			cmd.Println()
		}
	}
	cmd.Println(view.Tree(snap))
	return nil
}
