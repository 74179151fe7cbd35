package cli

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every decision tree in the store",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	_, store, err := setup()
	if err != nil {
		return err
	}
	defer store.Close()

	decisions, err := store.Decisions()
	if err != nil {
		return err
	}
	if len(decisions) == 0 {
		cmd.Println("No decision trees yet. Start one with: crossroads launch \"...\"")
		return nil
	}

	for _, d := range decisions {
		count, err := store.NodeCount(d.ID)
		if err != nil {
			return err
		}
		root, err := store.Root(d.ID)
		if err != nil {
			return err
		}
		cmd.Printf("%d: %s (%d nodes, root %d, created %s)\n",
			d.ID, d.Statement, count, root.ID, d.CreatedAt)
	}
	return nil
}
