package cli

import (
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <decision-id>",
	Short: "Delete all branches of a decision except its root",
	Args:  cobra.ExactArgs(1),
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	id, err := parseNodeID(args)
	if err != nil {
		return err
	}

	_, store, err := setup()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Reset(id); err != nil {
		return err
	}
	cmd.Printf("Decision %d reset to its root.\n", id)
	return nil
}
