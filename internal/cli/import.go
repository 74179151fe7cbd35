package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/crossroads-cli/crossroads/internal/export"
	"github.com/crossroads-cli/crossroads/internal/view"
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Restore a decision tree from an exported JSON document",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	snap, err := export.ParseDocument(data)
	if err != nil {
		return err
	}

	_, store, err := setup()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Restore(snap); err != nil {
		return err
	}

	cmd.Printf("Restored decision %d with %d nodes.\n\n", snap.Decision.ID, snap.Len())
	cmd.Println(view.Tree(snap))
	return nil
}
