package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search across branch summaries",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var searchLimit int

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	_, store, err := setup()
	if err != nil {
		return err
	}
	defer store.Close()

	hits, err := store.Search(strings.Join(args, " "), searchLimit)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		cmd.Println("No matching branches.")
		return nil
	}

	for _, hit := range hits {
		cmd.Printf("node %d (decision %d, depth %d): %s\n",
			hit.ID, hit.DecisionID, hit.Depth, hit.Summary)
	}
	return nil
}
