package cli

import (
	"github.com/spf13/cobra"
)

var expandCmd = &cobra.Command{
	Use:   "expand <node-id>",
	Short: "Expand the tree below a node",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpand,
}

var branchCmd = &cobra.Command{
	Use:   "branch <node-id>",
	Short: "Grow one level of branches below a single node",
	Args:  cobra.ExactArgs(1),
	RunE:  runBranch,
}

var (
	expandDepth    int
	expandChildren int
	branchChildren int
)

func init() {
	expandCmd.Flags().IntVarP(&expandDepth, "depth", "d", 1, "levels to expand below the node")
	expandCmd.Flags().IntVarP(&expandChildren, "children", "c", 2, "branches per node")
	branchCmd.Flags().IntVarP(&branchChildren, "children", "c", 2, "branches to grow")
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(branchCmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	return expandBelow(cmd, args, expandDepth, expandChildren)
}

func runBranch(cmd *cobra.Command, args []string) error {
	return expandBelow(cmd, args, 1, branchChildren)
}

func expandBelow(cmd *cobra.Command, args []string, depth, children int) error {
	id, err := parseNodeID(args)
	if err != nil {
		return err
	}

	_, store, eng, err := setupEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := eng.Expand(cmd.Context(), id, depth, children)
	if err != nil {
		return err
	}
	reportResult(cmd, res)
	return nil
}
