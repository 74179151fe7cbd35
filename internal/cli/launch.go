package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/crossroads-cli/crossroads/internal/engine"
	"github.com/crossroads-cli/crossroads/internal/export"
	"github.com/crossroads-cli/crossroads/internal/interview"
	"github.com/crossroads-cli/crossroads/internal/tree"
	"github.com/crossroads-cli/crossroads/internal/view"
)

var launchCmd = &cobra.Command{
	Use:   "launch <statement>",
	Short: "Interview for context, create a decision and expand its tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runLaunch,
}

var (
	launchDepth    int
	launchChildren int
	launchYes      bool
	launchExport   string
)

func init() {
	launchCmd.Flags().IntVarP(&launchDepth, "depth", "d", 2, "levels to expand below the root")
	launchCmd.Flags().IntVarP(&launchChildren, "children", "c", 2, "branches per node")
	launchCmd.Flags().BoolVarP(&launchYes, "yes", "y", false, "skip the interview and launch with empty context")
	launchCmd.Flags().StringVarP(&launchExport, "export", "e", "", "also export the tree: markdown, mermaid or document")
	rootCmd.AddCommand(launchCmd)
}

func runLaunch(cmd *cobra.Command, args []string) error {
	cfg, store, eng, err := setupEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	statement := args[0]

	var entries []tree.ContextEntry
	if !launchYes {
		entries, err = interview.Collect(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
	}

	var timeframe *int
	if year, ok := interview.FindYear(statement); ok {
		timeframe = &year
	}

	root, res, err := eng.Launch(cmd.Context(), engine.LaunchParams{
		Statement: statement,
		Timeframe: timeframe,
		Context:   entries,
		Depth:     launchDepth,
		Children:  launchChildren,
	})
	if err != nil {
		return err
	}

	cmd.Printf("Decision %d created (root node %d).\n", root.DecisionID, root.ID)
	reportResult(cmd, res)

	snap, err := store.Subtree(root.ID)
	if err != nil {
		return err
	}
	cmd.Println()
	cmd.Println(view.Tree(snap))

	if launchExport != "" {
		format, err := export.ParseFormat(launchExport)
		if err != nil {
			return err
		}
		data, err := export.Render(snap, format)
		if err != nil {
			return err
		}
		path := defaultExportPath(cfg.SessionsDir, root.ID, format)
		if err := os.MkdirAll(cfg.SessionsDir, 0700); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return err
		}
		cmd.Printf("Exported to %s\n", path)
	}
	return nil
}
