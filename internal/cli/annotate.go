package cli

import (
	"github.com/spf13/cobra"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate <node-id>",
	Short: "Tag a branch with risk, growth and emotion labels",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	id, err := parseNodeID(args)
	if err != nil {
		return err
	}

	cfg, store, err := setup()
	if err != nil {
		return err
	}
	defer store.Close()

	node, err := store.Node(id)
	if err != nil {
		return err
	}

	ann, err := newGenerator(cfg).Annotate(cmd.Context(), node.Summary)
	if err != nil {
		return err
	}
	if err := store.AttachAnnotation(id, ann.Risk, ann.Growth, ann.Emotion); err != nil {
		return err
	}

	cmd.Printf("Node %d tagged: risk=%s growth=%s emotion=%s\n",
		id, ann.Risk, ann.Growth, ann.Emotion)
	return nil
}
