package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/crossroads-cli/crossroads/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export <node-id> [path]",
	Short: "Export the tree below a node to a file",
	Long: `Export renders the subtree rooted at a node as Markdown, a Mermaid
graph, or a structured JSON document. The JSON document can be imported
back with "crossroads import" without losing anything.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExport,
}

var exportFormat string

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "markdown", "output format: markdown, mermaid or document")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	id, err := parseNodeID(args)
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(exportFormat)
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
	data, err := export.Render(snap, format)
	if err != nil {
		return err
	}

	path := defaultExportPath(cfg.SessionsDir, id, format)
	if len(args) == 2 {
		path = args[1]
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}

	cmd.Printf("Exported %d nodes to %s\n", snap.Len(), path)
	return nil
}

func defaultExportPath(sessionsDir string, nodeID int64, format export.Format) string {
	name := fmt.Sprintf("tree_%d_%s.%s", nodeID, time.Now().Format("20060102_150405"), format.Ext())
	return filepath.Join(sessionsDir, name)
}
