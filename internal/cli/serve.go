package cli

import (
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/crossroads-cli/crossroads/internal/config"
	"github.com/crossroads-cli/crossroads/internal/server"
	"github.com/crossroads-cli/crossroads/internal/updater"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio transport)",
	Long: `Serve exposes the decision-tree engine over the Model Context Protocol
so AI tools can launch, expand, inspect and export trees on the user's
behalf. The transport is stdio; logs and update notices go to stderr.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	s, cleanup, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Version check prints to stderr so it can't corrupt the stdio
	// transport on stdout.
	go func() {
		result := updater.CheckVersion(server.Version)
		if result.UpdateAvailable {
			fmt.Fprintf(os.Stderr,
				"\n  📦 Update available: v%s → v%s\n"+
					"     Run: crossroads update\n"+
					"     Release: %s\n\n",
				result.CurrentVersion, result.LatestVersion, result.ReleaseURL)
		}
	}()

	return mcpserver.ServeStdio(s)
}
