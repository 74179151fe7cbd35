// Crossroads explores hypothetical life decisions as bounded narrative
// trees: ground a decision in your own context, branch it a few levels
// deep with risk/growth/emotion tags, and export the result.
//
// Usage:
//
//	crossroads launch "quit my job and go freelance in 2026"
//	crossroads show 1
//	crossroads serve    # expose the engine over MCP (stdio)
package main

import (
	"os"

	"github.com/crossroads-cli/crossroads/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
