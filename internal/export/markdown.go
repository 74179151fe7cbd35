package export

import (
	"fmt"
	"strings"

	"github.com/crossroads-cli/crossroads/internal/tree"
)

// Markdown renders a snapshot as a nested bullet list, one node per bullet,
// children indented one level deeper in creation-rank order.
func Markdown(snap *tree.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Decision Tree Export\n\n")
	fmt.Fprintf(&b, "Statement: %s\n", snap.Decision.Statement)
	if snap.Decision.Timeframe != nil {
		fmt.Fprintf(&b, "Timeframe: %d\n", *snap.Decision.Timeframe)
	}
	b.WriteString("\n")

	start := snap.Start()
	writeMarkdownNode(&b, snap, start.ID, start.Depth)
	return b.String()
}

func writeMarkdownNode(b *strings.Builder, snap *tree.Snapshot, id int64, baseDepth int) {
	n, ok := snap.Node(id)
	if !ok {
		return
	}

	indent := strings.Repeat("  ", n.Depth-baseDepth)
	fmt.Fprintf(b, "%s- **Decision (ID: %d)**: %s\n", indent, n.ID, n.Summary)

	risk, growth, emotion := "N/A", "N/A", "N/A"
	if n.Annotation != nil {
		risk, growth, emotion = n.Annotation.Risk, n.Annotation.Growth, n.Annotation.Emotion
	}
	fmt.Fprintf(b, "%s  - *Tags: %s*\n", indent, tagLine(risk, growth, emotion))

	for _, child := range snap.Children(id) {
		writeMarkdownNode(b, snap, child, baseDepth)
	}
}
