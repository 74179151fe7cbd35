package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crossroads-cli/crossroads/internal/tree"
)

// Mermaid renders a snapshot as a top-down Mermaid graph: one node line per
// branch, one edge line per parent→child link. Lines are sorted so the
// output is stable regardless of traversal order.
func Mermaid(snap *tree.Snapshot) string {
	var lines []string

	snap.Walk(func(n tree.BranchNode) {
		risk, growth, emotion := "N/A", "N/A", "N/A"
		if n.Annotation != nil {
			risk, growth, emotion = n.Annotation.Risk, n.Annotation.Growth, n.Annotation.Emotion
		}

		label := fmt.Sprintf("%s<br/>%s", sanitizeMermaid(n.Summary), tagLine(risk, growth, emotion))
		lines = append(lines, fmt.Sprintf(`    N%d["%s"]`, n.ID, label))

		for _, child := range snap.Children(n.ID) {
			lines = append(lines, fmt.Sprintf("    N%d --> N%d", n.ID, child))
		}
	})

	sort.Strings(lines)
	return "graph TD\n" + strings.Join(lines, "\n") + "\n"
}

// sanitizeMermaid escapes characters that would break a quoted Mermaid label.
func sanitizeMermaid(s string) string {
	s = strings.ReplaceAll(s, `"`, "#quot;")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
