// Package view renders tree snapshots for the terminal.
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/crossroads-cli/crossroads/internal/tree"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	idStyle      = lipgloss.NewStyle().Bold(true)
	tagStyle     = lipgloss.NewStyle().Italic(true).Faint(true)
	skippedStyle = lipgloss.NewStyle().Faint(true)
	connectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Tree renders a snapshot as a styled terminal tree, children in creation
// order with box-drawing connectors.
func Tree(snap *tree.Snapshot) string {
	var b strings.Builder

	title := fmt.Sprintf("🌳 Decision tree for: %s", snap.Decision.Statement)
	if snap.Decision.Timeframe != nil {
		title += fmt.Sprintf(" (%d)", *snap.Decision.Timeframe)
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")

	start := snap.Start()
	writeNode(&b, snap, start.ID, "", true, true)
	return b.String()
}

func writeNode(b *strings.Builder, snap *tree.Snapshot, id int64, prefix string, last, isStart bool) {
	n, ok := snap.Node(id)
	if !ok {
		return
	}

	connector := "├── "
	childPrefix := prefix + "│   "
	if last {
		connector = "└── "
		childPrefix = prefix + "    "
	}
	if isStart {
		connector = ""
		childPrefix = ""
	}

	fmt.Fprintf(b, "%s%s%s %s\n",
		prefix, connectStyle.Render(connector),
		idStyle.Render(fmt.Sprintf("[%d]", n.ID)), n.Summary)

	if n.Annotation != nil {
		a := n.Annotation
		tags := fmt.Sprintf("Risk: %s · Growth: %s · Emotion: %s", a.Risk, a.Growth, a.Emotion)
		fmt.Fprintf(b, "%s%s\n", childPrefix, tagStyle.Render(tags))
	}

	children := snap.Children(id)
	for i, child := range children {
		writeNode(b, snap, child, childPrefix, i == len(children)-1, false)
	}
}

// ContextSummary renders a decision's context blocks, marking skipped
// domains instead of hiding them.
func ContextSummary(blocks []tree.ContextBlock) string {
	if len(blocks) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Context"))
	b.WriteString("\n")
	for _, block := range blocks {
		label := strings.ReplaceAll(block.Domain, "_", " ")
		if block.Skipped {
			fmt.Fprintf(&b, "  %s: %s\n", label, skippedStyle.Render("(skipped)"))
			continue
		}
		fmt.Fprintf(&b, "  %s: %s\n", label, block.Text)
	}
	return b.String()
}
