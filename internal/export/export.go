// Package export renders tree snapshots into their three output formats:
// an indented Markdown tree, a Mermaid graph, and a JSON document that can
// be imported back into an identical tree. Every renderer is a pure
// function over the snapshot — no store writes, no collaborator calls —
// and re-rendering an unchanged snapshot is byte-identical, since exports
// are diffed and shared.
package export

import (
	"fmt"
	"strings"
)

// Format selects an export renderer.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatMermaid  Format = "mermaid"
	FormatDocument Format = "document"
)

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md", "":
		return FormatMarkdown, nil
	case "mermaid", "mmd":
		return FormatMermaid, nil
	case "document", "doc", "json":
		return FormatDocument, nil
	}
	return "", fmt.Errorf("export: unknown format %q (want markdown, mermaid, or document)", s)
}

// Ext returns the conventional file extension for a format.
func (f Format) Ext() string {
	switch f {
	case FormatMermaid:
		return "mmd"
	case FormatDocument:
		return "json"
	default:
		return "md"
	}
}

// tagLine renders the fixed tag triple, with N/A for a missing annotation —
// an unannotated node is valid, it just has nothing to say yet.
func tagLine(risk, growth, emotion string) string {
	return fmt.Sprintf("[Risk: %s] [Growth: %s] [Emotion: %s]", risk, growth, emotion)
}
