package export

import (
	"encoding/json"
	"fmt"

	"github.com/crossroads-cli/crossroads/internal/tree"
)

// DocumentVersion tags the structured export schema.
const DocumentVersion = "1"

// Document is the structured export: the full node schema, re-importable
// into an identical tree. It deliberately carries no export timestamp —
// exporting an unchanged subtree twice must be byte-identical.
type Document struct {
	Version  string              `json:"version"`
	Decision tree.Decision       `json:"decision"`
	Context  []tree.ContextBlock `json:"context"`
	Nodes    []tree.BranchNode   `json:"nodes"`
}

// DocumentBytes renders a snapshot as the JSON document format.
func DocumentBytes(snap *tree.Snapshot) ([]byte, error) {
	doc := Document{
		Version:  DocumentVersion,
		Decision: snap.Decision,
		Context:  snap.Context,
		Nodes:    snap.Nodes,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: marshal document: %w", err)
	}
	return append(data, '\n'), nil
}

// ParseDocument reads a JSON document back into a snapshot, validating the
// tree invariants it claims. The result can be handed to the store's
// Restore to reconstruct the original tree, IDs included.
func ParseDocument(data []byte) (*tree.Snapshot, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("export: parse document: %w", err)
	}
	if doc.Version != DocumentVersion {
		return nil, fmt.Errorf("export: unsupported document version %q", doc.Version)
	}

	snap, err := tree.NewSnapshot(doc.Decision, doc.Context, doc.Nodes)
	if err != nil {
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Render renders a snapshot in the given format.
func Render(snap *tree.Snapshot, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return []byte(Markdown(snap)), nil
	case FormatMermaid:
		return []byte(Mermaid(snap)), nil
	case FormatDocument:
		return DocumentBytes(snap)
	}
	return nil, fmt.Errorf("export: unknown format %q", format)
}
