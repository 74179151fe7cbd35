// Package resources implements MCP resource handlers for decision trees.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (crossroads://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/crossroads-cli/crossroads/internal/export"
	"github.com/crossroads-cli/crossroads/internal/tree"
)

// Handler manages the crossroads resource endpoints.
type Handler struct {
	store *tree.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store *tree.Store) *Handler {
	return &Handler{store: store}
}

// DecisionsResource returns the MCP resource definition for the decision list.
func (h *Handler) DecisionsResource() mcp.Resource {
	return mcp.NewResource(
		"crossroads://decisions",
		"Decision Trees",
		mcp.WithResourceDescription("Every decision tree in the store, newest first, with node counts"),
		mcp.WithMIMEType("application/json"),
	)
}

// decisionListing is one entry of the decisions resource.
type decisionListing struct {
	tree.Decision
	Nodes int `json:"nodes"`
}

// HandleDecisions returns the decision list as JSON.
func (h *Handler) HandleDecisions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	decisions, err := h.store.Decisions()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	listings := make([]decisionListing, 0, len(decisions))
	for _, d := range decisions {
		count, err := h.store.NodeCount(d.ID)
		if err != nil {
			return errorResource(req.Params.URI, err.Error()), nil
		}
		listings = append(listings, decisionListing{Decision: d, Nodes: count})
	}

	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling decision list: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// TreeTemplate returns the templated resource for a single tree document,
// addressed as crossroads://tree/{decision-id}.
func (h *Handler) TreeTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		"crossroads://tree/{id}",
		"Decision Tree Document",
		mcp.WithTemplateDescription("The full exported document of one decision tree, importable as-is"),
		mcp.WithTemplateMIMEType("application/json"),
	)
}

// HandleTree serves one decision's full tree as the structured document.
func (h *Handler) HandleTree(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	raw := strings.TrimPrefix(req.Params.URI, "crossroads://tree/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return errorResource(req.Params.URI, fmt.Sprintf("invalid decision id %q", raw)), nil
	}

	root, err := h.store.Root(id)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	snap, err := h.store.Subtree(root.ID)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	data, err := export.DocumentBytes(snap)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
