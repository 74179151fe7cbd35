package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/crossroads-cli/crossroads/internal/engine"
	"github.com/crossroads-cli/crossroads/internal/llm"
	"github.com/crossroads-cli/crossroads/internal/tree"
)

// --- Test helpers ---

// fakeCollab is a deterministic collaborator for handler tests.
type fakeCollab struct{}

func (fakeCollab) Generate(ctx context.Context, req llm.GenerateRequest) ([]string, error) {
	out := make([]string, req.Count)
	for i := range out {
		out[i] = fmt.Sprintf("Branch %d after %q", i+1, req.ParentSummary)
	}
	return out, nil
}

func (fakeCollab) Annotate(ctx context.Context, summary string) (tree.Annotation, error) {
	return tree.Annotation{Risk: "Low", Growth: "High", Emotion: "Curious"}, nil
}

// newTestStack builds a store, engine and sessions dir in temp dirs.
func newTestStack(t *testing.T) (*engine.Engine, *tree.Store, string) {
	t.Helper()
	store, err := tree.New(tree.Config{
		DataDir:  t.TempDir(),
		MaxNodes: 50,
		MaxDepth: 3,
	})
	if err != nil {
		t.Fatalf("setup: create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	sessionsDir := t.TempDir()
	return engine.New(store, fakeCollab{}, sessionsDir), store, sessionsDir
}

func seedRoot(t *testing.T, store *tree.Store) *tree.BranchNode {
	t.Helper()
	root, err := store.CreateRoot(tree.CreateRootParams{
		SessionKey: "tools-test",
		Statement:  "Leave the city and buy a farm",
	})
	if err != nil {
		t.Fatalf("setup: create root: %v", err)
	}
	return root
}

// isErrorResult checks if the result is a tool error.
func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// --- LaunchTool ---

func TestLaunchTool_Handle_Success(t *testing.T) {
	eng, store, _ := newTestStack(t)
	tool := NewLaunchTool(eng)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{
		"statement":    "Move to Berlin in 2023",
		"career":       "Stable job at a startup",
		"mental_state": "skip",
		"depth":        float64(1),
	}

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("got error result: %s", getResultText(result))
	}

	text := getResultText(result)
	if !strings.Contains(text, "Root node ID:") {
		t.Errorf("result should name the root node, got: %s", text)
	}
	if !strings.Contains(text, "Outcome: completed") {
		t.Errorf("result should report the expansion outcome, got: %s", text)
	}

	decisions, err := store.Decisions()
	if err != nil {
		t.Fatalf("Decisions failed: %v", err)
	}
	if len(decisions) != 1 {
		t.Fatalf("got %d decisions, want 1", len(decisions))
	}
	if decisions[0].Timeframe == nil || *decisions[0].Timeframe != 2023 {
		t.Errorf("timeframe = %v, want 2023 detected from the statement", decisions[0].Timeframe)
	}

	blocks, err := store.Context(decisions[0].ID)
	if err != nil {
		t.Fatalf("Context failed: %v", err)
	}
	// Only the two offered domains were stored; unasked ones leave no row.
	if len(blocks) != 2 {
		t.Fatalf("got %d context blocks, want 2", len(blocks))
	}
	if blocks[0].Domain != tree.DomainCareer || blocks[0].Skipped ||
		blocks[0].Text != "Stable job at a startup" {
		t.Errorf("career block = %+v, want the answer verbatim", blocks[0])
	}
	if blocks[1].Domain != tree.DomainMentalState || !blocks[1].Skipped || blocks[1].Text != "" {
		t.Errorf("mental_state block = %+v, want an empty skipped row", blocks[1])
	}
}

func TestLaunchTool_Handle_MissingStatement(t *testing.T) {
	eng, _, _ := newTestStack(t)
	tool := NewLaunchTool(eng)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"career": "Something"}

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("expected error result for missing statement")
	}
	if !strings.Contains(getResultText(result), "'statement' is required") {
		t.Errorf("error should name the missing argument, got: %s", getResultText(result))
	}
}

func TestLaunchTool_Handle_ExplicitTimeframeWins(t *testing.T) {
	eng, store, _ := newTestStack(t)
	tool := NewLaunchTool(eng)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{
		"statement": "Move to Berlin in 2023",
		"timeframe": float64(2030),
		"depth":     float64(1),
	}

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("got error result: %s", getResultText(result))
	}

	decisions, err := store.Decisions()
	if err != nil {
		t.Fatalf("Decisions failed: %v", err)
	}
	if decisions[0].Timeframe == nil || *decisions[0].Timeframe != 2030 {
		t.Errorf("timeframe = %v, want the explicit 2030 over the statement's year",
			decisions[0].Timeframe)
	}
}

// --- ExpandTool ---

func TestExpandTool_Handle_Success(t *testing.T) {
	eng, store, _ := newTestStack(t)
	root := seedRoot(t, store)
	tool := NewExpandTool(eng)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{
		"node_id":  float64(root.ID),
		"depth":    float64(1),
		"children": float64(2),
	}

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("got error result: %s", getResultText(result))
	}
	if !strings.Contains(getResultText(result), "Outcome: completed") {
		t.Errorf("result should report completion, got: %s", getResultText(result))
	}

	count, err := store.NodeCount(root.DecisionID)
	if err != nil {
		t.Fatalf("NodeCount failed: %v", err)
	}
	if count != 3 {
		t.Errorf("tree has %d nodes, want 3 (root + 2 children)", count)
	}
}

func TestExpandTool_Handle_MissingNodeID(t *testing.T) {
	eng, _, _ := newTestStack(t)
	tool := NewExpandTool(eng)

	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("expected error result for missing node_id")
	}
}

func TestExpandTool_Handle_UnknownNode(t *testing.T) {
	eng, _, _ := newTestStack(t)
	tool := NewExpandTool(eng)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"node_id": float64(999)}

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("expected error result for unknown node")
	}
	if !strings.Contains(getResultText(result), "not found") {
		t.Errorf("error should say the node is missing, got: %s", getResultText(result))
	}
}

// --- ShowTool ---

func TestShowTool_Handle_RendersMarkdown(t *testing.T) {
	_, store, _ := newTestStack(t)
	root := seedRoot(t, store)
	tool := NewShowTool(store)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"node_id": float64(root.ID)}

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("got error result: %s", getResultText(result))
	}

	text := getResultText(result)
	if !strings.Contains(text, "Leave the city and buy a farm") {
		t.Errorf("render should carry the statement, got: %s", text)
	}
	if !strings.Contains(text, fmt.Sprintf("(ID: %d)", root.ID)) {
		t.Errorf("render should carry the root's ID, got: %s", text)
	}
}

func TestShowTool_Handle_MissingNodeID(t *testing.T) {
	_, store, _ := newTestStack(t)
	tool := NewShowTool(store)

	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("expected error result for missing node_id")
	}
}

// --- SearchTool ---

func TestSearchTool_Handle(t *testing.T) {
	_, store, _ := newTestStack(t)
	root := seedRoot(t, store)
	tool := NewSearchTool(store)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"query": "farm"}

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("got error result: %s", getResultText(result))
	}
	text := getResultText(result)
	if !strings.Contains(text, fmt.Sprintf("[%d]", root.ID)) {
		t.Errorf("search should find the root, got: %s", text)
	}

	req.Params.Arguments = map[string]interface{}{"query": "zeppelin"}
	result, err = tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.Contains(getResultText(result), "No branches matched") {
		t.Errorf("miss should say so, got: %s", getResultText(result))
	}
}

func TestSearchTool_Handle_MissingQuery(t *testing.T) {
	_, store, _ := newTestStack(t)
	tool := NewSearchTool(store)

	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("expected error result for missing query")
	}
}

// --- ExportTool ---

func TestExportTool_Handle_ExplicitPath(t *testing.T) {
	_, store, sessionsDir := newTestStack(t)
	root := seedRoot(t, store)
	tool := NewExportTool(store, sessionsDir)

	path := filepath.Join(t.TempDir(), "tree.json")
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{
		"node_id": float64(root.ID),
		"format":  "document",
		"path":    path,
	}

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("got error result: %s", getResultText(result))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("export file not written: %v", err)
	}
	if !strings.Contains(string(data), `"version"`) {
		t.Errorf("document export should carry a version field, got: %s", data)
	}
}

func TestExportTool_Handle_DefaultPathInSessionsDir(t *testing.T) {
	_, store, sessionsDir := newTestStack(t)
	root := seedRoot(t, store)
	tool := NewExportTool(store, sessionsDir)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"node_id": float64(root.ID)}

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("got error result: %s", getResultText(result))
	}

	matches, err := filepath.Glob(filepath.Join(sessionsDir, "session_*.md"))
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("found %d exports in sessions dir, want 1", len(matches))
	}
}

func TestExportTool_Handle_BadFormat(t *testing.T) {
	_, store, sessionsDir := newTestStack(t)
	root := seedRoot(t, store)
	tool := NewExportTool(store, sessionsDir)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{
		"node_id": float64(root.ID),
		"format":  "pdf",
	}

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("expected error result for unknown format")
	}
}
