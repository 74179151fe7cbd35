// Package engine orchestrates tree expansion: it walks the tree depth-first,
// asks the collaborator for branches and tags, writes children through the
// store's capped transactions, and degrades instead of failing when a single
// step goes wrong. A partially expanded, partially annotated tree is strictly
// more useful than none.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/crossroads-cli/crossroads/internal/llm"
	"github.com/crossroads-cli/crossroads/internal/tree"
)

// Status classifies an expansion outcome. Callers distinguish "fully
// succeeded", "succeeded with caveats", and preflight/terminal stops without
// inspecting errors; hard failures are returned as errors instead.
type Status string

const (
	// StatusCompleted means every requested level was generated and annotated.
	StatusCompleted Status = "completed"
	// StatusDegraded means the tree is valid but thinner than requested:
	// a retried generation came back short, or annotations are missing.
	StatusDegraded Status = "degraded"
	// StatusCapped means the node cap cut the traversal short. The written
	// prefix is left-complete and right-truncated; nothing was rolled back.
	StatusCapped Status = "capped"
	// StatusLimitReached means a bound (depth cap, node cap, or the caller's
	// deadline) stopped the expansion before or during the walk. This is the
	// expected terminal condition of a bounded traversal, not an error.
	StatusLimitReached Status = "limit_reached"
)

// Result reports what one expansion call did.
type Result struct {
	Status       Status   `json:"status"`
	NodesCreated int      `json:"nodes_created"`
	Annotated    int      `json:"annotated"`
	Notes        []string `json:"notes,omitempty"`
}

// Collaborator is the text-generation contract the engine depends on.
// Implementations may be slow, may fail, and may return malformed text;
// the engine never assumes schema compliance.
type Collaborator interface {
	Generate(ctx context.Context, req llm.GenerateRequest) ([]string, error)
	Annotate(ctx context.Context, summary string) (tree.Annotation, error)
}

// Engine expands decision trees. All state it needs is injected; there are
// no package-level globals, so tests run it against fakes.
type Engine struct {
	store       *tree.Store
	collab      Collaborator
	sessionsDir string
}

// New creates an Engine. sessionsDir receives fallback snapshots when the
// store stops accepting writes mid-expansion.
func New(store *tree.Store, collab Collaborator, sessionsDir string) *Engine {
	return &Engine{store: store, collab: collab, sessionsDir: sessionsDir}
}

// LaunchParams holds the input for starting a fresh tree.
type LaunchParams struct {
	Statement string
	Timeframe *int
	Context   []tree.ContextEntry
	Depth     int
	Children  int
}

// Launch creates a decision root under a new session key and expands it.
func (e *Engine) Launch(ctx context.Context, p LaunchParams) (*tree.BranchNode, *Result, error) {
	root, err := e.store.CreateRoot(tree.CreateRootParams{
		SessionKey: uuid.NewString(),
		Statement:  p.Statement,
		Timeframe:  p.Timeframe,
		Context:    p.Context,
	})
	if err != nil {
		return nil, nil, err
	}

	res, err := e.Expand(ctx, root.ID, p.Depth, p.Children)
	return root, res, err
}

// Expand generates up to depth additional levels beneath nodeID, children
// branches per node, walking depth-first left-to-right by creation rank so a
// capped run always leaves a left-complete, right-truncated tree.
//
// Re-expanding a node that already has children descends instead of
// generating, so repeating a call from a terminal state adds zero nodes.
func (e *Engine) Expand(ctx context.Context, nodeID int64, depth, children int) (*Result, error) {
	if depth <= 0 {
		depth = 1
	}
	if children <= 0 {
		children = 2
	}

	node, err := e.store.Node(nodeID)
	if err != nil {
		return nil, err
	}
	cfg := e.store.Config()

	// Preflight: never start a walk the caps make illegal. No collaborator
	// calls have happened yet, so stopping here is free.
	res := &Result{}
	if node.Depth+depth > cfg.MaxDepth {
		res.Status = StatusLimitReached
		res.Notes = append(res.Notes, fmt.Sprintf(
			"depth %d + requested %d exceeds max depth %d", node.Depth, depth, cfg.MaxDepth))
		return res, nil
	}
	count, err := e.store.NodeCount(node.DecisionID)
	if err != nil {
		return nil, err
	}
	if count >= cfg.MaxNodes {
		res.Status = StatusLimitReached
		res.Notes = append(res.Notes, fmt.Sprintf("tree already at max of %d nodes", cfg.MaxNodes))
		return res, nil
	}

	blocks, err := e.store.Context(node.DecisionID)
	if err != nil {
		return nil, err
	}

	w := &walk{engine: e, blocks: blocks, children: children, res: res}
	if err := w.expand(ctx, node, depth); err != nil {
		return res, err
	}

	switch {
	case w.cancelled:
		res.Status = StatusLimitReached
	case w.capped:
		res.Status = StatusCapped
	case w.degraded:
		res.Status = StatusDegraded
	default:
		res.Status = StatusCompleted
	}
	return res, nil
}

// walk carries the mutable state of one expansion call.
type walk struct {
	engine   *Engine
	blocks   []tree.ContextBlock
	children int
	res      *Result

	capped    bool
	degraded  bool
	cancelled bool
}

// markCancelled flags the walk as deadline-stopped, noting it once.
func (w *walk) markCancelled() {
	if w.cancelled {
		return
	}
	w.cancelled = true
	w.res.Notes = append(w.res.Notes, "expansion cancelled by caller deadline")
}

func (w *walk) expand(ctx context.Context, node *tree.BranchNode, remaining int) error {
	if remaining <= 0 || w.capped {
		return nil
	}
	if ctx.Err() != nil {
		// The caller's deadline wins: stop cleanly between nodes and report
		// partial completion rather than corrupt the tree.
		w.markCancelled()
		return nil
	}

	existing, err := w.engine.store.ChildrenOf(node.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		// Already expanded: descend, never regenerate.
		for _, childID := range existing {
			child, err := w.engine.store.Node(childID)
			if err != nil {
				return err
			}
			if err := w.expand(ctx, child, remaining-1); err != nil {
				return err
			}
		}
		return nil
	}

	summaries, ok := w.generate(ctx, node)
	if ctx.Err() != nil {
		// The deadline fired while the collaborator was working. Whatever it
		// returned stays unpersisted; the tree keeps only completed writes.
		w.markCancelled()
		return nil
	}
	if !ok {
		return nil
	}

	ids, err := w.materialize(node, summaries)
	if err != nil {
		return err
	}
	if ids == nil {
		return nil
	}
	w.res.NodesCreated += len(ids)

	for _, id := range ids {
		w.annotate(ctx, id)
	}

	for _, id := range ids {
		child, err := w.engine.store.Node(id)
		if err != nil {
			return err
		}
		if err := w.expand(ctx, child, remaining-1); err != nil {
			return err
		}
	}
	return nil
}

// generate asks the collaborator for branches, retrying once with a prompt
// hint when the first pass fails or comes back thin. A single branch is
// accepted over failing the node; zero branches degrades and skips it.
func (w *walk) generate(ctx context.Context, node *tree.BranchNode) ([]string, bool) {
	req := llm.GenerateRequest{
		ParentSummary: node.Summary,
		Context:       w.blocks,
		Depth:         node.Depth,
		Count:         w.children,
	}

	want := min(2, w.children)
	summaries, err := w.engine.collab.Generate(ctx, req)
	if (err != nil || len(summaries) < want) && ctx.Err() == nil {
		req.Hint = fmt.Sprintf(
			"Your previous answer was unusable or too short. Return at least %d and at most %d options as a plain JSON array of strings.",
			want, w.children)
		retried, retryErr := w.engine.collab.Generate(ctx, req)
		if retryErr == nil && len(retried) > len(summaries) {
			summaries = retried
		}
	}
	if ctx.Err() != nil {
		return nil, false
	}

	if len(summaries) == 0 {
		w.degraded = true
		w.res.Notes = append(w.res.Notes, fmt.Sprintf("node %d: generation returned nothing, branch left unexpanded", node.ID))
		return nil, false
	}
	if len(summaries) < w.children {
		w.degraded = true
		w.res.Notes = append(w.res.Notes, fmt.Sprintf("node %d: thin fan-out (%d of %d branches)", node.ID, len(summaries), w.children))
	}
	return summaries, true
}

// materialize writes the children. ErrCapExceeded marks the tree capped and
// stops the traversal without failing the call; other persist errors get one
// retry, then a fallback snapshot dump and a hard failure.
func (w *walk) materialize(node *tree.BranchNode, summaries []string) ([]int64, error) {
	ids, err := w.engine.store.CreateChildren(node.ID, summaries)
	if err == nil {
		return ids, nil
	}
	if errors.Is(err, tree.ErrCapExceeded) {
		w.capped = true
		w.res.Notes = append(w.res.Notes, fmt.Sprintf("node %d: %v", node.ID, err))
		return nil, nil
	}

	ids, retryErr := w.engine.store.CreateChildren(node.ID, summaries)
	if retryErr == nil {
		return ids, nil
	}
	if errors.Is(retryErr, tree.ErrCapExceeded) {
		w.capped = true
		w.res.Notes = append(w.res.Notes, fmt.Sprintf("node %d: %v", node.ID, retryErr))
		return nil, nil
	}

	path, dumpErr := w.engine.dumpFallback(node, summaries)
	if dumpErr != nil {
		return nil, fmt.Errorf("engine: persist children of node %d: %w (fallback dump also failed: %v)",
			node.ID, retryErr, dumpErr)
	}
	return nil, fmt.Errorf("engine: persist children of node %d: %w (tree state dumped to %s)",
		node.ID, retryErr, path)
}

// annotate attaches tags to one new child. Annotation is best-effort: a
// collaborator or store error leaves the annotation null and the node valid.
func (w *walk) annotate(ctx context.Context, nodeID int64) {
	child, err := w.engine.store.Node(nodeID)
	if err != nil {
		w.degraded = true
		w.res.Notes = append(w.res.Notes, fmt.Sprintf("node %d: %v", nodeID, err))
		return
	}

	ann, err := w.engine.collab.Annotate(ctx, child.Summary)
	if err != nil {
		ann, err = w.engine.collab.Annotate(ctx, child.Summary)
	}
	if err != nil {
		w.degraded = true
		w.res.Notes = append(w.res.Notes, fmt.Sprintf("node %d: annotation failed: %v", nodeID, err))
		return
	}

	if err := w.engine.store.AttachAnnotation(nodeID, ann.Risk, ann.Growth, ann.Emotion); err != nil {
		w.degraded = true
		w.res.Notes = append(w.res.Notes, fmt.Sprintf("node %d: attach annotation: %v", nodeID, err))
		return
	}
	w.res.Annotated++
}

// fallbackDump is the document written when the primary store stops
// accepting writes: the full persisted subtree plus the batch that failed.
type fallbackDump struct {
	DumpedAt string         `json:"dumped_at"`
	Subtree  *tree.Snapshot `json:"subtree,omitempty"`
	Pending  struct {
		ParentID  int64    `json:"parent_id"`
		Summaries []string `json:"summaries"`
	} `json:"pending"`
}

func (e *Engine) dumpFallback(node *tree.BranchNode, summaries []string) (string, error) {
	if err := os.MkdirAll(e.sessionsDir, 0700); err != nil {
		return "", err
	}

	dump := fallbackDump{DumpedAt: tree.Now()}
	dump.Pending.ParentID = node.ID
	dump.Pending.Summaries = summaries
	if root, err := e.store.Root(node.DecisionID); err == nil {
		if snap, err := e.store.Subtree(root.ID); err == nil {
			dump.Subtree = snap
		}
	}

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(e.sessionsDir,
		fmt.Sprintf("fallback_%s.json", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", err
	}
	return path, nil
}
