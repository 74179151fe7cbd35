package tree_test

import (
	"errors"
	"testing"

	"github.com/crossroads-cli/crossroads/internal/tree"
)

// newTestStore creates a Store backed by a temp directory for isolation.
func newTestStore(t *testing.T) *tree.Store {
	t.Helper()
	return newCappedStore(t, 50, 3)
}

func newCappedStore(t *testing.T, maxNodes, maxDepth int) *tree.Store {
	t.Helper()
	s, err := tree.New(tree.Config{
		DataDir:  t.TempDir(),
		MaxNodes: maxNodes,
		MaxDepth: maxDepth,
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustRoot creates a decision with a full context and returns its root node.
func mustRoot(t *testing.T, s *tree.Store, sessionKey string) *tree.BranchNode {
	t.Helper()
	root, err := s.CreateRoot(tree.CreateRootParams{
		SessionKey: sessionKey,
		Statement:  "Quit my job and move to Berlin",
		Context: []tree.ContextEntry{
			{Domain: tree.DomainCareer, Text: "Senior engineer, 8 years in"},
			{Domain: tree.DomainFinances, Text: "Six months of savings"},
			{Domain: tree.DomainMentalState, Skipped: true},
		},
	})
	if err != nil {
		t.Fatalf("failed to create root for %q: %v", sessionKey, err)
	}
	return root
}

// ─── CreateRoot ──────────────────────────────────────────────────────────────

func TestCreateRoot_RootNodeShape(t *testing.T) {
	s := newTestStore(t)
	root := mustRoot(t, s, "session-1")

	if root.Depth != 0 {
		t.Errorf("root depth = %d, want 0", root.Depth)
	}
	if root.ParentID != nil {
		t.Errorf("root parent = %v, want nil", *root.ParentID)
	}
	if root.Summary != "Quit my job and move to Berlin" {
		t.Errorf("root summary = %q, want the decision statement", root.Summary)
	}
	if root.Annotation != nil {
		t.Error("fresh root should have no annotation")
	}
}

func TestCreateRoot_PersistsContextBlocks(t *testing.T) {
	s := newTestStore(t)
	root := mustRoot(t, s, "session-1")

	blocks, err := s.Context(root.DecisionID)
	if err != nil {
		t.Fatalf("Context() error: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("got %d context blocks, want 3", len(blocks))
	}
	if blocks[0].Domain != tree.DomainCareer || blocks[0].Skipped {
		t.Errorf("first block = %+v, want answered career block", blocks[0])
	}
	if !blocks[2].Skipped {
		t.Error("mental_state block should be marked skipped")
	}
	if blocks[2].Text != "" {
		t.Errorf("skipped block text = %q, want empty", blocks[2].Text)
	}
}

func TestCreateRoot_DuplicateSessionKey(t *testing.T) {
	s := newTestStore(t)
	mustRoot(t, s, "session-1")

	_, err := s.CreateRoot(tree.CreateRootParams{
		SessionKey: "session-1",
		Statement:  "Different statement, same session",
	})
	if !errors.Is(err, tree.ErrDuplicateRoot) {
		t.Fatalf("error = %v, want ErrDuplicateRoot", err)
	}
}

func TestCreateRoot_RejectsUnknownDomain(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateRoot(tree.CreateRootParams{
		SessionKey: "session-1",
		Statement:  "Move abroad",
		Context:    []tree.ContextEntry{{Domain: "astrology", Text: "Mercury retrograde"}},
	})
	if !errors.Is(err, tree.ErrInvalidDomain) {
		t.Fatalf("error = %v, want ErrInvalidDomain", err)
	}
}

func TestCreateRoot_NoContextIsFine(t *testing.T) {
	s := newTestStore(t)

	root, err := s.CreateRoot(tree.CreateRootParams{
		SessionKey: "session-1",
		Statement:  "Move abroad",
	})
	if err != nil {
		t.Fatalf("CreateRoot() error: %v", err)
	}
	blocks, err := s.Context(root.DecisionID)
	if err != nil {
		t.Fatalf("Context() error: %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("got %d blocks, want 0", len(blocks))
	}
}

// ─── Timeframe ───────────────────────────────────────────────────────────────

func TestSetTimeframe_BackfillOnce(t *testing.T) {
	s := newTestStore(t)
	root := mustRoot(t, s, "session-1")

	if err := s.SetTimeframe(root.DecisionID, 2026); err != nil {
		t.Fatalf("SetTimeframe() error: %v", err)
	}

	// A second backfill must not overwrite the first.
	if err := s.SetTimeframe(root.DecisionID, 1999); err != nil {
		t.Fatalf("second SetTimeframe() error: %v", err)
	}

	d, err := s.Decision(root.DecisionID)
	if err != nil {
		t.Fatalf("Decision() error: %v", err)
	}
	if d.Timeframe == nil || *d.Timeframe != 2026 {
		t.Errorf("timeframe = %v, want 2026", d.Timeframe)
	}
}

func TestSetTimeframe_MissingDecision(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetTimeframe(999, 2026); !errors.Is(err, tree.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

// ─── CreateChildren ──────────────────────────────────────────────────────────

func TestCreateChildren_DepthAndOrder(t *testing.T) {
	s := newTestStore(t)
	root := mustRoot(t, s, "session-1")

	ids, err := s.CreateChildren(root.ID, []string{"Stay and negotiate", "Leave immediately"})
	if err != nil {
		t.Fatalf("CreateChildren() error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d ids, want 2", len(ids))
	}

	first, err := s.Node(ids[0])
	if err != nil {
		t.Fatalf("Node() error: %v", err)
	}
	if first.Depth != root.Depth+1 {
		t.Errorf("child depth = %d, want %d", first.Depth, root.Depth+1)
	}
	if first.ParentID == nil || *first.ParentID != root.ID {
		t.Errorf("child parent = %v, want %d", first.ParentID, root.ID)
	}
	if first.Summary != "Stay and negotiate" {
		t.Errorf("first child summary = %q, ids must follow input order", first.Summary)
	}

	children, err := s.ChildrenOf(root.ID)
	if err != nil {
		t.Fatalf("ChildrenOf() error: %v", err)
	}
	if len(children) != 2 || children[0] != ids[0] || children[1] != ids[1] {
		t.Errorf("ChildrenOf = %v, want %v in creation order", children, ids)
	}
}

func TestCreateChildren_NodeCapIsAtomic(t *testing.T) {
	s := newCappedStore(t, 3, 3)
	root := mustRoot(t, s, "session-1")

	// 1 existing + 3 new > 3: the whole batch must be rejected.
	_, err := s.CreateChildren(root.ID, []string{"a", "b", "c"})
	if !errors.Is(err, tree.ErrCapExceeded) {
		t.Fatalf("error = %v, want ErrCapExceeded", err)
	}

	count, err := s.NodeCount(root.DecisionID)
	if err != nil {
		t.Fatalf("NodeCount() error: %v", err)
	}
	if count != 1 {
		t.Errorf("node count after rejected batch = %d, want 1 (zero rows created)", count)
	}

	// A batch that fits exactly still goes through.
	if _, err := s.CreateChildren(root.ID, []string{"a", "b"}); err != nil {
		t.Fatalf("exact-fit batch error: %v", err)
	}
}

func TestCreateChildren_DepthCap(t *testing.T) {
	s := newCappedStore(t, 50, 1)
	root := mustRoot(t, s, "session-1")

	ids, err := s.CreateChildren(root.ID, []string{"level one"})
	if err != nil {
		t.Fatalf("CreateChildren() error: %v", err)
	}

	_, err = s.CreateChildren(ids[0], []string{"level two"})
	if !errors.Is(err, tree.ErrCapExceeded) {
		t.Fatalf("error = %v, want ErrCapExceeded at depth cap", err)
	}
}

func TestCreateChildren_MissingParent(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateChildren(999, []string{"x"}); !errors.Is(err, tree.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestCreateChildren_EmptyBatch(t *testing.T) {
	s := newTestStore(t)
	root := mustRoot(t, s, "session-1")

	ids, err := s.CreateChildren(root.ID, nil)
	if err != nil {
		t.Fatalf("CreateChildren(nil) error: %v", err)
	}
	if ids != nil {
		t.Errorf("ids = %v, want nil", ids)
	}
}

// ─── Annotations ─────────────────────────────────────────────────────────────

func TestAttachAnnotation_Overwrites(t *testing.T) {
	s := newTestStore(t)
	root := mustRoot(t, s, "session-1")
	ids, err := s.CreateChildren(root.ID, []string{"Take the offer"})
	if err != nil {
		t.Fatalf("CreateChildren() error: %v", err)
	}

	if err := s.AttachAnnotation(ids[0], "High", "Transformative", "Anxious"); err != nil {
		t.Fatalf("AttachAnnotation() error: %v", err)
	}
	if err := s.AttachAnnotation(ids[0], "Medium", "High", "Hopeful"); err != nil {
		t.Fatalf("re-AttachAnnotation() error: %v", err)
	}

	n, err := s.Node(ids[0])
	if err != nil {
		t.Fatalf("Node() error: %v", err)
	}
	if n.Annotation == nil {
		t.Fatal("annotation missing after attach")
	}
	if n.Annotation.Risk != "Medium" || n.Annotation.Growth != "High" || n.Annotation.Emotion != "Hopeful" {
		t.Errorf("annotation = %+v, want the second attach to win", n.Annotation)
	}
}

func TestAttachAnnotation_MissingNode(t *testing.T) {
	s := newTestStore(t)
	if err := s.AttachAnnotation(999, "Low", "Low", "Calm"); !errors.Is(err, tree.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

// ─── Subtree / Reset ─────────────────────────────────────────────────────────

func TestSubtree_WalksDepthFirstLeftToRight(t *testing.T) {
	s := newTestStore(t)
	root := mustRoot(t, s, "session-1")

	level1, err := s.CreateChildren(root.ID, []string{"left", "right"})
	if err != nil {
		t.Fatalf("CreateChildren() error: %v", err)
	}
	leftKids, err := s.CreateChildren(level1[0], []string{"left-left", "left-right"})
	if err != nil {
		t.Fatalf("CreateChildren() error: %v", err)
	}

	snap, err := s.Subtree(root.ID)
	if err != nil {
		t.Fatalf("Subtree() error: %v", err)
	}
	if snap.Len() != 5 {
		t.Fatalf("snapshot has %d nodes, want 5", snap.Len())
	}

	var order []int64
	snap.Walk(func(n tree.BranchNode) { order = append(order, n.ID) })

	want := []int64{root.ID, level1[0], leftKids[0], leftKids[1], level1[1]}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("walk order = %v, want %v", order, want)
		}
	}
}

func TestSubtree_OfInnerNode(t *testing.T) {
	s := newTestStore(t)
	root := mustRoot(t, s, "session-1")

	level1, err := s.CreateChildren(root.ID, []string{"left", "right"})
	if err != nil {
		t.Fatalf("CreateChildren() error: %v", err)
	}
	if _, err := s.CreateChildren(level1[0], []string{"grandchild"}); err != nil {
		t.Fatalf("CreateChildren() error: %v", err)
	}

	snap, err := s.Subtree(level1[0])
	if err != nil {
		t.Fatalf("Subtree() error: %v", err)
	}
	if snap.Len() != 2 {
		t.Errorf("inner subtree has %d nodes, want 2", snap.Len())
	}
	if snap.Start().ID != level1[0] {
		t.Errorf("subtree start = %d, want %d", snap.Start().ID, level1[0])
	}
}

func TestReset_KeepsRootAndContext(t *testing.T) {
	s := newTestStore(t)
	root := mustRoot(t, s, "session-1")

	level1, err := s.CreateChildren(root.ID, []string{"a", "b"})
	if err != nil {
		t.Fatalf("CreateChildren() error: %v", err)
	}
	if _, err := s.CreateChildren(level1[0], []string{"c"}); err != nil {
		t.Fatalf("CreateChildren() error: %v", err)
	}

	if err := s.Reset(root.DecisionID); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}

	count, err := s.NodeCount(root.DecisionID)
	if err != nil {
		t.Fatalf("NodeCount() error: %v", err)
	}
	if count != 1 {
		t.Errorf("node count after reset = %d, want 1 (root only)", count)
	}

	blocks, err := s.Context(root.DecisionID)
	if err != nil {
		t.Fatalf("Context() error: %v", err)
	}
	if len(blocks) != 3 {
		t.Errorf("context blocks after reset = %d, want 3", len(blocks))
	}
}

func TestReset_MissingDecision(t *testing.T) {
	s := newTestStore(t)
	if err := s.Reset(999); !errors.Is(err, tree.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

// ─── Search ──────────────────────────────────────────────────────────────────

func TestSearch_FindsSummaries(t *testing.T) {
	s := newTestStore(t)
	root := mustRoot(t, s, "session-1")
	if _, err := s.CreateChildren(root.ID, []string{
		"Accept the Berlin offer and relocate",
		"Stay in the current role",
	}); err != nil {
		t.Fatalf("CreateChildren() error: %v", err)
	}

	hits, err := s.Search("berlin", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected at least one hit for 'berlin'")
	}
	found := false
	for _, h := range hits {
		if h.Summary == "Accept the Berlin offer and relocate" {
			found = true
		}
	}
	if !found {
		t.Errorf("hits = %+v, want the Berlin branch", hits)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	s := newTestStore(t)
	hits, err := s.Search("   ", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if hits != nil {
		t.Errorf("hits = %v, want nil for blank query", hits)
	}
}

// ─── Restore ─────────────────────────────────────────────────────────────────

func TestRestore_RoundTripPreservesIDs(t *testing.T) {
	src := newTestStore(t)
	root := mustRoot(t, src, "session-1")
	ids, err := src.CreateChildren(root.ID, []string{"path a", "path b"})
	if err != nil {
		t.Fatalf("CreateChildren() error: %v", err)
	}
	if err := src.AttachAnnotation(ids[0], "Low", "High", "Hopeful"); err != nil {
		t.Fatalf("AttachAnnotation() error: %v", err)
	}

	snap, err := src.Subtree(root.ID)
	if err != nil {
		t.Fatalf("Subtree() error: %v", err)
	}

	dst := newTestStore(t)
	if err := dst.Restore(snap); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}

	restored, err := dst.Subtree(root.ID)
	if err != nil {
		t.Fatalf("Subtree() after restore error: %v", err)
	}
	if restored.Len() != snap.Len() {
		t.Fatalf("restored %d nodes, want %d", restored.Len(), snap.Len())
	}
	for i := range snap.Nodes {
		got, want := restored.Nodes[i], snap.Nodes[i]
		if got.ID != want.ID || got.Depth != want.Depth || got.Summary != want.Summary {
			t.Errorf("node %d = %+v, want %+v", i, got, want)
		}
	}

	n, err := dst.Node(ids[0])
	if err != nil {
		t.Fatalf("Node() error: %v", err)
	}
	if n.Annotation == nil || n.Annotation.Growth != "High" {
		t.Errorf("restored annotation = %+v, want growth High", n.Annotation)
	}
}

func TestRestore_DuplicateSessionKey(t *testing.T) {
	src := newTestStore(t)
	root := mustRoot(t, src, "session-1")
	snap, err := src.Subtree(root.ID)
	if err != nil {
		t.Fatalf("Subtree() error: %v", err)
	}

	if err := src.Restore(snap); !errors.Is(err, tree.ErrDuplicateRoot) {
		t.Fatalf("error = %v, want ErrDuplicateRoot on same store", err)
	}
}

func TestRestore_NodeCap(t *testing.T) {
	src := newTestStore(t)
	root := mustRoot(t, src, "session-1")
	if _, err := src.CreateChildren(root.ID, []string{"a", "b"}); err != nil {
		t.Fatalf("CreateChildren() error: %v", err)
	}
	snap, err := src.Subtree(root.ID)
	if err != nil {
		t.Fatalf("Subtree() error: %v", err)
	}

	dst := newCappedStore(t, 2, 3)
	if err := dst.Restore(snap); !errors.Is(err, tree.ErrCapExceeded) {
		t.Fatalf("error = %v, want ErrCapExceeded", err)
	}
}
