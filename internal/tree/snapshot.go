package tree

import (
	"fmt"
	"sort"
)

// Snapshot is a read-only view of a subtree: an arena of nodes addressed by
// ID with children resolved through an index, never through embedded
// pointers. Nodes are held in creation (ID) order, which is also the
// stable display rank used by every exporter.
type Snapshot struct {
	Decision Decision       `json:"decision"`
	Context  []ContextBlock `json:"context"`
	Nodes    []BranchNode   `json:"nodes"`

	byID     map[int64]int
	children map[int64][]int64
	start    int64
}

// NewSnapshot builds a snapshot over the given nodes. The first node in
// creation order is the subtree's start node.
func NewSnapshot(dec Decision, blocks []ContextBlock, nodes []BranchNode) (*Snapshot, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: empty subtree", ErrNotFound)
	}

	s := &Snapshot{
		Decision: dec,
		Context:  blocks,
		Nodes:    nodes,
		byID:     make(map[int64]int, len(nodes)),
		children: make(map[int64][]int64),
		start:    nodes[0].ID,
	}
	for i, n := range nodes {
		s.byID[n.ID] = i
		if n.ParentID != nil {
			s.children[*n.ParentID] = append(s.children[*n.ParentID], n.ID)
		}
	}
	for id := range s.children {
		ids := s.children[id]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return s, nil
}

// Start returns the node the snapshot was taken from.
func (s *Snapshot) Start() BranchNode {
	n, _ := s.Node(s.start)
	return n
}

// Node looks up a node by ID.
func (s *Snapshot) Node(id int64) (BranchNode, bool) {
	i, ok := s.byID[id]
	if !ok {
		return BranchNode{}, false
	}
	return s.Nodes[i], true
}

// Children returns a node's child IDs in creation order.
func (s *Snapshot) Children(id int64) []int64 {
	return s.children[id]
}

// Len returns the number of nodes in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.Nodes)
}

// Walk visits the snapshot depth-first, left-to-right by creation rank,
// starting from the snapshot's start node.
func (s *Snapshot) Walk(visit func(n BranchNode)) {
	s.walk(s.start, visit)
}

func (s *Snapshot) walk(id int64, visit func(n BranchNode)) {
	n, ok := s.Node(id)
	if !ok {
		return
	}
	visit(n)
	for _, child := range s.children[id] {
		s.walk(child, visit)
	}
}

// Validate checks the full-tree invariants a snapshot must satisfy before it
// can be restored: one root at depth 0, every other node linked to a parent
// in the snapshot with depth = parent depth + 1, and all nodes owned by the
// snapshot's decision. Violations are structural and reported verbatim.
func (s *Snapshot) Validate() error {
	roots := 0
	for _, n := range s.Nodes {
		if n.DecisionID != s.Decision.ID {
			return fmt.Errorf("tree: snapshot: node %d belongs to decision %d, want %d",
				n.ID, n.DecisionID, s.Decision.ID)
		}
		if n.ParentID == nil {
			roots++
			if n.Depth != 0 {
				return fmt.Errorf("tree: snapshot: root node %d has depth %d, want 0", n.ID, n.Depth)
			}
			continue
		}
		parent, ok := s.Node(*n.ParentID)
		if !ok {
			return fmt.Errorf("tree: snapshot: node %d references missing parent %d", n.ID, *n.ParentID)
		}
		if n.Depth != parent.Depth+1 {
			return fmt.Errorf("tree: snapshot: node %d has depth %d, parent %d has depth %d",
				n.ID, n.Depth, parent.ID, parent.Depth)
		}
	}
	if roots != 1 {
		return fmt.Errorf("tree: snapshot: %d root nodes, want exactly 1", roots)
	}
	return nil
}
