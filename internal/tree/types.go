package tree

import (
	"errors"
	"os"
	"path/filepath"
)

// Sentinel errors for structural store failures. Callers match with errors.Is.
var (
	// ErrDuplicateRoot is returned when a root already exists for a session key.
	ErrDuplicateRoot = errors.New("tree: duplicate root for session key")
	// ErrNotFound is returned when a decision or node does not exist.
	ErrNotFound = errors.New("tree: not found")
	// ErrCapExceeded is returned when a write would exceed the node or depth cap.
	// The write is rejected atomically: zero rows are created.
	ErrCapExceeded = errors.New("tree: cap exceeded")
	// ErrInvalidDomain is returned for a context domain outside the fixed set.
	ErrInvalidDomain = errors.New("tree: invalid context domain")
)

// Context domains. Fixed enumerated set; any subset may be absent.
const (
	DomainCareer       = "career"
	DomainPersonalLife = "personal_life"
	DomainFinances     = "finances"
	DomainMentalState  = "mental_state"
	DomainMetaNotes    = "meta_notes"
)

// Domains returns the context domains in interview order.
func Domains() []string {
	return []string{
		DomainCareer,
		DomainPersonalLife,
		DomainFinances,
		DomainMentalState,
		DomainMetaNotes,
	}
}

// ValidDomain reports whether d is one of the fixed context domains.
func ValidDomain(d string) bool {
	switch d {
	case DomainCareer, DomainPersonalLife, DomainFinances, DomainMentalState, DomainMetaNotes:
		return true
	}
	return false
}

// Decision is the entry point of a tree: the grounded scenario the user is
// exploring. Exactly one per tree. Immutable after creation except for
// timeframe backfill.
type Decision struct {
	ID         int64  `json:"id"`
	SessionKey string `json:"session_key"`
	Statement  string `json:"statement"`
	Timeframe  *int   `json:"timeframe,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// ContextBlock is one domain-keyed free-text entry attached to a decision.
// Skipped marks a question the user explicitly declined — distinct from an
// empty answer, and distinct from an absent row (never asked).
type ContextBlock struct {
	ID         int64  `json:"id"`
	DecisionID int64  `json:"decision_id"`
	Domain     string `json:"domain"`
	Text       string `json:"text"`
	Skipped    bool   `json:"skipped"`
}

// Annotation holds the three qualitative tags attached to a branch node.
type Annotation struct {
	Risk    string `json:"risk"`
	Growth  string `json:"growth"`
	Emotion string `json:"emotion"`
}

// BranchNode is one hypothetical narrative state in the tree.
// The root node has a nil ParentID and depth 0; every other node satisfies
// depth = parent depth + 1 by construction.
type BranchNode struct {
	ID         int64       `json:"id"`
	DecisionID int64       `json:"decision_id"`
	ParentID   *int64      `json:"parent_id,omitempty"`
	Depth      int         `json:"depth"`
	Summary    string      `json:"summary"`
	Annotation *Annotation `json:"annotation,omitempty"`
	CreatedAt  string      `json:"created_at"`
}

// ContextEntry is the input form of a context block at root creation.
type ContextEntry struct {
	Domain  string
	Text    string
	Skipped bool
}

// CreateRootParams holds the input for CreateRoot.
type CreateRootParams struct {
	SessionKey string
	Statement  string
	Timeframe  *int
	Context    []ContextEntry
}

// SearchHit is a branch node with its FTS5 rank.
type SearchHit struct {
	BranchNode
	Rank float64 `json:"rank"`
}

// Config holds tree store configuration.
type Config struct {
	DataDir  string
	MaxNodes int
	MaxDepth int
}

// DefaultConfig returns the default store configuration: a database under
// ~/.crossroads with the standard 50-node / depth-3 caps.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:  filepath.Join(home, ".crossroads"),
		MaxNodes: 50,
		MaxDepth: 3,
	}
}
