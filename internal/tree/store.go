// Package tree implements the persistence engine for decision trees.
//
// It stores decision roots, their interview context blocks, and the
// branch nodes generated beneath them in SQLite, and enforces the
// structural invariants of the tree (single root, depth = parent+1,
// node and depth caps) at write time — never by post-hoc validation.
package tree

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Store is the decision tree engine backed by SQLite + FTS5.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New creates a new Store with the given configuration.
// It creates the data directory if needed, opens SQLite with WAL mode,
// and runs migrations.
func New(cfg Config) (*Store, error) {
	if cfg.MaxNodes <= 0 {
		cfg.MaxNodes = 50
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 3
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("tree: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "crossroads.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("tree: open database: %w", err)
	}

	// SQLite performance pragmas
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("tree: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("tree: migration: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Config returns the store's effective configuration.
func (s *Store) Config() Config {
	return s.cfg
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS decisions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			session_key TEXT    NOT NULL UNIQUE,
			statement   TEXT    NOT NULL,
			timeframe   INTEGER,
			created_at  TEXT    NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS context_blocks (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			decision_id INTEGER NOT NULL,
			domain      TEXT    NOT NULL,
			text        TEXT    NOT NULL DEFAULT '',
			skipped     INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (decision_id) REFERENCES decisions(id),
			UNIQUE (decision_id, domain)
		);

		CREATE TABLE IF NOT EXISTS branch_nodes (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			decision_id INTEGER NOT NULL,
			parent_id   INTEGER,
			depth       INTEGER NOT NULL,
			summary     TEXT    NOT NULL,
			risk        TEXT,
			growth      TEXT,
			emotion     TEXT,
			created_at  TEXT    NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (decision_id) REFERENCES decisions(id),
			FOREIGN KEY (parent_id)   REFERENCES branch_nodes(id)
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_decision ON branch_nodes(decision_id);
		CREATE INDEX IF NOT EXISTS idx_nodes_parent   ON branch_nodes(parent_id);
		CREATE INDEX IF NOT EXISTS idx_blocks_decision ON context_blocks(decision_id);

		-- One root per decision: parent_id IS NULL at most once per tree.
		CREATE UNIQUE INDEX IF NOT EXISTS idx_nodes_single_root
			ON branch_nodes(decision_id) WHERE parent_id IS NULL;

		CREATE VIRTUAL TABLE IF NOT EXISTS branch_fts USING fts5(
			summary,
			content='branch_nodes',
			content_rowid='id'
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Create FTS triggers (idempotent)
	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='trigger' AND name='branch_fts_insert'",
	).Scan(&name)

	if err == sql.ErrNoRows {
		triggers := `
			CREATE TRIGGER branch_fts_insert AFTER INSERT ON branch_nodes BEGIN
				INSERT INTO branch_fts(rowid, summary) VALUES (new.id, new.summary);
			END;

			CREATE TRIGGER branch_fts_delete AFTER DELETE ON branch_nodes BEGIN
				INSERT INTO branch_fts(branch_fts, rowid, summary)
				VALUES ('delete', old.id, old.summary);
			END;
		`
		if _, err := s.db.Exec(triggers); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	return nil
}

// ─── Roots ───────────────────────────────────────────────────────────────────

// CreateRoot creates a decision, its context blocks, and the root branch node
// (depth 0, summary = statement) in one transaction. Fails with
// ErrDuplicateRoot if a root already exists for the session key.
func (s *Store) CreateRoot(p CreateRootParams) (*BranchNode, error) {
	for _, e := range p.Context {
		if !ValidDomain(e.Domain) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDomain, e.Domain)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("tree: create root: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(
		`INSERT INTO decisions (session_key, statement, timeframe) VALUES (?, ?, ?)`,
		p.SessionKey, p.Statement, p.Timeframe,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoot, p.SessionKey)
		}
		return nil, fmt.Errorf("tree: create decision: %w", err)
	}
	decisionID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("tree: create decision: %w", err)
	}

	for _, e := range p.Context {
		if _, err := tx.Exec(
			`INSERT INTO context_blocks (decision_id, domain, text, skipped)
			 VALUES (?, ?, ?, ?)`,
			decisionID, e.Domain, e.Text, boolToInt(e.Skipped),
		); err != nil {
			return nil, fmt.Errorf("tree: create context block %s: %w", e.Domain, err)
		}
	}

	rootRes, err := tx.Exec(
		`INSERT INTO branch_nodes (decision_id, parent_id, depth, summary)
		 VALUES (?, NULL, 0, ?)`,
		decisionID, p.Statement,
	)
	if err != nil {
		return nil, fmt.Errorf("tree: create root node: %w", err)
	}
	rootID, err := rootRes.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("tree: create root node: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("tree: create root: commit: %w", err)
	}

	return s.Node(rootID)
}

// Decisions lists every decision, newest first.
func (s *Store) Decisions() ([]Decision, error) {
	rows, err := s.db.Query(
		`SELECT id, session_key, statement, timeframe, created_at FROM decisions ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("tree: list decisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Decision
	for rows.Next() {
		var d Decision
		if err := rows.Scan(&d.ID, &d.SessionKey, &d.Statement, &d.Timeframe, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Decision retrieves a decision by ID.
func (s *Store) Decision(id int64) (*Decision, error) {
	row := s.db.QueryRow(
		`SELECT id, session_key, statement, timeframe, created_at FROM decisions WHERE id = ?`, id,
	)
	var d Decision
	if err := row.Scan(&d.ID, &d.SessionKey, &d.Statement, &d.Timeframe, &d.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: decision %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("tree: get decision %d: %w", id, err)
	}
	return &d, nil
}

// Context returns a decision's context blocks in interview order.
func (s *Store) Context(decisionID int64) ([]ContextBlock, error) {
	rows, err := s.db.Query(
		`SELECT id, decision_id, domain, text, skipped
		 FROM context_blocks WHERE decision_id = ? ORDER BY id`,
		decisionID,
	)
	if err != nil {
		return nil, fmt.Errorf("tree: get context: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var blocks []ContextBlock
	for rows.Next() {
		var b ContextBlock
		var skipped int
		if err := rows.Scan(&b.ID, &b.DecisionID, &b.Domain, &b.Text, &skipped); err != nil {
			return nil, err
		}
		b.Skipped = skipped != 0
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// SetTimeframe backfills a decision's timeframe. The statement itself is
// immutable; the timeframe may be set once, only while still null.
func (s *Store) SetTimeframe(decisionID int64, year int) error {
	res, err := s.db.Exec(
		`UPDATE decisions SET timeframe = ? WHERE id = ? AND timeframe IS NULL`,
		year, decisionID,
	)
	if err != nil {
		return fmt.Errorf("tree: set timeframe: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if scanErr := s.db.QueryRow(`SELECT 1 FROM decisions WHERE id = ?`, decisionID).Scan(&exists); scanErr == sql.ErrNoRows {
			return fmt.Errorf("%w: decision %d", ErrNotFound, decisionID)
		}
	}
	return nil
}

// ─── Nodes ───────────────────────────────────────────────────────────────────

// Node retrieves a branch node by ID.
func (s *Store) Node(id int64) (*BranchNode, error) {
	row := s.db.QueryRow(
		`SELECT id, decision_id, parent_id, depth, summary, risk, growth, emotion, created_at
		 FROM branch_nodes WHERE id = ?`, id,
	)
	n, err := scanNode(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: node %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("tree: get node %d: %w", id, err)
	}
	return n, nil
}

// Root returns the root branch node of a decision's tree.
func (s *Store) Root(decisionID int64) (*BranchNode, error) {
	row := s.db.QueryRow(
		`SELECT id, decision_id, parent_id, depth, summary, risk, growth, emotion, created_at
		 FROM branch_nodes WHERE decision_id = ? AND parent_id IS NULL`, decisionID,
	)
	n, err := scanNode(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: root of decision %d", ErrNotFound, decisionID)
		}
		return nil, fmt.Errorf("tree: get root: %w", err)
	}
	return n, nil
}

// NodeCount returns the total number of branch nodes in a decision's tree.
func (s *Store) NodeCount(decisionID int64) (int, error) {
	var n int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM branch_nodes WHERE decision_id = ?`, decisionID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("tree: node count: %w", err)
	}
	return n, nil
}

// CreateChildren creates one child per summary beneath parentID, in order.
// The write is atomic: the cap check and the inserts run in one transaction,
// and ErrCapExceeded (node cap or depth cap) leaves zero rows behind.
// Returned IDs are in input order; creation order is the branch's rank.
func (s *Store) CreateChildren(parentID int64, summaries []string) ([]int64, error) {
	if len(summaries) == 0 {
		return nil, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("tree: create children: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRow(
		`SELECT id, decision_id, parent_id, depth, summary, risk, growth, emotion, created_at
		 FROM branch_nodes WHERE id = ?`, parentID,
	)
	parent, err := scanNode(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: parent node %d", ErrNotFound, parentID)
		}
		return nil, fmt.Errorf("tree: create children: load parent: %w", err)
	}

	childDepth := parent.Depth + 1
	if childDepth > s.cfg.MaxDepth {
		return nil, fmt.Errorf("%w: depth %d exceeds max depth %d", ErrCapExceeded, childDepth, s.cfg.MaxDepth)
	}

	var count int
	if err := tx.QueryRow(
		`SELECT COUNT(*) FROM branch_nodes WHERE decision_id = ?`, parent.DecisionID,
	).Scan(&count); err != nil {
		return nil, fmt.Errorf("tree: create children: count: %w", err)
	}
	if count+len(summaries) > s.cfg.MaxNodes {
		return nil, fmt.Errorf("%w: %d existing + %d new exceeds max %d nodes",
			ErrCapExceeded, count, len(summaries), s.cfg.MaxNodes)
	}

	ids := make([]int64, 0, len(summaries))
	for _, summary := range summaries {
		res, err := tx.Exec(
			`INSERT INTO branch_nodes (decision_id, parent_id, depth, summary)
			 VALUES (?, ?, ?, ?)`,
			parent.DecisionID, parentID, childDepth, summary,
		)
		if err != nil {
			return nil, fmt.Errorf("tree: create child: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("tree: create child: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("tree: create children: commit: %w", err)
	}
	return ids, nil
}

// ChildrenOf returns the IDs of a node's children in creation order.
// Fails with ErrNotFound if the node does not exist.
func (s *Store) ChildrenOf(nodeID int64) ([]int64, error) {
	if _, err := s.Node(nodeID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT id FROM branch_nodes WHERE parent_id = ? ORDER BY id`, nodeID,
	)
	if err != nil {
		return nil, fmt.Errorf("tree: children of %d: %w", nodeID, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AttachAnnotation attaches the three tags to a node. Idempotent:
// re-attaching overwrites the previous labels.
func (s *Store) AttachAnnotation(nodeID int64, risk, growth, emotion string) error {
	res, err := s.db.Exec(
		`UPDATE branch_nodes SET risk = ?, growth = ?, emotion = ? WHERE id = ?`,
		risk, growth, emotion, nodeID,
	)
	if err != nil {
		return fmt.Errorf("tree: attach annotation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: node %d", ErrNotFound, nodeID)
	}
	return nil
}

// ─── Subtrees ────────────────────────────────────────────────────────────────

// Subtree returns a read-only snapshot of a node and all its descendants,
// along with the owning decision and its context blocks.
func (s *Store) Subtree(nodeID int64) (*Snapshot, error) {
	start, err := s.Node(nodeID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`WITH RECURSIVE sub(id) AS (
			SELECT id FROM branch_nodes WHERE id = ?
			UNION ALL
			SELECT b.id FROM branch_nodes b JOIN sub ON b.parent_id = sub.id
		 )
		 SELECT b.id, b.decision_id, b.parent_id, b.depth, b.summary,
		        b.risk, b.growth, b.emotion, b.created_at
		 FROM branch_nodes b JOIN sub ON b.id = sub.id
		 ORDER BY b.id`,
		nodeID,
	)
	if err != nil {
		return nil, fmt.Errorf("tree: subtree of %d: %w", nodeID, err)
	}
	defer func() { _ = rows.Close() }()

	var nodes []BranchNode
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dec, err := s.Decision(start.DecisionID)
	if err != nil {
		return nil, err
	}
	blocks, err := s.Context(start.DecisionID)
	if err != nil {
		return nil, err
	}

	return NewSnapshot(*dec, blocks, nodes)
}

// Reset deletes every node beneath a decision's root. The root, the decision,
// and its context blocks survive; deletion of those is an external
// maintenance concern, not this store's.
func (s *Store) Reset(decisionID int64) error {
	if _, err := s.Root(decisionID); err != nil {
		return err
	}

	var maxDepth int
	if err := s.db.QueryRow(
		`SELECT COALESCE(MAX(depth), 0) FROM branch_nodes WHERE decision_id = ?`, decisionID,
	).Scan(&maxDepth); err != nil {
		return fmt.Errorf("tree: reset decision %d: %w", decisionID, err)
	}

	// Children reference parents, so delete bottom-up by depth.
	for depth := maxDepth; depth > 0; depth-- {
		if _, err := s.db.Exec(
			`DELETE FROM branch_nodes WHERE decision_id = ? AND depth = ?`,
			decisionID, depth,
		); err != nil {
			return fmt.Errorf("tree: reset decision %d: %w", decisionID, err)
		}
	}
	return nil
}

// ─── Search ──────────────────────────────────────────────────────────────────

// Search performs full-text search across branch summaries.
func (s *Store) Search(query string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 10
	}

	ftsQuery := sanitizeFTS(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := s.db.Query(
		`SELECT b.id, b.decision_id, b.parent_id, b.depth, b.summary,
		        b.risk, b.growth, b.emotion, b.created_at, fts.rank
		 FROM branch_fts fts
		 JOIN branch_nodes b ON b.id = fts.rowid
		 WHERE branch_fts MATCH ?
		 ORDER BY fts.rank LIMIT ?`,
		ftsQuery, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("tree: search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		var parentID sql.NullInt64
		var risk, growth, emotion sql.NullString
		if err := rows.Scan(
			&h.ID, &h.DecisionID, &parentID, &h.Depth, &h.Summary,
			&risk, &growth, &emotion, &h.CreatedAt, &h.Rank,
		); err != nil {
			return nil, err
		}
		if parentID.Valid {
			v := parentID.Int64
			h.ParentID = &v
		}
		h.Annotation = annotationFrom(risk, growth, emotion)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// ─── Restore ─────────────────────────────────────────────────────────────────

// Restore writes a previously exported snapshot back into the store with its
// original IDs, reconstructing an identical tree. Fails with ErrDuplicateRoot
// if the snapshot's session key is already present, and rejects snapshots
// whose nodes violate the depth or linkage invariants.
func (s *Store) Restore(snap *Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	if len(snap.Nodes) > s.cfg.MaxNodes {
		return fmt.Errorf("%w: snapshot has %d nodes, max is %d",
			ErrCapExceeded, len(snap.Nodes), s.cfg.MaxNodes)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("tree: restore: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	d := snap.Decision
	if _, err := tx.Exec(
		`INSERT INTO decisions (id, session_key, statement, timeframe, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.SessionKey, d.Statement, d.Timeframe, d.CreatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateRoot, d.SessionKey)
		}
		return fmt.Errorf("tree: restore decision: %w", err)
	}

	for _, b := range snap.Context {
		if _, err := tx.Exec(
			`INSERT INTO context_blocks (id, decision_id, domain, text, skipped)
			 VALUES (?, ?, ?, ?, ?)`,
			b.ID, b.DecisionID, b.Domain, b.Text, boolToInt(b.Skipped),
		); err != nil {
			return fmt.Errorf("tree: restore context block %s: %w", b.Domain, err)
		}
	}

	for _, n := range snap.Nodes {
		risk, growth, emotion := annotationCols(n.Annotation)
		if _, err := tx.Exec(
			`INSERT INTO branch_nodes (id, decision_id, parent_id, depth, summary, risk, growth, emotion, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			n.ID, n.DecisionID, n.ParentID, n.Depth, n.Summary, risk, growth, emotion, n.CreatedAt,
		); err != nil {
			return fmt.Errorf("tree: restore node %d: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tree: restore: commit: %w", err)
	}
	return nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

type rowLike interface {
	Scan(dest ...any) error
}

func scanNode(row rowLike) (*BranchNode, error) {
	var n BranchNode
	var parentID sql.NullInt64
	var risk, growth, emotion sql.NullString
	if err := row.Scan(
		&n.ID, &n.DecisionID, &parentID, &n.Depth, &n.Summary,
		&risk, &growth, &emotion, &n.CreatedAt,
	); err != nil {
		return nil, err
	}
	if parentID.Valid {
		v := parentID.Int64
		n.ParentID = &v
	}
	n.Annotation = annotationFrom(risk, growth, emotion)
	return &n, nil
}

func annotationFrom(risk, growth, emotion sql.NullString) *Annotation {
	if !risk.Valid && !growth.Valid && !emotion.Valid {
		return nil
	}
	return &Annotation{
		Risk:    risk.String,
		Growth:  growth.String,
		Emotion: emotion.String,
	}
}

func annotationCols(a *Annotation) (risk, growth, emotion *string) {
	if a == nil {
		return nil, nil, nil
	}
	return &a.Risk, &a.Growth, &a.Emotion
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// sanitizeFTS wraps each word in quotes for safe FTS5 queries.
// "move berlin" → `"move" "berlin"`
func sanitizeFTS(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		w = strings.Trim(w, `"`)
		words[i] = `"` + w + `"`
	}
	return strings.Join(words, " ")
}

// isUniqueViolation checks if an error is a SQLite UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Now returns the current time formatted for SQLite.
func Now() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}
