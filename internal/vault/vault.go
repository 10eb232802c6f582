// Package vault is the campaign's general-purpose store: typed, named nodes
// with blob payloads plus links between them, persisted in SQLite.
package vault

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const baselineMigration = `
CREATE TABLE IF NOT EXISTS nodes (
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    meta TEXT,
    data BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS links (
    "left" INTEGER NOT NULL,
    "right" INTEGER NOT NULL,
    type TEXT NOT NULL,
    data BLOB
);
`

// Node is one stored entity. Meta is free-form annotation and may be empty.
type Node struct {
	ID   int64
	Name string
	Type string
	Meta string
	Data []byte
}

// Link connects two nodes directionally with a typed relation.
type Link struct {
	ID    int64
	Left  int64
	Right int64
	Type  string
	Data  []byte
}

// Vault wraps the SQLite handle.
type Vault struct {
	db *sql.DB
}

// Open opens (or creates) the vault database and applies the schema.
func Open(path string) (*Vault, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("vault: storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("vault: open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("vault: ping db: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Vault{db: db}, nil
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("vault: ensure migration table: %w", err)
	}
	var count int
	if err := db.QueryRow(
		"SELECT COUNT(*) FROM schema_migrations WHERE name = ?", "0001_baseline",
	).Scan(&count); err != nil {
		return fmt.Errorf("vault: check migrations: %w", err)
	}
	if count > 0 {
		return nil
	}
	if _, err := db.Exec(baselineMigration); err != nil {
		return fmt.Errorf("vault: apply baseline schema: %w", err)
	}
	if _, err := db.Exec(
		"INSERT OR IGNORE INTO schema_migrations (name, applied_at) VALUES (?, ?)",
		"0001_baseline", time.Now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("vault: record migration: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (v *Vault) Close() error {
	if v == nil || v.db == nil {
		return nil
	}
	return v.db.Close()
}

// InsertNode stores a node and returns its identifier.
func (v *Vault) InsertNode(ctx context.Context, name, nodeType, meta string, data []byte) (int64, error) {
	name = strings.TrimSpace(name)
	nodeType = strings.TrimSpace(nodeType)
	if name == "" || nodeType == "" {
		return 0, fmt.Errorf("vault: node name and type are required")
	}
	var metaVal any
	if strings.TrimSpace(meta) != "" {
		metaVal = meta
	}
	res, err := v.db.ExecContext(ctx,
		"INSERT INTO nodes (name, type, meta, data) VALUES (?, ?, ?, ?)",
		name, nodeType, metaVal, data,
	)
	if err != nil {
		return 0, fmt.Errorf("vault: insert node %s: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("vault: node id: %w", err)
	}
	return id, nil
}

// Nodes returns the nodes matching the filter, in insertion order.
func (v *Vault) Nodes(ctx context.Context, filter Filter) ([]Node, error) {
	where, args := filter.clause()
	rows, err := v.db.QueryContext(ctx,
		"SELECT rowid, name, type, meta, data FROM nodes WHERE "+where+" ORDER BY rowid", args...,
	)
	if err != nil {
		return nil, fmt.Errorf("vault: select nodes: %w", err)
	}
	defer rows.Close()
	var out []Node
	for rows.Next() {
		var node Node
		var meta sql.NullString
		if err := rows.Scan(&node.ID, &node.Name, &node.Type, &meta, &node.Data); err != nil {
			return nil, fmt.Errorf("vault: scan node: %w", err)
		}
		node.Meta = meta.String
		out = append(out, node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vault: iterate nodes: %w", err)
	}
	return out, nil
}

// Node returns a single node by identifier.
func (v *Vault) Node(ctx context.Context, id int64) (Node, error) {
	var node Node
	var meta sql.NullString
	err := v.db.QueryRowContext(ctx,
		"SELECT rowid, name, type, meta, data FROM nodes WHERE rowid = ?", id,
	).Scan(&node.ID, &node.Name, &node.Type, &meta, &node.Data)
	if err != nil {
		return Node{}, fmt.Errorf("vault: node %d: %w", id, err)
	}
	node.Meta = meta.String
	return node, nil
}

// InsertLink stores a directed link between two nodes.
func (v *Vault) InsertLink(ctx context.Context, left, right int64, linkType string, data []byte) (int64, error) {
	linkType = strings.TrimSpace(linkType)
	if linkType == "" {
		return 0, fmt.Errorf("vault: link type is required")
	}
	res, err := v.db.ExecContext(ctx,
		`INSERT INTO links ("left", "right", type, data) VALUES (?, ?, ?, ?)`,
		left, right, linkType, data,
	)
	if err != nil {
		return 0, fmt.Errorf("vault: insert link: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("vault: link id: %w", err)
	}
	return id, nil
}

// LinksFrom returns all links leaving the given node.
func (v *Vault) LinksFrom(ctx context.Context, left int64) ([]Link, error) {
	rows, err := v.db.QueryContext(ctx,
		`SELECT rowid, "left", "right", type, data FROM links WHERE "left" = ? ORDER BY rowid`, left,
	)
	if err != nil {
		return nil, fmt.Errorf("vault: select links: %w", err)
	}
	defer rows.Close()
	var out []Link
	for rows.Next() {
		var link Link
		if err := rows.Scan(&link.ID, &link.Left, &link.Right, &link.Type, &link.Data); err != nil {
			return nil, fmt.Errorf("vault: scan link: %w", err)
		}
		out = append(out, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vault: iterate links: %w", err)
	}
	return out, nil
}
