package db

import "fmt"

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id         INTEGER PRIMARY KEY,
	properties TEXT NOT NULL DEFAULT '{}'
);
CREATE TABLE IF NOT EXISTS node_labels (
	node_id INTEGER NOT NULL REFERENCES nodes(id),
	label   TEXT NOT NULL,
	PRIMARY KEY (node_id, label)
);
CREATE TABLE IF NOT EXISTS edges (
	id         INTEGER PRIMARY KEY,
	source_id  INTEGER NOT NULL REFERENCES nodes(id),
	target_id  INTEGER NOT NULL REFERENCES nodes(id),
	type       TEXT NOT NULL,
	properties TEXT NOT NULL DEFAULT '{}'
);
CREATE TABLE IF NOT EXISTS imports (
	run_id      TEXT NOT NULL,
	lang        TEXT NOT NULL,
	nodes       INTEGER NOT NULL,
	edges       INTEGER NOT NULL,
	started_at  INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	PRIMARY KEY (run_id, lang)
);
`

// indexedProperties are the node properties lookups filter on.
var indexedProperties = []string{"title", "wikiid", "lang"}

func (d *DB) migrate() error {
	if _, err := d.conn.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// CreateIndexes builds the lookup indexes. Creating them after a bulk
// import is much faster than maintaining them during it.
func (d *DB) CreateIndexes() error {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_node_labels_label ON node_labels(label, node_id)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_type ON edges(type)`,
	}
	for _, key := range indexedProperties {
		stmts = append(stmts, fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS idx_nodes_%s ON nodes(json_extract(properties, '$.%s'))`, key, key))
	}
	for _, stmt := range stmts {
		if _, err := d.conn.Exec(stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}
