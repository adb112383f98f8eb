package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// DefaultBatchSize is the number of writes grouped into one transaction
const DefaultBatchSize = 10000

// Inserter writes nodes and edges in large transactions. It is not safe for
// concurrent use, and reads through the DB only observe what has been
// flushed.
type Inserter struct {
	d         *DB
	batchSize int
	tx        *sql.Tx
	pending   int

	insNode  *sql.Stmt
	insLabel *sql.Stmt
	updNode  *sql.Stmt
	insEdge  *sql.Stmt

	nodes int64
	edges int64
}

// NewInserter returns an inserter committing every batchSize writes
func (d *DB) NewInserter(batchSize int) *Inserter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Inserter{d: d, batchSize: batchSize}
}

func (in *Inserter) begin() error {
	if in.tx != nil {
		return nil
	}
	tx, err := in.d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	prepare := func(query string) *sql.Stmt {
		if err != nil {
			return nil
		}
		var stmt *sql.Stmt
		stmt, err = tx.Prepare(query)
		return stmt
	}
	in.insNode = prepare(`INSERT INTO nodes (properties) VALUES (?)`)
	in.insLabel = prepare(`INSERT OR IGNORE INTO node_labels (node_id, label) VALUES (?, ?)`)
	in.updNode = prepare(`UPDATE nodes SET properties = ? WHERE id = ?`)
	in.insEdge = prepare(`INSERT INTO edges (source_id, target_id, type, properties) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing statements: %w", err)
	}
	in.tx = tx
	in.pending = 0
	return nil
}

func (in *Inserter) wrote() error {
	in.pending++
	if in.pending >= in.batchSize {
		return in.Flush()
	}
	return nil
}

func encodeProperties(props Properties) (string, error) {
	if len(props) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("encoding properties: %w", err)
	}
	return string(b), nil
}

// CreateNode inserts a node with labels and returns its id
func (in *Inserter) CreateNode(labels []string, props Properties) (int64, error) {
	if err := in.begin(); err != nil {
		return 0, err
	}
	encoded, err := encodeProperties(props)
	if err != nil {
		return 0, err
	}
	res, err := in.insNode.Exec(encoded)
	if err != nil {
		return 0, fmt.Errorf("inserting node: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading node id: %w", err)
	}
	for _, label := range labels {
		if _, err := in.insLabel.Exec(id, label); err != nil {
			return 0, fmt.Errorf("labelling node %d: %w", id, err)
		}
	}
	in.nodes++
	return id, in.wrote()
}

// SetNodeProperties replaces the properties of a node
func (in *Inserter) SetNodeProperties(id int64, props Properties) error {
	if err := in.begin(); err != nil {
		return err
	}
	encoded, err := encodeProperties(props)
	if err != nil {
		return err
	}
	if _, err := in.updNode.Exec(encoded, id); err != nil {
		return fmt.Errorf("updating node %d: %w", id, err)
	}
	return in.wrote()
}

// CreateRelationship inserts a typed edge between two existing nodes
func (in *Inserter) CreateRelationship(sourceID, targetID int64, relType string, props Properties) error {
	if err := in.begin(); err != nil {
		return err
	}
	encoded, err := encodeProperties(props)
	if err != nil {
		return err
	}
	if _, err := in.insEdge.Exec(sourceID, targetID, relType, encoded); err != nil {
		return fmt.Errorf("inserting %s edge %d->%d: %w", relType, sourceID, targetID, err)
	}
	in.edges++
	return in.wrote()
}

// NodeByWikiID is DB.NodeByWikiID inside the inserter's transaction, so
// nodes created but not yet flushed are found too
func (in *Inserter) NodeByWikiID(lang, wikiID string) (int64, bool, error) {
	if err := in.begin(); err != nil {
		return 0, false, err
	}
	return nodeByWikiID(in.tx, lang, wikiID)
}

// Flush commits the open transaction, if any
func (in *Inserter) Flush() error {
	if in.tx == nil {
		return nil
	}
	tx := in.tx
	in.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// Counts returns how many nodes and edges this inserter created
func (in *Inserter) Counts() (nodes, edges int64) {
	return in.nodes, in.edges
}

// Close commits outstanding writes
func (in *Inserter) Close() error {
	return in.Flush()
}
