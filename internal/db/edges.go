package db

import (
	"encoding/json"
	"fmt"
)

// scanEdge scans a row into an Edge. The row must have all 5 columns in standard order.
func scanEdge(scanner interface{ Scan(dest ...any) error }) (Edge, error) {
	var (
		e     Edge
		props string
	)
	if err := scanner.Scan(&e.ID, &e.SourceID, &e.TargetID, &e.Type, &props); err != nil {
		return e, err
	}
	if err := json.Unmarshal([]byte(props), &e.Properties); err != nil {
		return e, fmt.Errorf("decoding properties of edge %d: %w", e.ID, err)
	}
	return e, nil
}

func (d *DB) queryEdges(query string, args ...any) ([]Edge, error) {
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// AllEdges returns all edges
func (d *DB) AllEdges() ([]Edge, error) {
	return d.queryEdges(`SELECT id, source_id, target_id, type, properties FROM edges ORDER BY id`)
}

// EdgesFrom returns the outgoing edges of a node
func (d *DB) EdgesFrom(nodeID int64) ([]Edge, error) {
	return d.queryEdges(`
		SELECT id, source_id, target_id, type, properties
		FROM edges WHERE source_id = ? ORDER BY id
	`, nodeID)
}

// CountEdges returns the number of edges of type, or all edges when
// edgeType is empty
func (d *DB) CountEdges(edgeType string) (int64, error) {
	var count int64
	var err error
	if edgeType == "" {
		err = d.conn.QueryRow(`SELECT COUNT(*) FROM edges`).Scan(&count)
	} else {
		err = d.conn.QueryRow(`SELECT COUNT(*) FROM edges WHERE type = ?`, edgeType).Scan(&count)
	}
	return count, err
}

// EdgeTypeCounts returns the number of edges per type
func (d *DB) EdgeTypeCounts() (map[string]int64, error) {
	rows, err := d.conn.Query(`SELECT type, COUNT(*) FROM edges GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var t string
		var c int64
		if err := rows.Scan(&t, &c); err != nil {
			return nil, err
		}
		counts[t] = c
	}
	return counts, rows.Err()
}
