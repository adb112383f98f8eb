package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"
)

const nodeColumns = `n.id, n.properties,
	COALESCE((SELECT group_concat(label, ',') FROM node_labels WHERE node_id = n.id), '')`

var propertyKey = regexp.MustCompile(`^[a-z_]+$`)

// scanNode scans a row of nodeColumns into a Node
func scanNode(scanner interface{ Scan(dest ...any) error }) (Node, error) {
	var (
		n      Node
		props  string
		labels string
	)
	if err := scanner.Scan(&n.ID, &props, &labels); err != nil {
		return n, err
	}
	if err := json.Unmarshal([]byte(props), &n.Properties); err != nil {
		return n, fmt.Errorf("decoding properties of node %d: %w", n.ID, err)
	}
	if labels != "" {
		n.Labels = strings.Split(labels, ",")
	}
	return n, nil
}

// GetNode returns a single node by ID
func (d *DB) GetNode(id int64) (*Node, error) {
	row := d.conn.QueryRow(`SELECT `+nodeColumns+` FROM nodes n WHERE n.id = ?`, id)
	n, err := scanNode(row)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// FindNodesByProperty returns the nodes carrying label whose property key
// equals value
func (d *DB) FindNodesByProperty(label, key string, value any) ([]Node, error) {
	if !propertyKey.MatchString(key) {
		return nil, fmt.Errorf("invalid property key %q", key)
	}
	// the path is inlined so the expression indexes apply
	rows, err := d.conn.Query(`
		SELECT `+nodeColumns+`
		FROM nodes n JOIN node_labels l ON l.node_id = n.id
		WHERE l.label = ? AND json_extract(n.properties, '$.`+key+`') = ?
	`, label, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// AllNodes returns every node ordered by id
func (d *DB) AllNodes() ([]Node, error) {
	rows, err := d.conn.Query(`SELECT ` + nodeColumns + ` FROM nodes n ORDER BY n.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// CountNodes returns the number of nodes with label, or all nodes when
// label is empty
func (d *DB) CountNodes(label string) (int64, error) {
	var count int64
	var err error
	if label == "" {
		err = d.conn.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&count)
	} else {
		err = d.conn.QueryRow(`SELECT COUNT(*) FROM node_labels WHERE label = ?`, label).Scan(&count)
	}
	return count, err
}

// WikiIDs returns the wiki ids of the pages imported for lang
func (d *DB) WikiIDs(lang string) (*roaring.Bitmap, error) {
	rows, err := d.conn.Query(`
		SELECT json_extract(properties, '$.wikiid') FROM nodes
		WHERE json_extract(properties, '$.lang') = ?
	`, lang)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := roaring.New()
	for rows.Next() {
		var wikiID sql.NullString
		if err := rows.Scan(&wikiID); err != nil {
			return nil, err
		}
		id, err := strconv.ParseUint(wikiID.String, 10, 32)
		if err != nil {
			continue
		}
		ids.Add(uint32(id))
	}
	return ids, rows.Err()
}

type rowQueryer interface {
	QueryRow(query string, args ...any) *sql.Row
}

func nodeByWikiID(q rowQueryer, lang, wikiID string) (int64, bool, error) {
	var id int64
	err := q.QueryRow(`
		SELECT id FROM nodes
		WHERE json_extract(properties, '$.wikiid') = ? AND json_extract(properties, '$.lang') = ?
		ORDER BY id DESC LIMIT 1
	`, wikiID, lang).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("looking up %s page %s: %w", lang, wikiID, err)
	}
	return id, true, nil
}

// NodeByWikiID returns the node imported for page wikiID of lang. When a
// page id was imported twice the latest node wins.
func (d *DB) NodeByWikiID(lang, wikiID string) (int64, bool, error) {
	return nodeByWikiID(d.conn, lang, wikiID)
}
