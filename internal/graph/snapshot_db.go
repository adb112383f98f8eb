package graph

import (
	"fmt"

	"graphipedia/dataimport/internal/db"
)

// SnapshotFromDB loads the graph stored in d. A non-empty lang keeps only
// that edition's nodes, so edges leaving it are dropped.
func SnapshotFromDB(d *db.DB, lang string) (*GraphSnapshot, error) {
	stored, err := d.AllNodes()
	if err != nil {
		return nil, fmt.Errorf("reading nodes: %w", err)
	}
	nodes := make([]*NodeInfo, 0, len(stored))
	for _, n := range stored {
		info := &NodeInfo{ID: n.ID, Title: n.String("title"), Lang: n.String("lang"), Labels: n.Labels}
		if lang == "" || info.Lang == lang {
			nodes = append(nodes, info)
		}
	}

	links, err := d.AllEdges()
	if err != nil {
		return nil, fmt.Errorf("reading edges: %w", err)
	}
	edges := make([]EdgeInfo, len(links))
	for i, e := range links {
		edges[i] = EdgeInfo{ID: e.ID, Source: e.SourceID, Target: e.TargetID, Type: e.Type}
	}
	return NewSnapshot(nodes, edges), nil
}
