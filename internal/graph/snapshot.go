package graph

import "sort"

// NodeInfo is a lightweight node representation decoupled from DB types
type NodeInfo struct {
	ID     int64
	Title  string
	Lang   string
	Labels []string
}

// HasLabel reports whether the node carries label
func (n *NodeInfo) HasLabel(label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// EdgeInfo is a lightweight edge representation
type EdgeInfo struct {
	ID     int64
	Source int64
	Target int64
	Type   string
}

// GraphSnapshot holds a graph with precomputed adjacency lists
type GraphSnapshot struct {
	Nodes  map[int64]*NodeInfo
	Edges  []EdgeInfo
	Adj    map[int64][]int64 // undirected
	OutAdj map[int64][]int64 // directed: source -> targets
	InAdj  map[int64][]int64 // directed: target -> sources
}

// NewSnapshot builds a GraphSnapshot from raw nodes and edges. Edges with an
// endpoint outside nodes are dropped.
func NewSnapshot(nodes []*NodeInfo, edges []EdgeInfo) *GraphSnapshot {
	nodeMap := make(map[int64]*NodeInfo, len(nodes))
	adj := make(map[int64][]int64, len(nodes))
	outAdj := make(map[int64][]int64, len(nodes))
	inAdj := make(map[int64][]int64, len(nodes))

	for _, n := range nodes {
		nodeMap[n.ID] = n
		adj[n.ID] = nil
		outAdj[n.ID] = nil
		inAdj[n.ID] = nil
	}

	kept := make([]EdgeInfo, 0, len(edges))
	for _, e := range edges {
		if _, ok := nodeMap[e.Source]; !ok {
			continue
		}
		if _, ok := nodeMap[e.Target]; !ok {
			continue
		}
		kept = append(kept, e)
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
		outAdj[e.Source] = append(outAdj[e.Source], e.Target)
		inAdj[e.Target] = append(inAdj[e.Target], e.Source)
	}

	return &GraphSnapshot{
		Nodes:  nodeMap,
		Edges:  kept,
		Adj:    adj,
		OutAdj: outAdj,
		InAdj:  inAdj,
	}
}

// FilterEdgeTypes returns a new snapshot keeping every node but only edges of
// the given types.
func (s *GraphSnapshot) FilterEdgeTypes(types ...string) *GraphSnapshot {
	keep := make(map[string]bool, len(types))
	for _, t := range types {
		keep[t] = true
	}
	nodes := make([]*NodeInfo, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		nodes = append(nodes, n)
	}
	var edges []EdgeInfo
	for _, e := range s.Edges {
		if keep[e.Type] {
			edges = append(edges, e)
		}
	}
	return NewSnapshot(nodes, edges)
}

// NodeIDs returns a sorted list of all node IDs (for deterministic output)
func (s *GraphSnapshot) NodeIDs() []int64 {
	ids := make([]int64, 0, len(s.Nodes))
	for id := range s.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
