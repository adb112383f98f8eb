package graph

import "sort"

// ArticulationPoint is a node whose removal disconnects the graph
type ArticulationPoint struct {
	ID                  int64  `json:"id"`
	Title               string `json:"title"`
	ComponentsIfRemoved int    `json:"components_if_removed"`
}

// BridgeEdge is an edge whose removal disconnects the graph
type BridgeEdge struct {
	SourceID    int64  `json:"source_id"`
	TargetID    int64  `json:"target_id"`
	SourceTitle string `json:"source_title"`
	TargetTitle string `json:"target_title"`
}

// LanguagePair counts the edges joining two language editions
type LanguagePair struct {
	LangA      string `json:"lang_a"`
	LangB      string `json:"lang_b"`
	CrossEdges int    `json:"cross_edges"`
}

// BridgeReport contains bridge analysis results
type BridgeReport struct {
	ArticulationPoints []ArticulationPoint `json:"articulation_points"`
	BridgeEdges        []BridgeEdge        `json:"bridge_edges"`
	LanguagePairs      []LanguagePair      `json:"language_pairs"`
	APCount            int                 `json:"ap_count"`
	BridgeCount        int                 `json:"bridge_count"`
}

// ComputeBridges finds articulation points, bridge edges, and the number of
// edges between each pair of languages
func ComputeBridges(snap *GraphSnapshot) *BridgeReport {
	if len(snap.Nodes) == 0 {
		return &BridgeReport{}
	}

	nodeIDs := snap.NodeIDs()
	idToIdx := make(map[int64]int, len(nodeIDs))
	for i, id := range nodeIDs {
		idToIdx[id] = i
	}
	n := len(nodeIDs)

	// Build deduplicated undirected adjacency (as indices)
	adjIdx := make([][]int, n)
	type edgePair struct{ u, v int }
	seen := make(map[edgePair]bool)

	for _, e := range snap.Edges {
		u, okU := idToIdx[e.Source]
		v, okV := idToIdx[e.Target]
		if !okU || !okV || u == v {
			continue
		}
		key := edgePair{u, v}
		if u > v {
			key = edgePair{v, u}
		}
		if !seen[key] {
			seen[key] = true
			adjIdx[u] = append(adjIdx[u], v)
			adjIdx[v] = append(adjIdx[v], u)
		}
	}

	disc := make([]int, n)
	low := make([]int, n)
	visited := make([]bool, n)
	isAP := make([]bool, n)
	var bridgePairs [][2]int
	counter := 1

	const noParent = -1

	// Iterative Tarjan for each connected component
	type frame struct {
		node, parent, ni int
	}

	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}

		visited[start] = true
		disc[start] = counter
		low[start] = counter
		counter++

		stack := []frame{{start, noParent, 0}}
		rootChildren := 0

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			node := top.node

			if top.ni < len(adjIdx[node]) {
				child := adjIdx[node][top.ni]
				top.ni++

				if child == top.parent {
					continue
				}
				if visited[child] {
					if disc[child] < low[node] {
						low[node] = disc[child]
					}
					continue
				}

				visited[child] = true
				disc[child] = counter
				low[child] = counter
				counter++
				if node == start {
					rootChildren++
				}
				stack = append(stack, frame{child, node, 0})
				continue
			}

			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				continue
			}
			pn := stack[len(stack)-1].node
			if low[node] < low[pn] {
				low[pn] = low[node]
			}
			if low[node] > disc[pn] {
				bridgePairs = append(bridgePairs, [2]int{pn, node})
			}
			if pn != start && low[node] >= disc[pn] {
				isAP[pn] = true
			}
		}

		if rootChildren >= 2 {
			isAP[start] = true
		}
	}

	var aps []ArticulationPoint
	for i := 0; i < n; i++ {
		if isAP[i] {
			id := nodeIDs[i]
			aps = append(aps, ArticulationPoint{
				ID:                  id,
				Title:               snap.Nodes[id].Title,
				ComponentsIfRemoved: len(adjIdx[i]),
			})
		}
	}

	var bridges []BridgeEdge
	for _, pair := range bridgePairs {
		uid := nodeIDs[pair[0]]
		vid := nodeIDs[pair[1]]
		bridges = append(bridges, BridgeEdge{
			SourceID:    uid,
			TargetID:    vid,
			SourceTitle: snap.Nodes[uid].Title,
			TargetTitle: snap.Nodes[vid].Title,
		})
	}

	return &BridgeReport{
		ArticulationPoints: aps,
		BridgeEdges:        bridges,
		LanguagePairs:      languagePairs(snap),
		APCount:            len(aps),
		BridgeCount:        len(bridges),
	}
}

// languagePairs counts edges whose endpoints belong to different languages,
// fewest first.
func languagePairs(snap *GraphSnapshot) []LanguagePair {
	type langPair struct{ a, b string }
	counts := make(map[langPair]int)
	for _, e := range snap.Edges {
		la := snap.Nodes[e.Source].Lang
		lb := snap.Nodes[e.Target].Lang
		if la == lb {
			continue
		}
		key := langPair{la, lb}
		if la > lb {
			key = langPair{lb, la}
		}
		counts[key]++
	}

	pairs := make([]LanguagePair, 0, len(counts))
	for pair, count := range counts {
		pairs = append(pairs, LanguagePair{LangA: pair.a, LangB: pair.b, CrossEdges: count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].CrossEdges != pairs[j].CrossEdges {
			return pairs[i].CrossEdges < pairs[j].CrossEdges
		}
		if pairs[i].LangA != pairs[j].LangA {
			return pairs[i].LangA < pairs[j].LangA
		}
		return pairs[i].LangB < pairs[j].LangB
	})
	return pairs
}
