package graph

import (
	"fmt"
	"math/bits"
	"sort"
)

// maxBucket is the index of the open-ended last histogram bucket (4096+).
const maxBucket = 13

// HubNode is a node with high connectivity
type HubNode struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Lang      string `json:"lang"`
	Degree    int    `json:"degree"`
	InDegree  int    `json:"in_degree"`
	OutDegree int    `json:"out_degree"`
}

// DegreeBucket counts the nodes whose degree falls in [Min, Max].
// Max is -1 for the last bucket.
type DegreeBucket struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Count int    `json:"count"`
}

type TopologyReport struct {
	TotalNodes        int            `json:"total_nodes"`
	TotalEdges        int            `json:"total_edges"`
	NumComponents     int            `json:"num_components"`
	LargestComponent  int            `json:"largest_component"`
	SmallestComponent int            `json:"smallest_component"`
	OrphanCount       int            `json:"orphan_count"`
	OrphanIDs         []int64        `json:"orphan_ids"`
	DegreeHistogram   []DegreeBucket `json:"degree_histogram"`
	InDegreeHistogram []DegreeBucket `json:"in_degree_histogram"`
	Hubs              []HubNode      `json:"hubs"`
}

// ComputeTopology reports connected components, orphans, degree
// distributions and the topN nodes whose degree exceeds hubThreshold.
func ComputeTopology(snap *GraphSnapshot, hubThreshold, topN int) *TopologyReport {
	r := &TopologyReport{
		TotalNodes:        len(snap.Nodes),
		TotalEdges:        len(snap.Edges),
		DegreeHistogram:   newHistogram(),
		InDegreeHistogram: newHistogram(),
	}
	if r.TotalNodes == 0 {
		return r
	}

	ids := snap.NodeIDs()
	r.NumComponents, r.LargestComponent, r.SmallestComponent = components(snap, ids)

	for _, id := range ids {
		degree := len(snap.Adj[id])
		in := len(snap.InAdj[id])
		r.DegreeHistogram[bucketOf(degree)].Count++
		r.InDegreeHistogram[bucketOf(in)].Count++

		if degree == 0 {
			r.OrphanCount++
			if len(r.OrphanIDs) < topN {
				r.OrphanIDs = append(r.OrphanIDs, id)
			}
		}
		if degree > hubThreshold {
			node := snap.Nodes[id]
			r.Hubs = append(r.Hubs, HubNode{
				ID:        id,
				Title:     node.Title,
				Lang:      node.Lang,
				Degree:    degree,
				InDegree:  in,
				OutDegree: len(snap.OutAdj[id]),
			})
		}
	}

	// ids are sorted, so equal degrees keep ascending id order
	sort.SliceStable(r.Hubs, func(i, j int) bool { return r.Hubs[i].Degree > r.Hubs[j].Degree })
	if len(r.Hubs) > topN {
		r.Hubs = r.Hubs[:topN]
	}
	return r
}

// components returns the number of weakly connected components and the
// sizes of the largest and smallest one.
func components(snap *GraphSnapshot, ids []int64) (count, largest, smallest int) {
	uf := NewUnionFind(ids)
	for _, e := range snap.Edges {
		uf.Union(e.Source, e.Target)
	}
	sizes := uf.ComponentSizes()
	smallest = len(ids)
	for _, size := range sizes {
		largest = max(largest, size)
		smallest = min(smallest, size)
	}
	return len(sizes), largest, smallest
}

// newHistogram builds power-of-two buckets: 0, 1, 2-3, 4-7 ... 4096+.
func newHistogram() []DegreeBucket {
	h := make([]DegreeBucket, maxBucket+1)
	h[0] = DegreeBucket{Label: "0", Min: 0, Max: 0}
	for i := 1; i <= maxBucket; i++ {
		lo, hi := 1<<(i-1), 1<<i-1
		b := DegreeBucket{Min: lo, Max: hi}
		switch {
		case i == maxBucket:
			b.Max = -1
			b.Label = fmt.Sprintf("%d+", lo)
		case lo == hi:
			b.Label = fmt.Sprint(lo)
		default:
			b.Label = fmt.Sprintf("%d-%d", lo, hi)
		}
		h[i] = b
	}
	return h
}

func bucketOf(degree int) int {
	return min(bits.Len(uint(degree)), maxBucket)
}
