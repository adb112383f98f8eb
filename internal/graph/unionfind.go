package graph

// UnionFind implements union-find with path compression and union by rank
type UnionFind struct {
	parent map[int64]int64
	rank   map[int64]int
	size   map[int64]int
}

// NewUnionFind creates a new UnionFind where each element is its own component
func NewUnionFind(ids []int64) *UnionFind {
	uf := &UnionFind{
		parent: make(map[int64]int64, len(ids)),
		rank:   make(map[int64]int, len(ids)),
		size:   make(map[int64]int, len(ids)),
	}
	for _, id := range ids {
		uf.parent[id] = id
		uf.size[id] = 1
	}
	return uf
}

// Find returns the root of the component containing id. Paths are halved on
// the way up, so deep chains from large imports never recurse.
func (uf *UnionFind) Find(id int64) int64 {
	if _, ok := uf.parent[id]; !ok {
		return id
	}
	for uf.parent[id] != id {
		grand := uf.parent[uf.parent[id]]
		uf.parent[id] = grand
		id = grand
	}
	return id
}

// Union merges the components containing a and b. Returns true if they were separate.
func (uf *UnionFind) Union(a, b int64) bool {
	rootA := uf.Find(a)
	rootB := uf.Find(b)
	if rootA == rootB {
		return false
	}
	if uf.rank[rootA] < uf.rank[rootB] {
		rootA, rootB = rootB, rootA
	}
	uf.parent[rootB] = rootA
	uf.size[rootA] += uf.size[rootB]
	if uf.rank[rootA] == uf.rank[rootB] {
		uf.rank[rootA]++
	}
	return true
}

// Size returns the number of elements in the component of id
func (uf *UnionFind) Size(id int64) int {
	return uf.size[uf.Find(id)]
}

// ComponentSizes returns the size of every component, keyed by root
func (uf *UnionFind) ComponentSizes() map[int64]int {
	sizes := make(map[int64]int)
	for id := range uf.parent {
		if uf.Find(id) == id {
			sizes[id] = uf.size[id]
		}
	}
	return sizes
}
