package seating

// disjointSet is a union-find over guest ids with path compression and union by rank
type disjointSet struct {
	parent map[string]string
	rank   map[string]int
}

func newDisjointSet(ids []string) *disjointSet {
	ds := &disjointSet{
		parent: make(map[string]string, len(ids)),
		rank:   make(map[string]int, len(ids)),
	}
	for _, id := range ids {
		ds.parent[id] = id
	}
	return ds
}

func (ds *disjointSet) has(id string) bool {
	_, ok := ds.parent[id]
	return ok
}

func (ds *disjointSet) find(id string) string {
	for ds.parent[id] != id {
		ds.parent[id] = ds.parent[ds.parent[id]]
		id = ds.parent[id]
	}
	return id
}

// union merges the sets of a and b; ids outside the set are ignored
func (ds *disjointSet) union(a, b string) {
	if !ds.has(a) || !ds.has(b) {
		return
	}
	ra, rb := ds.find(a), ds.find(b)
	if ra == rb {
		return
	}
	switch {
	case ds.rank[ra] < ds.rank[rb]:
		ds.parent[ra] = rb
	case ds.rank[ra] > ds.rank[rb]:
		ds.parent[rb] = ra
	default:
		ds.parent[rb] = ra
		ds.rank[ra]++
	}
}
