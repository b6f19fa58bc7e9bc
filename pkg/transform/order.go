package transform

import (
	"errors"
	"slices"

	errs "github.com/matzehuels/seqtower/pkg/errors"
	"github.com/matzehuels/seqtower/pkg/subgraph"
)

// ErrCycle is wrapped by the error [Sort] returns when the subgraph is not
// acyclic.
var ErrCycle = errors.New("subgraph contains a cycle")

// Layer is a set of nodes sharing the same topological depth.
type Layer struct {
	Depth int
	Nodes []int // ascending
}

// Sort returns the members of sub in topological order.
//
// It repeatedly takes the lowest unplaced id and walks up through its lowest
// unplaced parent until it reaches a node whose parents are all placed, then
// places that node and resumes the walk one step down. Reaching a node that
// is already on the current walk means the remaining nodes form a cycle.
//
// The order depends only on the subgraph's membership and edges, so repeated
// calls return identical results.
func Sort(sub *subgraph.Subgraph) ([]int, error) {
	ids := sub.Nodes()
	order := make([]int, 0, len(ids))
	placed := make(map[int]bool, len(ids))

	for _, start := range ids {
		if placed[start] {
			continue
		}
		path := []int{start}
		onPath := map[int]bool{start: true}
		for len(path) > 0 {
			top := path[len(path)-1]
			parent, ok := firstUnplaced(sub.Parents(top), placed)
			if !ok {
				placed[top] = true
				order = append(order, top)
				delete(onPath, top)
				path = path[:len(path)-1]
				continue
			}
			if onPath[parent] {
				return nil, errs.Wrap(errs.ErrCodeCycle, ErrCycle, "node %d is its own ancestor", parent)
			}
			onPath[parent] = true
			path = append(path, parent)
		}
	}
	return order, nil
}

func firstUnplaced(ids []int, placed map[int]bool) (int, bool) {
	for _, id := range ids {
		if !placed[id] {
			return id, true
		}
	}
	return 0, false
}

// AssignLayers groups a topological order of sub into layers.
//
// A node's depth is one more than the deepest of its in-subgraph parents, or
// 0 when it has none, so every parent sits in a strictly shallower layer than
// each of its children. Nodes within a layer are sorted by id.
func AssignLayers(sub *subgraph.Subgraph, order []int) []Layer {
	depth := make(map[int]int, len(order))
	maxDepth := -1
	for _, id := range order {
		d := 0
		for _, p := range sub.Parents(id) {
			if pd, ok := depth[p]; ok && pd+1 > d {
				d = pd + 1
			}
		}
		depth[id] = d
		maxDepth = max(maxDepth, d)
	}

	layers := make([]Layer, maxDepth+1)
	for i := range layers {
		layers[i].Depth = i
	}
	for _, id := range order {
		d := depth[id]
		layers[d].Nodes = append(layers[d].Nodes, id)
	}
	for i := range layers {
		slices.Sort(layers[i].Nodes)
	}
	return layers
}

// Layers sorts sub and groups the result into layers.
func Layers(sub *subgraph.Subgraph) ([]Layer, error) {
	order, err := Sort(sub)
	if err != nil {
		return nil, err
	}
	return AssignLayers(sub, order), nil
}
