// Package subgraph extracts radius-bounded neighborhoods of a variation graph.
//
// [Extract] expands from a center segment in both directions independently:
// up to radius parent hops and up to radius child hops. Each direction is a
// breadth-first worklist, so a node's distance is the BFS level at which it
// was first reached in that direction. Nodes reachable only by mixing
// directions (a sibling reached through a shared parent, say) are not part of
// the neighborhood, even when the mixed path is within radius. This is the
// documented selection policy and consumers may rely on the exact node set.
//
// A [Subgraph] keeps its root and end sets current as nodes enter and leave.
// [Subgraph.SetRadius] and [Subgraph.SetCenter] only add newly in-range nodes
// and drop newly out-of-range ones; each membership change rechecks just the
// neighbors it can affect.
package subgraph

import (
	"math"
	"slices"

	errs "github.com/matzehuels/seqtower/pkg/errors"
	"github.com/matzehuels/seqtower/pkg/graph"
)

// Unbounded is a radius that reaches every ancestor and descendant.
const Unbounded = math.MaxInt

// Subgraph is the induced neighborhood of a center segment.
//
// A Subgraph never mutates its graph. It is not safe for concurrent
// SetCenter/SetRadius calls; concurrent reads are fine.
type Subgraph struct {
	g      *graph.Graph
	center int
	radius int

	up   map[int]int // ancestor -> parent hops from center
	down map[int]int // descendant -> child hops from center

	nodes map[int]struct{}
	roots map[int]struct{}
	ends  map[int]struct{}
}

// Extract returns the subgraph of g around center within radius hops.
// Radius 0 yields only the center.
func Extract(g *graph.Graph, center, radius int) (*Subgraph, error) {
	if err := errs.ValidateRadius(radius); err != nil {
		return nil, err
	}
	if _, err := g.Node(center); err != nil {
		return nil, err
	}

	s := &Subgraph{
		g:      g,
		center: center,
		radius: radius,
		nodes:  make(map[int]struct{}),
		roots:  make(map[int]struct{}),
		ends:   make(map[int]struct{}),
	}
	s.up = expand(g.Parents, map[int]int{center: 0}, []int{center}, radius)
	s.down = expand(g.Children, map[int]int{center: 0}, []int{center}, radius)
	for _, id := range s.target(s.up, s.down) {
		s.add(id)
	}
	return s, nil
}

// expand continues a breadth-first search from frontier, whose nodes all sit
// at the same distance in dist, until limit hops. dist is updated in place
// and returned.
func expand(next func(int) []int, dist map[int]int, frontier []int, limit int) map[int]int {
	for len(frontier) > 0 {
		level := dist[frontier[0]]
		if level >= limit {
			break
		}
		var following []int
		for _, id := range frontier {
			for _, n := range next(id) {
				if _, seen := dist[n]; seen {
					continue
				}
				dist[n] = level + 1
				following = append(following, n)
			}
		}
		frontier = following
	}
	return dist
}

// target returns the sorted union of both directions.
func (s *Subgraph) target(up, down map[int]int) []int {
	ids := make([]int, 0, len(up)+len(down))
	for id := range up {
		ids = append(ids, id)
	}
	for id := range down {
		if _, dup := up[id]; !dup {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// add inserts id and rechecks its neighbors.
func (s *Subgraph) add(id int) {
	if _, ok := s.nodes[id]; ok {
		return
	}
	s.nodes[id] = struct{}{}
	s.recheck(id)
	for _, p := range s.g.Parents(id) {
		if s.Contains(p) {
			delete(s.ends, p)
		}
	}
	for _, c := range s.g.Children(id) {
		if s.Contains(c) {
			delete(s.roots, c)
		}
	}
}

// remove drops id and rechecks its neighbors.
func (s *Subgraph) remove(id int) {
	if _, ok := s.nodes[id]; !ok {
		return
	}
	delete(s.nodes, id)
	delete(s.roots, id)
	delete(s.ends, id)
	for _, p := range s.g.Parents(id) {
		if s.Contains(p) {
			s.recheck(p)
		}
	}
	for _, c := range s.g.Children(id) {
		if s.Contains(c) {
			s.recheck(c)
		}
	}
}

// recheck recomputes root and end status of a member.
func (s *Subgraph) recheck(id int) {
	if s.containsAny(s.g.Parents(id)) {
		delete(s.roots, id)
	} else {
		s.roots[id] = struct{}{}
	}
	if s.containsAny(s.g.Children(id)) {
		delete(s.ends, id)
	} else {
		s.ends[id] = struct{}{}
	}
}

func (s *Subgraph) containsAny(ids []int) bool {
	for _, id := range ids {
		if _, ok := s.nodes[id]; ok {
			return true
		}
	}
	return false
}

// SetRadius changes the radius in place. Growing continues the search from
// the current frontier; shrinking drops nodes beyond r.
func (s *Subgraph) SetRadius(r int) error {
	if err := errs.ValidateRadius(r); err != nil {
		return err
	}
	old := s.radius
	s.radius = r
	switch {
	case r > old:
		for _, side := range []struct {
			dist map[int]int
			next func(int) []int
		}{{s.up, s.g.Parents}, {s.down, s.g.Children}} {
			before := len(side.dist)
			expand(side.next, side.dist, frontierAt(side.dist, old), r)
			if len(side.dist) == before {
				continue
			}
			for id, d := range side.dist {
				if d > old {
					s.add(id)
				}
			}
		}
	case r < old:
		for _, dist := range []map[int]int{s.up, s.down} {
			for id, d := range dist {
				if d > r {
					delete(dist, id)
				}
			}
		}
		for _, id := range s.Nodes() {
			_, inUp := s.up[id]
			_, inDown := s.down[id]
			if !inUp && !inDown {
				s.remove(id)
			}
		}
	}
	return nil
}

// frontierAt returns the nodes at exactly level in dist, sorted.
func frontierAt(dist map[int]int, level int) []int {
	var ids []int
	for id, d := range dist {
		if d == level {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// SetCenter moves the center in place, keeping the radius. Nodes in range
// of both centers stay; only the difference is added or removed.
func (s *Subgraph) SetCenter(center int) error {
	if _, err := s.g.Node(center); err != nil {
		return err
	}
	if center == s.center {
		return nil
	}
	up := expand(s.g.Parents, map[int]int{center: 0}, []int{center}, s.radius)
	down := expand(s.g.Children, map[int]int{center: 0}, []int{center}, s.radius)

	for _, id := range s.Nodes() {
		_, inUp := up[id]
		_, inDown := down[id]
		if !inUp && !inDown {
			s.remove(id)
		}
	}
	for _, id := range s.target(up, down) {
		s.add(id)
	}
	s.center, s.up, s.down = center, up, down
	return nil
}

// Graph returns the graph the subgraph was extracted from.
func (s *Subgraph) Graph() *graph.Graph { return s.g }

// Center returns the center segment id.
func (s *Subgraph) Center() int { return s.center }

// Radius returns the current radius.
func (s *Subgraph) Radius() int { return s.radius }

// Len returns the number of member segments.
func (s *Subgraph) Len() int { return len(s.nodes) }

// Contains reports whether id is a member.
func (s *Subgraph) Contains(id int) bool {
	_, ok := s.nodes[id]
	return ok
}

// Nodes returns the member ids in ascending order.
func (s *Subgraph) Nodes() []int { return sortedKeys(s.nodes) }

// Roots returns members without a parent in the subgraph, sorted.
func (s *Subgraph) Roots() []int { return sortedKeys(s.roots) }

// Ends returns members without a child in the subgraph, sorted.
func (s *Subgraph) Ends() []int { return sortedKeys(s.ends) }

// Distance returns the hop distance at which id was reached, the smaller of
// its ancestor and descendant distances.
func (s *Subgraph) Distance(id int) (int, bool) {
	u, inUp := s.up[id]
	d, inDown := s.down[id]
	switch {
	case inUp && inDown:
		return min(u, d), true
	case inUp:
		return u, true
	case inDown:
		return d, true
	}
	return 0, false
}

// Parents returns the parents of id that are members, sorted.
func (s *Subgraph) Parents(id int) []int { return s.filter(s.g.Parents(id)) }

// Children returns the children of id that are members, sorted.
func (s *Subgraph) Children(id int) []int { return s.filter(s.g.Children(id)) }

func (s *Subgraph) filter(ids []int) []int {
	var out []int
	for _, id := range ids {
		if s.Contains(id) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// Edges returns the induced edge set: every link whose endpoints are both
// members, sorted by source then target.
func (s *Subgraph) Edges() []graph.EdgeKey {
	var out []graph.EdgeKey
	for _, id := range s.Nodes() {
		for _, c := range s.Children(id) {
			out = append(out, graph.EdgeKey{From: id, To: c})
		}
	}
	return out
}

func sortedKeys(m map[int]struct{}) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
