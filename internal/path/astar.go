// Package path finds routes across a room's tile grid.
package path

import (
	"container/heap"
	"math"

	"sentinel/internal/tile"
)

// Grid answers walkability within one room.
type Grid interface {
	Walkable(c tile.Coord) bool
}

// Solver computes a route from start to goal. The result excludes the start
// tile. An unreachable goal yields (nil, false).
type Solver interface {
	SolvePath(start, goal tile.Coord, grid Grid) (*Path, bool)
}

// Node is one step of a route plus the search bookkeeping that produced it.
type Node struct {
	Coord  tile.Coord
	G      float64
	H      float64
	Parent *Node

	seq   uint64
	index int
}

// F is the total estimated cost through the node.
func (n *Node) F() float64 { return n.G + n.H }

type openSet []*Node

func (pq openSet) Len() int { return len(pq) }

// Equal estimates favour the node discovered first.
func (pq openSet) Less(i, j int) bool {
	fi, fj := pq[i].F(), pq[j].F()
	if fi != fj {
		return fi < fj
	}
	return pq[i].seq < pq[j].seq
}

func (pq openSet) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *openSet) Push(x any) {
	n := x.(*Node)
	n.index = len(*pq)
	*pq = append(*pq, n)
}

func (pq *openSet) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// AStar is a 4-directional A* solver with a Euclidean heuristic.
type AStar struct {
	// MaxExpansions bounds the nodes closed per solve; 0 means unlimited.
	MaxExpansions int
}

// NewAStar returns a solver with the given expansion bound.
func NewAStar(maxExpansions int) *AStar {
	return &AStar{MaxExpansions: maxExpansions}
}

func heuristic(a, b tile.Coord) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Z-b.Z))
}

// SolvePath implements Solver. The start tile itself need not be walkable,
// so an entity standing in a doorway can still leave it.
func (s *AStar) SolvePath(start, goal tile.Coord, grid Grid) (*Path, bool) {
	if grid == nil || !grid.Walkable(goal) {
		return nil, false
	}
	if start == goal {
		return &Path{}, true
	}

	var seq uint64
	open := &openSet{}
	heap.Init(open)
	heap.Push(open, &Node{Coord: start, H: heuristic(start, goal), seq: seq})
	gScore := map[tile.Coord]float64{start: 0}
	closed := make(map[tile.Coord]struct{})

	for open.Len() > 0 {
		current := heap.Pop(open).(*Node)
		if _, seen := closed[current.Coord]; seen {
			continue
		}
		closed[current.Coord] = struct{}{}
		if current.Coord == goal {
			return reconstruct(current), true
		}
		if s.MaxExpansions > 0 && len(closed) >= s.MaxExpansions {
			return nil, false
		}

		for _, next := range current.Coord.Neighbors4() {
			if _, seen := closed[next]; seen {
				continue
			}
			if !grid.Walkable(next) {
				continue
			}
			tentative := current.G + 1
			if prev, ok := gScore[next]; ok && tentative >= prev {
				continue
			}
			gScore[next] = tentative
			seq++
			heap.Push(open, &Node{
				Coord:  next,
				G:      tentative,
				H:      heuristic(next, goal),
				Parent: current,
				seq:    seq,
			})
		}
	}
	return nil, false
}

// reconstruct walks parents back to the start, which is left out.
func reconstruct(end *Node) *Path {
	var nodes []*Node
	for n := end; n != nil && n.Parent != nil; n = n.Parent {
		nodes = append(nodes, n)
	}
	for i := 0; i < len(nodes)/2; i++ {
		j := len(nodes) - 1 - i
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return &Path{nodes: nodes}
}
