package path

import "sentinel/internal/tile"

// Path is a FIFO of route nodes, nearest first.
type Path struct {
	nodes []*Node
}

// NewPath builds a path from coordinates, mainly for scripted routes.
func NewPath(coords ...tile.Coord) *Path {
	p := &Path{nodes: make([]*Node, len(coords))}
	for i, c := range coords {
		p.nodes[i] = &Node{Coord: c}
	}
	return p
}

func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.nodes)
}

// Peek returns the next node, or nil when drained.
func (p *Path) Peek() *Node { return p.PeekAt(0) }

// PeekAt returns the i-th pending node, or nil.
func (p *Path) PeekAt(i int) *Node {
	if p == nil || i < 0 || i >= len(p.nodes) {
		return nil
	}
	return p.nodes[i]
}

// Pop removes and returns the next node.
func (p *Path) Pop() *Node {
	if p.Len() == 0 {
		return nil
	}
	n := p.nodes[0]
	p.nodes[0] = nil
	p.nodes = p.nodes[1:]
	return n
}

// DropFirst discards the next node.
func (p *Path) DropFirst() { p.Pop() }

// Coords returns the pending tiles in order.
func (p *Path) Coords() []tile.Coord {
	out := make([]tile.Coord, p.Len())
	for i := range out {
		out[i] = p.nodes[i].Coord
	}
	return out
}

// Last returns the final node, or nil.
func (p *Path) Last() *Node { return p.PeekAt(p.Len() - 1) }
