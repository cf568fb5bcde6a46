package path

import (
	"testing"

	"sentinel/internal/tile"
)

// gridOf builds a Grid from rows where '#' blocks.
type gridOf []string

func (g gridOf) Walkable(c tile.Coord) bool {
	if c.Z < 0 || c.Z >= len(g) || c.X < 0 || c.X >= len(g[c.Z]) {
		return false
	}
	return g[c.Z][c.X] != '#'
}

func assertValid(t *testing.T, g gridOf, start, goal tile.Coord, p *Path) {
	t.Helper()
	coords := p.Coords()
	if len(coords) == 0 {
		t.Fatal("Expected non-empty path")
	}
	prev := start
	for i, c := range coords {
		if !prev.Adjacent(c) {
			t.Errorf("Step %d: %v not adjacent to %v", i, c, prev)
		}
		if !g.Walkable(c) {
			t.Errorf("Step %d: %v is blocked", i, c)
		}
		prev = c
	}
	if coords[len(coords)-1] != goal {
		t.Errorf("Expected path to end at %v, got %v", goal, coords[len(coords)-1])
	}
}

func TestSolveStraightLine(t *testing.T) {
	g := gridOf{
		".....",
	}
	p, ok := NewAStar(0).SolvePath(tile.C(0, 0), tile.C(4, 0), g)
	if !ok {
		t.Fatal("Expected a path")
	}
	if p.Len() != 4 {
		t.Errorf("Expected 4 nodes excluding start, got %d", p.Len())
	}
	assertValid(t, g, tile.C(0, 0), tile.C(4, 0), p)
}

func TestSolveAroundWall(t *testing.T) {
	g := gridOf{
		".....",
		".###.",
		".#...",
		".#.#.",
		"...#.",
	}
	start, goal := tile.C(2, 2), tile.C(0, 0)
	p, ok := NewAStar(0).SolvePath(start, goal, g)
	if !ok {
		t.Fatal("Expected a path")
	}
	assertValid(t, g, start, goal, p)

	// Both detours around the wall cost 8
	if p.Len() != 8 {
		t.Errorf("Expected optimal length 8, got %d (%v)", p.Len(), p.Coords())
	}
}

func TestSolveUnreachable(t *testing.T) {
	g := gridOf{
		"..#..",
		"..#..",
		"..#..",
	}
	p, ok := NewAStar(0).SolvePath(tile.C(0, 0), tile.C(4, 2), g)
	if ok || p != nil {
		t.Errorf("Expected no path, got %v", p.Coords())
	}
}

func TestSolveBlockedGoal(t *testing.T) {
	g := gridOf{"..#"}
	if _, ok := NewAStar(0).SolvePath(tile.C(0, 0), tile.C(2, 0), g); ok {
		t.Error("Blocked goal should be unreachable")
	}
}

func TestSolveStartEqualsGoal(t *testing.T) {
	p, ok := NewAStar(0).SolvePath(tile.C(1, 1), tile.C(1, 1), gridOf{"...", "...", "..."})
	if !ok || p.Len() != 0 {
		t.Errorf("Expected empty path, got ok=%v len=%d", ok, p.Len())
	}
}

func TestSolveDeterministicTieBreak(t *testing.T) {
	g := gridOf{
		"....",
		"....",
		"....",
		"....",
	}
	solver := NewAStar(0)
	first, _ := solver.SolvePath(tile.C(0, 0), tile.C(3, 3), g)
	for i := 0; i < 20; i++ {
		again, _ := solver.SolvePath(tile.C(0, 0), tile.C(3, 3), g)
		a, b := first.Coords(), again.Coords()
		if len(a) != len(b) {
			t.Fatalf("Run %d: length changed", i)
		}
		for j := range a {
			if a[j] != b[j] {
				t.Fatalf("Run %d: path differs at %d: %v vs %v", i, j, a[j], b[j])
			}
		}
	}
}

func TestSolveExpansionBound(t *testing.T) {
	g := gridOf{
		"..........",
		"..........",
	}
	if _, ok := NewAStar(3).SolvePath(tile.C(0, 0), tile.C(9, 1), g); ok {
		t.Error("Expected bound to cut the search short")
	}
	if _, ok := NewAStar(0).SolvePath(tile.C(0, 0), tile.C(9, 1), g); !ok {
		t.Error("Expected unbounded search to succeed")
	}
}

func TestPathQueue(t *testing.T) {
	p := NewPath(tile.C(1, 0), tile.C(2, 0), tile.C(3, 0))
	if p.Peek().Coord != tile.C(1, 0) || p.PeekAt(1).Coord != tile.C(2, 0) {
		t.Error("Peek order wrong")
	}
	p.DropFirst()
	if n := p.Pop(); n.Coord != tile.C(2, 0) {
		t.Errorf("Expected (2,0), got %v", n.Coord)
	}
	if p.Last().Coord != tile.C(3, 0) || p.Len() != 1 {
		t.Error("Expected one node left")
	}
	p.Pop()
	if p.Pop() != nil || p.Peek() != nil {
		t.Error("Drained path should return nil")
	}

	var nilPath *Path
	if nilPath.Len() != 0 || nilPath.Peek() != nil {
		t.Error("Nil path should behave as empty")
	}
}

func BenchmarkSolveOpenRoom(b *testing.B) {
	rows := make(gridOf, 32)
	for z := range rows {
		rows[z] = "................................"
	}
	solver := NewAStar(0)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		solver.SolvePath(tile.C(0, 0), tile.C(31, 31), rows)
	}
}
