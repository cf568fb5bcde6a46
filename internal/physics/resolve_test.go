package physics

import (
	"math"
	"testing"

	"sentinel/internal/geom"
)

type recordingListener struct {
	allow     bool
	collided  int
	resolved  int
	lastOther *Collider
}

func (r *recordingListener) OnCollision(self, other *Collider) bool {
	r.collided++
	r.lastOther = other
	return r.allow
}

func (r *recordingListener) OnResolution(self, other *Collider) {
	r.resolved++
}

func near(a, b geom.Vec2) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestOverlapCircleCircle(t *testing.T) {
	mtv, ok := Overlap(Circle{C: geom.V2(0, 0), R: 1}, Circle{C: geom.V2(1.5, 0), R: 1})
	if !ok {
		t.Fatal("Expected overlap")
	}
	if !near(mtv, geom.V2(-0.5, 0)) {
		t.Errorf("Expected (-0.5,0), got %+v", mtv)
	}

	if _, ok := Overlap(Circle{C: geom.V2(0, 0), R: 1}, Circle{C: geom.V2(3, 0), R: 1}); ok {
		t.Error("Expected no overlap")
	}
}

func TestOverlapCoincidentCircles(t *testing.T) {
	mtv, ok := Overlap(Circle{R: 0.5}, Circle{R: 0.5})
	if !ok || !near(mtv, geom.V2(1, 0)) {
		t.Errorf("Expected fallback push (1,0), got %+v ok=%v", mtv, ok)
	}
}

func TestOverlapCircleSegment(t *testing.T) {
	wall := Segment{A: geom.V2(-5, 0), B: geom.V2(5, 0)}
	mtv, ok := Overlap(Circle{C: geom.V2(1, 0.2), R: 0.5}, wall)
	if !ok || !near(mtv, geom.V2(0, 0.3)) {
		t.Errorf("Expected (0,0.3), got %+v ok=%v", mtv, ok)
	}

	rev, ok := Overlap(wall, Circle{C: geom.V2(1, 0.2), R: 0.5})
	if !ok || !near(rev, geom.V2(0, -0.3)) {
		t.Errorf("Expected reversed (0,-0.3), got %+v", rev)
	}

	if _, ok := Overlap(wall, Segment{A: geom.V2(0, -1), B: geom.V2(0, 1)}); ok {
		t.Error("Segment pairs never overlap")
	}
}

func TestOverlapCompoundPicksDeepest(t *testing.T) {
	body := Compound{Parts: []Shape{
		Circle{C: geom.V2(0, 0), R: 0.5},
		Circle{C: geom.V2(0.6, 0), R: 0.5},
	}}
	mtv, ok := Overlap(Circle{C: geom.V2(1.2, 0), R: 0.5}, body)
	if !ok || !near(mtv, geom.V2(0.4, 0)) {
		t.Errorf("Expected (0.4,0), got %+v", mtv)
	}
}

func TestResolveStaticTakesNoCorrection(t *testing.T) {
	l := &recordingListener{allow: true}
	mover := NewCollider(Circle{C: geom.V2(0, 0.3), R: 0.5}, Player, l)
	wall := NewStatic(Segment{A: geom.V2(-2, 0), B: geom.V2(2, 0)}, Solid)

	if !Resolve(mover, wall) {
		t.Fatal("Expected resolution")
	}
	if !near(mover.Position(), geom.V2(0, 0.5)) {
		t.Errorf("Expected mover at (0,0.5), got %+v", mover.Position())
	}
	if !near(wall.Position(), geom.V2(0, 0)) {
		t.Errorf("Static collider moved to %+v", wall.Position())
	}
	if l.collided != 1 || l.resolved != 1 || l.lastOther != wall {
		t.Errorf("Expected one decide and one sync, got %d/%d", l.collided, l.resolved)
	}
}

func TestResolveDynamicPairSplits(t *testing.T) {
	a := NewCollider(Circle{C: geom.V2(0, 0), R: 1}, Enemy, nil)
	b := NewCollider(Circle{C: geom.V2(1, 0), R: 1}, Enemy, nil)
	Resolve(a, b)
	if !near(a.Position(), geom.V2(-0.5, 0)) || !near(b.Position(), geom.V2(1.5, 0)) {
		t.Errorf("Expected halves applied, got a=%+v b=%+v", a.Position(), b.Position())
	}
}

func TestResolveListenerVeto(t *testing.T) {
	veto := &recordingListener{allow: false}
	other := &recordingListener{allow: true}
	a := NewCollider(Circle{C: geom.V2(0, 0), R: 1}, Player, veto)
	b := NewCollider(Circle{C: geom.V2(1, 0), R: 1}, Item, other)

	if Resolve(a, b) {
		t.Error("Veto should cancel correction")
	}
	if !near(a.Position(), geom.V2(0, 0)) {
		t.Errorf("Vetoed collider moved to %+v", a.Position())
	}
	if veto.resolved != 0 || other.resolved != 0 {
		t.Error("OnResolution must not run after a veto")
	}
	if other.collided != 1 {
		t.Errorf("Both listeners should be asked, got %d", other.collided)
	}
}

func TestWorldResolveAll(t *testing.T) {
	w := NewWorld(10, 10, 1)
	wall := NewStatic(Segment{A: geom.V2(0, 5), B: geom.V2(10, 5)}, Solid)
	a := NewCollider(Circle{C: geom.V2(3, 5.2), R: 0.4}, Enemy, nil)
	b := NewCollider(Circle{C: geom.V2(8, 8), R: 0.4}, Player, nil)
	w.Add(wall)
	w.Add(a)
	w.Add(b)
	w.Add(a)

	if w.Len() != 3 {
		t.Fatalf("Expected 3 colliders, got %d", w.Len())
	}
	if n := w.ResolveAll(); n != 1 {
		t.Errorf("Expected 1 resolved pair, got %d", n)
	}
	if !near(a.Position(), geom.V2(3, 5.4)) {
		t.Errorf("Expected enemy pushed to (3,5.4), got %+v", a.Position())
	}

	if !w.Remove(b) || w.Remove(b) {
		t.Error("Remove should succeed exactly once")
	}
	stats := w.BroadPhase()
	if stats.TotalEntries == 0 || stats.MaxInCell == 0 {
		t.Errorf("Expected the last pass to fill the broad phase, got %+v", stats)
	}
}
