package ai

import (
	"math"
	"testing"

	"sentinel/internal/audio"
	"sentinel/internal/geom"
	"sentinel/internal/path"
	"sentinel/internal/physics"
	"sentinel/internal/render"
	"sentinel/internal/tile"
	"sentinel/internal/world"
)

func newTestDrone(t *testing.T, rows []string, at tile.Coord, deps Deps) (*world.Map, *Drone) {
	t.Helper()
	m, room := buildRoom(t, rows, at)
	if deps.Seed == 0 {
		deps.Seed = 42
	}
	d := NewDrone("d1", room, m.TileToWorld(at), DefaultDroneProfile(), deps)
	return m, d
}

func TestDroneDiscoveryRadius(t *testing.T) {
	sound := &audio.Recorder{}
	m, d := newTestDrone(t, openRoom, tile.C(2, 2), Deps{Sound: sound})
	if d.State() != Wandering {
		t.Fatalf("Expected Wandering without patrol route, got %s", d.State())
	}

	// Facing away so only the radius can trigger
	d.transform.SetYaw(180)
	placePlayer(m, d.Room(), tile.C(5, 2))

	d.Update(0.016)
	if d.State() != Attacking {
		t.Fatalf("Expected Attacking at distance 3.0, got %s", d.State())
	}
	for i := 0; i < 10; i++ {
		d.Update(0.016)
	}
	if n := sound.Count(audio.GroupAlert); n != 1 {
		t.Errorf("Expected discovery cue exactly once, got %d", n)
	}
}

func TestDroneDiscoveryCone(t *testing.T) {
	tests := []struct {
		name string
		yaw  float64
		want State
	}{
		{"facing player", 0, Attacking},
		{"inside cone", 55, Attacking},
		{"outside cone", 90, Wandering},
		{"behind", 180, Wandering},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, d := newTestDrone(t, openRoom, tile.C(1, 2), Deps{})
			d.transform.SetYaw(tt.yaw)
			// Distance 6, beyond the discovery radius
			placePlayer(m, d.Room(), tile.C(7, 2))
			d.Update(0.016)
			if d.State() != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, d.State())
			}
		})
	}
}

func TestDronePathResolveSuppressed(t *testing.T) {
	solver := &countingSolver{inner: path.NewAStar(0)}
	m, d := newTestDrone(t, ringRoom, tile.C(4, 1), Deps{Solver: solver})
	p := placePlayer(m, d.Room(), tile.C(4, 3))
	d.state = Chasing

	d.Update(0.016)
	d.Update(0.016)
	if solver.calls != 1 {
		t.Fatalf("Expected one solve for an unchanged target tile, got %d", solver.calls)
	}
	if d.State() != Chasing {
		t.Fatalf("Expected Chasing behind the wall, got %s", d.State())
	}

	p.Teleport(m.TileToWorld(tile.C(5, 3)))
	d.Update(0.016)
	if solver.calls != 2 {
		t.Errorf("Expected a re-solve after the target moved, got %d", solver.calls)
	}
}

func TestDroneChasePathIsValid(t *testing.T) {
	m, d := newTestDrone(t, ringRoom, tile.C(4, 1), Deps{})
	placePlayer(m, d.Room(), tile.C(4, 3))
	d.state = Chasing
	d.Update(0.016)

	coords := d.Path().Coords()
	if len(coords) == 0 {
		t.Fatal("Expected a chase path")
	}
	prev := m.WorldToTile(d.Position())
	for i, c := range coords {
		if !d.Room().Walkable(c) {
			t.Errorf("Node %d %v not walkable", i, c)
		}
		if i > 0 && !prev.Adjacent(c) {
			t.Errorf("Node %d %v not adjacent to %v", i, c, prev)
		}
		prev = c
	}
	if coords[len(coords)-1] != tile.C(4, 3) {
		t.Errorf("Expected path to end at the player tile, got %v", coords[len(coords)-1])
	}
}

func TestDroneSightTransitions(t *testing.T) {
	m, d := newTestDrone(t, ringRoom, tile.C(4, 1), Deps{})
	p := placePlayer(m, d.Room(), tile.C(4, 3))
	d.state = Attacking

	d.Update(0.016)
	if d.State() != Chasing {
		t.Fatalf("Expected Chasing once sight is lost, got %s", d.State())
	}

	p.Teleport(m.TileToWorld(tile.C(6, 1)))
	d.Update(0.016)
	if d.State() != Attacking {
		t.Fatalf("Expected Attacking once sight returns, got %s", d.State())
	}

	var changes int
	for _, e := range d.DrainEvents() {
		if e.Type == EventStateChange {
			changes++
		}
	}
	if changes != 2 {
		t.Errorf("Expected 2 state changes, got %d", changes)
	}
}

func TestDronePatrolAdvancesInOrder(t *testing.T) {
	_, d := newTestDrone(t, patrolRoom, tile.C(3, 2), Deps{})
	if d.State() != Patrol {
		t.Fatalf("Expected Patrol with a route, got %s", d.State())
	}
	route := d.Room().PatrolRoute()
	if len(route) != 4 {
		t.Fatalf("Expected 4 route points, got %d", len(route))
	}

	idx := d.PatrolIndex()
	advances := 0
	for i := 0; i < 2000; i++ {
		d.Update(0.05)
		if next := d.PatrolIndex(); next != idx {
			if next != (idx+1)%len(route) {
				t.Fatalf("Patrol skipped from %d to %d", idx, next)
			}
			// The advance happens at the point, then the drone moves one step on
			reached := d.Room().Map().TileToWorld(route[idx])
			if d.Position().Distance(reached) > d.profile.PathEpsilon+d.profile.Speed*0.05 {
				t.Fatalf("Advanced before reaching point %d", idx)
			}
			idx = next
			advances++
		}
	}
	if advances < 8 {
		t.Errorf("Expected at least two laps, got %d advances", advances)
	}
}

func TestDronePatrolRecoversFromPush(t *testing.T) {
	tests := []struct {
		name string
		push float64
	}{
		{"same tile", 0.15},
		{"neighbour tile", 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, d := newTestDrone(t, patrolRoom, tile.C(3, 2), Deps{})
			drained := false
			for i := 0; i < 2000 && !drained; i++ {
				d.Update(0.05)
				drained = d.Path() != nil && d.Path().Len() == 0
			}
			if !drained {
				t.Fatal("Expected the route to a patrol point to drain")
			}

			idx := d.PatrolIndex()
			towardCentre := m.TileToWorld(tile.C(3, 2)).Sub(d.Position()).Normalize()
			d.setPosition(d.Position().Add(towardCentre.Scale(tt.push)))

			for i := 0; i < 200; i++ {
				d.Update(0.05)
				if d.PatrolIndex() != idx {
					return
				}
			}
			t.Errorf("Expected patrol to advance past %d after a push, stuck at %+v", idx, d.Position())
		})
	}
}

func TestDronePatrolStartIsSeeded(t *testing.T) {
	for seed := int64(1); seed < 20; seed++ {
		_, a := newTestDrone(t, patrolRoom, tile.C(3, 2), Deps{Seed: seed})
		_, b := newTestDrone(t, patrolRoom, tile.C(3, 2), Deps{Seed: seed})
		if a.PatrolIndex() != b.PatrolIndex() {
			t.Fatalf("Seed %d gave different start points", seed)
		}
		if a.PatrolIndex() < 0 || a.PatrolIndex() >= 4 {
			t.Fatalf("Start index %d out of range", a.PatrolIndex())
		}
	}
}

func TestDroneMovementNeverOvershoots(t *testing.T) {
	m, d := newTestDrone(t, openRoom, tile.C(1, 1), Deps{})
	target := m.TileToWorld(tile.C(2, 1))
	d.path = path.NewPath(tile.C(2, 1))
	d.hasTarget = true

	for i := 0; i < 100; i++ {
		d.followPath(0.05)
		if d.Position().X > target.X+1e-9 {
			t.Fatalf("Overshot node: %f > %f", d.Position().X, target.X)
		}
	}
	if d.Path().Len() != 0 {
		t.Error("Expected node dequeued on arrival")
	}
	if d.Position().Distance(target) > 1e-9 {
		t.Errorf("Expected drone at node, got %+v", d.Position())
	}
}

func TestDroneAttackHoldsStandoff(t *testing.T) {
	m, d := newTestDrone(t, openRoom, tile.C(1, 2), Deps{})
	cfg := world.DefaultPlayerConfig()
	cfg.MaxHealth = 1e6
	p := world.NewPlayer(m.TileToWorld(tile.C(8, 2)), cfg)
	d.Room().SetPlayer(p)
	d.state = Attacking

	for i := 0; i < 400; i++ {
		d.Update(0.05)
	}
	dist := d.Position().Distance(p.Position())
	if dist < d.profile.StandoffDistance-0.01 || dist > d.profile.StandoffDistance+0.01 {
		t.Errorf("Expected stand-off %f, got %f", d.profile.StandoffDistance, dist)
	}

	p.Teleport(d.Position().Add(geom.V2(1, 0)))
	before := d.Position().Distance(p.Position())
	d.Update(0.05)
	if d.Position().Distance(p.Position()) <= before {
		t.Error("Expected retreat when too close")
	}
}

func TestDroneDamageInterruptsAndDies(t *testing.T) {
	sound := &audio.Recorder{}
	_, d := newTestDrone(t, patrolRoom, tile.C(3, 2), Deps{Sound: sound})
	room := d.Room()
	hover := sound.Handles(audio.SoundDroneHover)
	if len(hover) != 1 || !hover[0].Playing() {
		t.Fatal("Expected a hover loop on spawn")
	}

	d.Damage(10, "test")
	if d.State() != Attacking {
		t.Errorf("Expected hit to force Attacking, got %s", d.State())
	}
	if len(room.Effects()) != 1 || room.Effects()[0].Kind != world.EffectSpark {
		t.Error("Expected a hit spark")
	}

	before := room.Physics().Len()
	d.Damage(500, "test")
	d.Damage(5, "test")
	if d.Active() || d.Health() != 0 {
		t.Errorf("Expected dead drone at 0, got active=%v health=%f", d.Active(), d.Health())
	}
	if n := sound.Count(audio.SoundDroneDeath); n != 1 {
		t.Errorf("Expected death cue exactly once, got %d", n)
	}
	if hover[0].Playing() {
		t.Error("Hover loop should stop on death")
	}
	if room.Physics().Len() != before-1 {
		t.Error("Dead drone should leave the collision set")
	}

	d.Update(0.1)
	if d.State() != Attacking {
		t.Error("Dead drone should not change state")
	}
}

func TestEnemyHealthStaysInRange(t *testing.T) {
	_, d := newTestDrone(t, openRoom, tile.C(2, 2), Deps{})
	ops := []float64{-30, +50, -10, +200, -95, -1, +3, -999, +50}
	for i, op := range ops {
		if op < 0 {
			d.Damage(-op, "test")
		} else {
			d.Heal(op, "test")
		}
		if d.Health() < 0 || d.Health() > d.MaxHealth() {
			t.Fatalf("Step %d: health %f outside [0,%f]", i, d.Health(), d.MaxHealth())
		}
	}
	if d.Health() != 0 {
		t.Errorf("Heal after death should not revive, got %f", d.Health())
	}
}

func TestDroneResolutionSyncsTransform(t *testing.T) {
	m, d := newTestDrone(t, openRoom, tile.C(1, 1), Deps{})
	// Push the hull into the west wall face at x=1
	d.setPosition(geom.V2(1.1, m.TileToWorld(tile.C(1, 1)).Y))
	d.Room().Physics().ResolveAll()

	if d.Position() != d.Collider().Position() {
		t.Errorf("Transform %+v out of sync with collider %+v", d.Position(), d.Collider().Position())
	}
	if d.Position().X < 1+d.profile.Radius-1e-9 {
		t.Errorf("Expected drone pushed out of the wall, got x=%f", d.Position().X)
	}
}

func TestDroneIgnoresItems(t *testing.T) {
	_, d := newTestDrone(t, openRoom, tile.C(2, 2), Deps{})
	item := physics.NewStatic(physics.Circle{C: d.Position(), R: 0.2}, physics.Item)
	if physics.Resolve(d.Collider(), item) {
		t.Error("Drone should pass through items")
	}
}

func TestDroneWanderGlancesAtFocus(t *testing.T) {
	rows := []string{
		"#######",
		"#....f#",
		"#######",
	}
	m, d := newTestDrone(t, rows, tile.C(1, 1), Deps{})
	d.transform.SetYaw(180)
	for i := 0; i < 200; i++ {
		d.Update(0.05)
	}
	focus := m.TileToWorld(tile.C(5, 1))
	want := focus.Sub(d.Position()).Bearing()
	if diff := geom.AngleDiff(d.Yaw(), want); diff > 0.5 || diff < -0.5 {
		t.Errorf("Expected drone to face the focus point, off by %f", diff)
	}
}

func TestDroneDraw(t *testing.T) {
	_, d := newTestDrone(t, openRoom, tile.C(2, 2), Deps{})
	var rec render.Recorder
	d.Draw(&rec, render.NewCamera(10))
	if rec.Count("circle") != 1 || rec.Count("line") != 1 {
		t.Errorf("Expected hull and facing line, got %+v", rec.Ops)
	}
	if d.transform.Dirty() {
		t.Error("Expected drawing to refresh the cached model matrix")
	}

	// Facing +Z the nose sits straight below the hull on screen
	d.transform.SetYaw(90)
	rec.Ops = nil
	d.Draw(&rec, render.NewCamera(10))
	line := rec.Ops[1].Args
	wantY := line[1] + 10*d.profile.Radius*1.8
	if math.Abs(line[2]-line[0]) > 1e-9 || math.Abs(line[3]-wantY) > 1e-9 {
		t.Errorf("Expected nose at (%f,%f), got (%f,%f)", line[0], wantY, line[2], line[3])
	}
}
