package ai

import (
	"log"
	"math"

	"sentinel/internal/audio"
	"sentinel/internal/geom"
	"sentinel/internal/path"
	"sentinel/internal/render"
	"sentinel/internal/tile"
	"sentinel/internal/world"
)

// Drone is the mobile enemy: it patrols or idles, attacks on discovery and
// chases along solved paths when it loses sight of the player.
type Drone struct {
	core

	solver     path.Solver
	path       *path.Path
	lastTarget tile.Coord
	hasTarget  bool

	patrolIndex int
	idleState   State
	glanceTimer float64
	glanceAt    *geom.Vec2
	hover       audio.Handle
}

// NewDrone spawns a drone at pos and registers its collider with room.
// Rooms with a patrol route start it patrolling from a random route point.
func NewDrone(id string, room *world.Room, pos geom.Vec2, profile Profile, deps Deps) *Drone {
	deps = deps.withDefaults()
	d := &Drone{solver: deps.Solver}
	d.core = newCore(id, KindDrone, room, pos, profile, deps, d)

	d.idleState = Wandering
	if route := room.PatrolRoute(); len(route) > 0 {
		d.idleState = Patrol
		d.patrolIndex = d.rng.Intn(len(route))
	}
	d.state = d.idleState
	d.glanceTimer = profile.GlanceInterval

	room.AddCollider(d.collider)
	d.hover = d.sound.PlaySound(audio.SoundDroneHover, 0.4, true)
	return d
}

// PatrolIndex returns the route point currently targeted.
func (d *Drone) PatrolIndex() int { return d.patrolIndex }

// Path returns the pending route, if any.
func (d *Drone) Path() *path.Path { return d.path }

// Update advances the drone by dt seconds.
func (d *Drone) Update(dt float64) {
	if !d.active {
		return
	}
	d.advanceWeapon(dt)

	player := d.room.Player()
	if player == nil || !player.Alive() {
		// Nobody to hunt: fall back to the idle behaviour
		if d.state == Chasing || d.state == Attacking {
			d.setState(d.idleState)
			d.clearPath()
		}
		d.idle(dt)
		return
	}

	kit := d.toolkit()
	sees, err := kit.HasLineOfSight()
	if err != nil {
		log.Printf("⚠️ %s line of sight: %v", d.id, err)
		return
	}

	switch d.state {
	case Wandering, Patrol:
		if d.discovers(kit, player, sees) {
			d.sound.PlaySoundFromGroup(audio.GroupAlert, 1, false)
			d.emit(Event{Type: EventDiscover})
			d.setState(Attacking)
			d.clearPath()
			d.attack(dt, player)
			return
		}
		d.idle(dt)
	case Chasing:
		if sees {
			d.setState(Attacking)
			d.clearPath()
			d.attack(dt, player)
			return
		}
		d.chase(dt, player)
	case Attacking:
		if !sees {
			d.setState(Chasing)
			d.chase(dt, player)
			return
		}
		d.attack(dt, player)
	}
}

// discovers applies: within the discovery radius, OR (in sight AND inside the
// discovery cone).
func (d *Drone) discovers(kit Toolkit, player *world.Player, sees bool) bool {
	dist, err := kit.DistanceTo(player)
	if err != nil {
		return false
	}
	if dist <= d.profile.DiscoveryDistance {
		return true
	}
	if !sees {
		return false
	}
	angle, err := kit.AngleTo(player)
	return err == nil && angle <= d.profile.DiscoveryAngle
}

func (d *Drone) idle(dt float64) {
	if d.state == Patrol {
		d.patrol(dt)
		return
	}
	d.wander(dt)
}

// wander holds position and now and then glances at a room focus point.
func (d *Drone) wander(dt float64) {
	focus := d.room.FocusPoints()
	if len(focus) == 0 {
		return
	}
	d.glanceTimer -= dt
	if d.glanceTimer <= 0 || d.glanceAt == nil {
		p := focus[d.rng.Intn(len(focus))]
		d.glanceAt = &p
		d.glanceTimer = d.profile.GlanceInterval
	}
	d.lookAt(*d.glanceAt)
}

// patrol walks the room route in order, advancing once a point is reached.
func (d *Drone) patrol(dt float64) {
	route := d.room.PatrolRoute()
	if len(route) == 0 {
		d.setState(Wandering)
		d.idleState = Wandering
		return
	}
	m := d.room.Map()
	goal := route[d.patrolIndex%len(route)]
	if d.Position().Distance(m.TileToWorld(goal)) < d.profile.PathEpsilon {
		d.patrolIndex = (d.patrolIndex + 1) % len(route)
		goal = route[d.patrolIndex]
	}
	d.navigate(dt, goal)
}

// chase navigates toward the player's tile.
func (d *Drone) chase(dt float64, player *world.Player) {
	d.navigate(dt, d.room.Map().WorldToTile(player.Position()))
}

// navigate re-solves only when goal differs from the last solved target, then
// follows the path. A drained path with the drone pushed off the goal either
// re-solves from the new tile or settles back onto the goal centre.
func (d *Drone) navigate(dt float64, goal tile.Coord) {
	if !d.hasTarget || goal != d.lastTarget {
		d.solve(goal)
	} else if d.path != nil && d.path.Len() == 0 {
		m := d.room.Map()
		centre := m.TileToWorld(goal)
		switch {
		case d.Position().Distance(centre) < d.profile.PathEpsilon:
		case m.WorldToTile(d.Position()) != goal:
			d.solve(goal)
		default:
			d.lookAt(centre)
			d.moveToward(centre, d.profile.Speed*dt)
			return
		}
	}
	d.followPath(dt)
}

func (d *Drone) solve(goal tile.Coord) {
	m := d.room.Map()
	start := m.WorldToTile(d.Position())
	p, ok := d.solver.SolvePath(start, goal, d.room)
	d.lastTarget = goal
	d.hasTarget = true
	d.emit(Event{Type: EventPathSolve, OK: ok})
	if !ok {
		// Hold position until the target tile changes
		d.path = nil
		return
	}

	// Drop a first node that would send us backwards
	if p.Len() >= 2 {
		first := m.TileToWorld(p.PeekAt(0).Coord)
		second := m.TileToWorld(p.PeekAt(1).Coord)
		if d.Position().Distance(second) < first.Distance(second) {
			p.DropFirst()
		}
	}
	d.path = p
}

func (d *Drone) clearPath() {
	d.path = nil
	d.hasTarget = false
}

// followPath steps toward the next node at fixed speed without overshooting,
// snapping onto a node and dequeuing it once within epsilon.
func (d *Drone) followPath(dt float64) {
	node := d.path.Peek()
	if node == nil {
		return
	}
	target := d.room.Map().TileToWorld(node.Coord)
	d.lookAt(target)
	d.moveToward(target, d.profile.Speed*dt)
	if d.Position().Distance(target) < d.profile.PathEpsilon {
		d.setPosition(target)
		d.path.Pop()
	}
}

// moveToward moves at most step toward target.
func (d *Drone) moveToward(target geom.Vec2, step float64) {
	delta := target.Sub(d.Position())
	dist := delta.Length()
	if dist == 0 || step <= 0 {
		return
	}
	if step >= dist {
		d.setPosition(target)
		return
	}
	d.setPosition(d.Position().Add(delta.Scale(step / dist)))
}

// attack turns toward the player, holds the stand-off distance and fires.
func (d *Drone) attack(dt float64, player *world.Player) {
	target := player.Position()
	d.lookAt(target)

	dist := d.Position().Distance(target)
	step := d.profile.Speed * dt
	gap := dist - d.profile.StandoffDistance
	switch {
	case gap > 0:
		d.moveToward(target, math.Min(step, gap))
	case gap < 0 && dist > 0:
		away := d.Position().Sub(target).Normalize()
		d.moveToward(d.Position().Add(away.Scale(-gap)), math.Min(step, -gap))
	}

	d.tryFire(player)
}

// Damage implements world.Living. A hit forces the drone into attack.
func (d *Drone) Damage(amount float64, source string) {
	taken, killed := d.takeDamage(amount, source)
	if !taken {
		return
	}
	if killed {
		d.clearPath()
		if d.hover != nil {
			d.hover.Stop()
		}
		return
	}
	if d.state != Attacking {
		d.setState(Attacking)
		d.clearPath()
	}
}

// Heal implements world.Living.
func (d *Drone) Heal(amount float64, source string) { d.heal(amount) }

// Draw implements render.Drawable.
func (d *Drone) Draw(r render.Renderer, cam render.Camera) {
	d.drawBody(r, cam, render.ColorDrone)
}
