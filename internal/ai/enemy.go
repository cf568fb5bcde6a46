package ai

import (
	"image/color"
	"log"
	"math"
	"math/rand"

	"sentinel/internal/audio"
	"sentinel/internal/geom"
	"sentinel/internal/path"
	"sentinel/internal/physics"
	"sentinel/internal/render"
	"sentinel/internal/world"
)

// Kind names an enemy variant.
type Kind string

const (
	KindDrone  Kind = "drone"
	KindTurret Kind = "turret"
)

// Enemy is what the simulation drives each frame.
type Enemy interface {
	world.Living
	physics.Listener
	render.Drawable

	ID() string
	Kind() Kind
	Update(dt float64)
	Position() geom.Vec2
	Yaw() float64
	State() State
	Active() bool
	Health() float64
	MaxHealth() float64
	Ammo() int
	Collider() *physics.Collider
	Room() *world.Room
	DrainEvents() []Event
}

// Deps are the collaborators an enemy is built with.
type Deps struct {
	Sound  audio.Engine
	Solver path.Solver
	Seed   int64
}

func (d Deps) withDefaults() Deps {
	if d.Sound == nil {
		d.Sound = audio.Nop{}
	}
	if d.Solver == nil {
		d.Solver = path.NewAStar(0)
	}
	return d
}

// core is the state and behaviour shared by every enemy kind.
type core struct {
	id      string
	kind    Kind
	profile Profile

	transform geom.Transform
	collider  *physics.Collider
	room      *world.Room
	sound     audio.Engine
	rng       *rand.Rand

	state     State
	health    float64
	active    bool
	deathCued bool
	weapon    *Weapon

	events []Event
}

func newCore(id string, kind Kind, room *world.Room, pos geom.Vec2, profile Profile, deps Deps, listener physics.Listener) core {
	c := core{
		id:        id,
		kind:      kind,
		profile:   profile,
		transform: geom.NewTransform(pos.XZ(profile.HoverHeight), 0),
		room:      room,
		sound:     deps.Sound,
		rng:       rand.New(rand.NewSource(deps.Seed)),
		health:    profile.MaxHealth,
		active:    true,
		weapon:    NewWeapon(profile.Weapon),
	}
	c.collider = physics.NewCollider(physics.Circle{C: pos, R: profile.Radius}, physics.Enemy, listener)
	return c
}

func (c *core) ID() string                  { return c.id }
func (c *core) Kind() Kind                  { return c.kind }
func (c *core) Position() geom.Vec2         { return c.transform.Planar() }
func (c *core) Yaw() float64                { return c.transform.Yaw() }
func (c *core) State() State                { return c.state }
func (c *core) Active() bool                { return c.active }
func (c *core) Health() float64             { return c.health }
func (c *core) MaxHealth() float64          { return c.profile.MaxHealth }
func (c *core) Ammo() int                   { return c.weapon.Ammo }
func (c *core) Collider() *physics.Collider { return c.collider }
func (c *core) Room() *world.Room           { return c.room }
func (c *core) Weapon() *Weapon             { return c.weapon }

// DrainEvents returns and clears the events since the last call.
func (c *core) DrainEvents() []Event {
	out := c.events
	c.events = nil
	return out
}

func (c *core) emit(e Event) {
	e.Enemy = c.id
	c.events = append(c.events, e)
}

func (c *core) toolkit() Toolkit {
	return Toolkit{Origin: c.Position(), Facing: c.transform.Yaw(), Room: c.room}
}

func (c *core) setState(s State) {
	if s == c.state {
		return
	}
	c.emit(Event{Type: EventStateChange, From: c.state, To: s})
	c.state = s
}

// setPosition moves transform and collider together.
func (c *core) setPosition(p geom.Vec2) {
	c.transform.SetPlanar(p)
	c.collider.SetPosition(p)
}

// lookAt turns toward p by one LookAtFade step.
func (c *core) lookAt(p geom.Vec2) {
	d := p.Sub(c.Position())
	if d.IsZero() {
		return
	}
	c.transform.SetYaw(LookAtFade(c.transform.Yaw(), d.Bearing(), c.profile.Inertia))
}

// advanceWeapon runs the reload cycle and plays the reload cue.
func (c *core) advanceWeapon(dt float64) {
	cue, refilled := c.weapon.Advance(dt)
	if cue {
		c.sound.PlaySoundFromGroup(audio.GroupReload, 1, false)
	}
	if refilled {
		c.emit(Event{Type: EventReload})
	}
}

// tryFire shoots at the player when the weapon allows it.
func (c *core) tryFire(player *world.Player) {
	kit := c.toolkit()
	aim, err := kit.AngleTo(player)
	if err != nil {
		log.Printf("⚠️ %s aim: %v", c.id, err)
		return
	}
	dist, err := kit.DistanceTo(player)
	if err != nil {
		log.Printf("⚠️ %s range: %v", c.id, err)
		return
	}
	if !c.weapon.Ready(aim, dist) {
		return
	}
	bearing, err := kit.BearingTo(player)
	if err != nil {
		log.Printf("⚠️ %s bearing: %v", c.id, err)
		return
	}
	c.fire(bearing + c.weapon.Fire(c.rng))
}

// fire resolves one shot along bearing. The terminal hit sets the tracer end
// and, when it is the player, takes damage. The shot cue always plays.
func (c *core) fire(bearing float64) {
	origin := c.Position()
	dir := geom.FromBearing(bearing)
	spec := c.weapon.Spec
	end := origin.Add(dir.Scale(spec.Range))
	hit := false

	hits, err := physics.Raycast(origin, dir, spec.Range, c.room, physics.SightTerminate, physics.SightExclude)
	if err != nil {
		log.Printf("⚠️ %s shot: %v", c.id, err)
	} else if len(hits) > 0 {
		last := hits[len(hits)-1]
		end = last.Point
		if last.Collider.Layer == physics.Player {
			if living, ok := last.Collider.Listener.(world.Living); ok {
				living.Damage(spec.Damage, c.id)
				hit = true
			}
		}
	}

	c.room.SpawnEffect(world.NewTracer(origin, end, c.id))
	c.sound.PlaySound(spec.Sound, 1, false)
	c.emit(Event{Type: EventShot, Hit: hit, Amount: spec.Damage})
}

// takeDamage applies amount and reports whether it was taken and whether it killed.
func (c *core) takeDamage(amount float64, source string) (taken, killed bool) {
	if !c.active || amount <= 0 {
		return false, false
	}
	c.health = math.Max(0, c.health-amount)
	c.room.SpawnEffect(world.NewSpark(c.Position(), c.id))
	c.sound.PlaySound(audio.SoundEnemyHit, 1, false)
	c.emit(Event{Type: EventDamaged, Amount: amount, Source: source})

	if c.health == 0 {
		c.die()
		return true, true
	}
	return true, false
}

func (c *core) heal(amount float64) {
	if !c.active || amount <= 0 {
		return
	}
	c.health = math.Min(c.profile.MaxHealth, c.health+amount)
}

// die deactivates the enemy and plays its death cue exactly once.
func (c *core) die() {
	c.active = false
	c.room.RemoveCollider(c.collider)
	if c.deathCued {
		return
	}
	c.deathCued = true
	key := audio.SoundDroneDeath
	if c.kind == KindTurret {
		key = audio.SoundTurretDeath
	}
	c.sound.PlaySound(key, 1, false)
	c.emit(Event{Type: EventDeath})
}

// OnCollision ignores pickups and ray-only volumes.
func (c *core) OnCollision(self, other *physics.Collider) bool {
	return other.Layer != physics.Item && other.Layer != physics.RaycastOnly
}

// OnResolution copies the corrected collider position into the transform.
func (c *core) OnResolution(self, other *physics.Collider) {
	c.transform.SetPlanar(self.Position())
}

// drawBody paints the hull and a facing line; wrecks are grey.
func (c *core) drawBody(r render.Renderer, cam render.Camera, tint color.RGBA) {
	if !c.active {
		tint = render.ColorInactive
	}
	r.SetColor(tint)
	model := c.transform.Model()
	x, y := cam.ToScreen(model.MulVec3(geom.Vec3{}).XZ())
	r.FillCircle(x, y, cam.Length(c.profile.Radius))

	nose := model.MulVec3(geom.V3(c.profile.Radius*1.8, 0, 0)).XZ()
	nx, ny := cam.ToScreen(nose)
	r.SetLineWidth(2)
	r.StrokeLine(x, y, nx, ny)
}
