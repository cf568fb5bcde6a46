package ai

import (
	"log"

	"sentinel/internal/audio"
	"sentinel/internal/geom"
	"sentinel/internal/render"
	"sentinel/internal/world"
)

// Turret is the fixed enemy. It is idle (reported as Wandering) or Attacking,
// gated only by line of sight and its armed flag. It never paths.
type Turret struct {
	core

	armed bool
}

// NewTurret places a turret at pos and registers its collider with room.
func NewTurret(id string, room *world.Room, pos geom.Vec2, profile Profile, deps Deps) *Turret {
	deps = deps.withDefaults()
	t := &Turret{armed: profile.StartArmed}
	t.core = newCore(id, KindTurret, room, pos, profile, deps, t)
	t.core.collider.Static = true
	room.AddCollider(t.collider)
	return t
}

// Armed reports whether the turret engages targets.
func (t *Turret) Armed() bool { return t.armed }

// Arm wakes a dormant turret.
func (t *Turret) Arm() {
	if t.armed || !t.active {
		return
	}
	t.armed = true
	t.sound.PlaySound(audio.SoundTurretActivate, 1, false)
}

// Update advances the turret by dt seconds.
func (t *Turret) Update(dt float64) {
	if !t.active {
		return
	}
	t.advanceWeapon(dt)

	player := t.room.Player()
	if !t.armed || player == nil || !player.Alive() {
		t.setState(Wandering)
		return
	}

	sees, err := t.toolkit().HasLineOfSight()
	if err != nil {
		log.Printf("⚠️ %s line of sight: %v", t.id, err)
		return
	}
	if !sees {
		t.setState(Wandering)
		return
	}

	t.setState(Attacking)
	t.lookAt(player.Position())
	t.tryFire(player)
}

// Damage implements world.Living. Being hit arms a dormant turret.
func (t *Turret) Damage(amount float64, source string) {
	taken, killed := t.takeDamage(amount, source)
	if !taken || killed {
		return
	}
	t.Arm()
}

// Heal implements world.Living.
func (t *Turret) Heal(amount float64, source string) { t.heal(amount) }

// Draw implements render.Drawable.
func (t *Turret) Draw(r render.Renderer, cam render.Camera) {
	t.drawBody(r, cam, render.ColorTurret)
}
