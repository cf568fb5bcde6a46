package world

import (
	"math"

	"sentinel/internal/geom"
	"sentinel/internal/physics"
)

// Living is the damage protocol shared by the player and enemies.
type Living interface {
	Damage(amount float64, source string)
	Heal(amount float64, source string)
}

// PlayerConfig tunes the tracked player.
type PlayerConfig struct {
	MaxHealth float64
	Speed     float64
	Radius    float64
}

// DefaultPlayerConfig returns the standard player.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		MaxHealth: 100,
		Speed:     2.5,
		Radius:    0.35,
	}
}

// Player is the target enemies track. Movement is scripted through
// SetDestination since input handling lives elsewhere.
type Player struct {
	transform geom.Transform
	collider  *physics.Collider
	cfg       PlayerConfig

	health      float64
	destination *geom.Vec2
	lastSource  string
	hitsTaken   int
}

// NewPlayer creates a player standing at p.
func NewPlayer(p geom.Vec2, cfg PlayerConfig) *Player {
	pl := &Player{
		transform: geom.NewTransform(p.XZ(0), 0),
		cfg:       cfg,
		health:    cfg.MaxHealth,
	}
	pl.collider = physics.NewCollider(physics.Circle{C: p, R: cfg.Radius}, physics.Player, pl)
	return pl
}

func (p *Player) Collider() *physics.Collider { return p.collider }
func (p *Player) Position() geom.Vec2         { return p.transform.Planar() }
func (p *Player) Transform() *geom.Transform  { return &p.transform }
func (p *Player) Health() float64             { return p.health }
func (p *Player) MaxHealth() float64          { return p.cfg.MaxHealth }
func (p *Player) Alive() bool                 { return p.health > 0 }
func (p *Player) LastDamageSource() string    { return p.lastSource }
func (p *Player) HitsTaken() int              { return p.hitsTaken }

// Teleport places the player at q and clears any destination.
func (p *Player) Teleport(q geom.Vec2) {
	p.transform.SetPlanar(q)
	p.collider.SetPosition(q)
	p.destination = nil
}

// SetDestination makes the player walk toward q on subsequent updates.
func (p *Player) SetDestination(q geom.Vec2) {
	p.destination = &q
}

// Destination returns the current walk target, if any.
func (p *Player) Destination() (geom.Vec2, bool) {
	if p.destination == nil {
		return geom.Vec2{}, false
	}
	return *p.destination, true
}

// Update walks toward the destination without overshooting it.
func (p *Player) Update(dt float64) {
	if p.destination == nil || !p.Alive() {
		return
	}
	if p.MoveToward(*p.destination, dt) {
		p.destination = nil
	}
}

// MoveToward steps toward target at the configured speed, capped by the
// remaining distance. Returns true once the target is reached.
func (p *Player) MoveToward(target geom.Vec2, dt float64) bool {
	pos := p.Position()
	delta := target.Sub(pos)
	dist := delta.Length()
	if dist == 0 {
		return true
	}
	step := math.Min(p.cfg.Speed*dt, dist)
	next := target
	if step < dist {
		next = pos.Add(delta.Scale(step / dist))
	}
	p.transform.SetPlanar(next)
	p.transform.SetYaw(delta.Bearing())
	p.collider.SetPosition(next)
	return step >= dist
}

// Damage implements Living. Health floors at zero.
func (p *Player) Damage(amount float64, source string) {
	if amount <= 0 || !p.Alive() {
		return
	}
	p.health = math.Max(0, p.health-amount)
	p.lastSource = source
	p.hitsTaken++
}

// Heal implements Living. Health caps at the maximum and the dead stay dead.
func (p *Player) Heal(amount float64, source string) {
	if amount <= 0 || !p.Alive() {
		return
	}
	p.health = math.Min(p.cfg.MaxHealth, p.health+amount)
}

// OnCollision ignores pickups and ray-only volumes.
func (p *Player) OnCollision(self, other *physics.Collider) bool {
	return other.Layer != physics.Item && other.Layer != physics.RaycastOnly
}

// OnResolution copies the corrected collider position into the transform.
func (p *Player) OnResolution(self, other *physics.Collider) {
	p.transform.SetPlanar(self.Position())
}
