package world

import "sentinel/internal/geom"

// EffectKind names a transient visual.
type EffectKind string

const (
	EffectTracer EffectKind = "tracer"
	EffectSpark  EffectKind = "spark"
)

// Effect is a short-lived visual such as a shot tracer or hit spark.
type Effect struct {
	Kind  EffectKind `json:"kind" msgpack:"kind"`
	From  geom.Vec2  `json:"from" msgpack:"from"`
	To    geom.Vec2  `json:"to" msgpack:"to"`
	TTL   float64    `json:"ttl" msgpack:"ttl"`
	Age   float64    `json:"age" msgpack:"age"`
	Owner string     `json:"owner,omitempty" msgpack:"owner,omitempty"`
}

// NewTracer creates a tracer from the muzzle to the ray's end point.
func NewTracer(from, to geom.Vec2, owner string) *Effect {
	return &Effect{Kind: EffectTracer, From: from, To: to, TTL: 0.12, Owner: owner}
}

// NewSpark creates a hit spark at p.
func NewSpark(p geom.Vec2, owner string) *Effect {
	return &Effect{Kind: EffectSpark, From: p, To: p, TTL: 0.3, Owner: owner}
}

// Update ages the effect. Returns false when it has expired.
func (e *Effect) Update(dt float64) bool {
	e.Age += dt
	return e.Age < e.TTL
}

// Alpha fades linearly over the lifetime.
func (e *Effect) Alpha() float64 {
	if e.TTL <= 0 {
		return 0
	}
	a := 1 - e.Age/e.TTL
	if a < 0 {
		return 0
	}
	return a
}

// SpawnEffect adds e to the room.
func (r *Room) SpawnEffect(e *Effect) {
	r.effects = append(r.effects, e)
}

// AgeEffects advances every effect and drops expired ones.
func (r *Room) AgeEffects(dt float64) {
	alive := r.effects[:0]
	for _, e := range r.effects {
		if e.Update(dt) {
			alive = append(alive, e)
		}
	}
	for i := len(alive); i < len(r.effects); i++ {
		r.effects[i] = nil
	}
	r.effects = alive
}

// Effects returns the live effects.
func (r *Room) Effects() []*Effect { return r.effects }
