package ai

import (
	"math/rand"

	"sentinel/internal/audio"
)

// WeaponSpec is the static tuning of an enemy weapon.
type WeaponSpec struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Damage     float64 `json:"damage"`
	Range      float64 `json:"range"`
	Magazine   int     `json:"magazine"`
	Cooldown   float64 `json:"cooldown"`   // seconds between shots
	ReloadTime float64 `json:"reloadTime"` // seconds from the last shot to a full magazine
	VoiceDelay float64 `json:"voiceDelay"` // seconds from the last shot to the reload cue
	Inaccuracy float64 `json:"inaccuracy"` // max spread in degrees either side
	Tolerance  float64 `json:"tolerance"`  // max aim error in degrees that still fires
	Sound      string  `json:"sound"`
}

// Weapons lists the available enemy weapons.
var Weapons = map[string]WeaponSpec{
	"blaster": {
		ID:         "blaster",
		Name:       "Drone Blaster",
		Damage:     8,
		Range:      20,
		Magazine:   4,
		Cooldown:   0.6,
		ReloadTime: 2.5,
		VoiceDelay: 0.75,
		Inaccuracy: 4,
		Tolerance:  4,
		Sound:      audio.SoundDroneShot,
	},
	"autocannon": {
		ID:         "autocannon",
		Name:       "Turret Autocannon",
		Damage:     5,
		Range:      25,
		Magazine:   12,
		Cooldown:   0.25,
		ReloadTime: 3.25,
		VoiceDelay: 0.5,
		Inaccuracy: 2.5,
		Tolerance:  6,
		Sound:      audio.SoundTurretShot,
	},
}

// GetWeapon returns a weapon by ID, defaulting to the blaster.
func GetWeapon(id string) WeaponSpec {
	if w, ok := Weapons[id]; ok {
		return w
	}
	return Weapons["blaster"]
}

// Weapon tracks magazine, cooldown and reload progress.
type Weapon struct {
	Spec      WeaponSpec
	Ammo      int
	SinceShot float64
	cueGiven  bool
	reloading bool
}

// NewWeapon returns a loaded weapon ready to fire.
func NewWeapon(spec WeaponSpec) *Weapon {
	return &Weapon{Spec: spec, Ammo: spec.Magazine, SinceShot: spec.Cooldown}
}

// Advance moves the timers forward. While empty it reports the reload cue once
// VoiceDelay has passed, and refills exactly once when ReloadTime has passed.
// Reload time counts from the shot that emptied the magazine, or from the
// first Advance that finds it empty.
func (w *Weapon) Advance(dt float64) (cue, refilled bool) {
	if w.Ammo <= 0 && !w.reloading {
		w.reloading = true
		w.SinceShot = 0
	}
	w.SinceShot += dt
	if w.Ammo > 0 {
		return false, false
	}
	if !w.cueGiven && w.SinceShot >= w.Spec.VoiceDelay {
		w.cueGiven = true
		cue = true
	}
	if w.SinceShot >= w.Spec.ReloadTime {
		w.Ammo = w.Spec.Magazine
		w.cueGiven = false
		w.reloading = false
		refilled = true
	}
	return cue, refilled
}

// Ready reports whether a shot may be taken. Both limits are inclusive.
func (w *Weapon) Ready(aimError, distance float64) bool {
	return w.Ammo > 0 &&
		w.SinceShot >= w.Spec.Cooldown &&
		aimError <= w.Spec.Tolerance &&
		distance <= w.Spec.Range
}

// Fire spends a round and returns the spread to apply, in degrees.
func (w *Weapon) Fire(rng *rand.Rand) float64 {
	w.Ammo--
	w.SinceShot = 0
	w.reloading = w.Ammo <= 0
	return (rng.Float64()*2 - 1) * w.Spec.Inaccuracy
}

// Empty reports whether the magazine is spent.
func (w *Weapon) Empty() bool { return w.Ammo <= 0 }
