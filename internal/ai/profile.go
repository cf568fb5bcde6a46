package ai

// Profile tunes one enemy kind.
type Profile struct {
	MaxHealth float64
	Speed     float64 // world units per second
	Radius    float64
	Inertia   float64 // LookAtFade weight; larger turns slower

	DiscoveryDistance float64 // always noticed within this range
	DiscoveryAngle    float64 // noticed in sight inside this half-cone, degrees
	StandoffDistance  float64 // preferred range while attacking
	PathEpsilon       float64 // node reached within this distance
	GlanceInterval    float64 // seconds between focus point glances
	HoverHeight       float64

	// StartArmed is false for turrets that stay dormant until damaged.
	StartArmed bool

	Weapon WeaponSpec
}

// DefaultDroneProfile returns the mobile drone tuning.
func DefaultDroneProfile() Profile {
	return Profile{
		MaxHealth:         100,
		Speed:             1.6,
		Radius:            0.3,
		Inertia:           12,
		DiscoveryDistance: 4,
		DiscoveryAngle:    60,
		StandoffDistance:  3,
		PathEpsilon:       0.05,
		GlanceInterval:    2.5,
		HoverHeight:       0.6,
		StartArmed:        true,
		Weapon:            GetWeapon("blaster"),
	}
}

// DefaultTurretProfile returns the fixed turret tuning.
func DefaultTurretProfile() Profile {
	return Profile{
		MaxHealth:   150,
		Radius:      0.4,
		Inertia:     4,
		HoverHeight: 0,
		StartArmed:  true,
		Weapon:      GetWeapon("autocannon"),
	}
}
