package game

import (
	"sentinel/internal/ai"
	"sentinel/internal/config"
)

// DroneProfile applies the non-zero overrides of cfg to the default drone.
func DroneProfile(cfg config.DroneConfig) ai.Profile {
	p := ai.DefaultDroneProfile()
	if cfg.Speed > 0 {
		p.Speed = cfg.Speed
	}
	if cfg.MaxHealth > 0 {
		p.MaxHealth = cfg.MaxHealth
	}
	if cfg.DiscoveryDistance > 0 {
		p.DiscoveryDistance = cfg.DiscoveryDistance
	}
	if cfg.DiscoveryAngle > 0 {
		p.DiscoveryAngle = cfg.DiscoveryAngle
	}
	if cfg.StandoffDistance > 0 {
		p.StandoffDistance = cfg.StandoffDistance
	}
	if cfg.ReloadTime > 0 {
		p.Weapon.ReloadTime = cfg.ReloadTime
	}
	return p
}

// TurretProfile applies the non-zero overrides of cfg to the default turret.
func TurretProfile(cfg config.TurretConfig) ai.Profile {
	p := ai.DefaultTurretProfile()
	if cfg.MaxHealth > 0 {
		p.MaxHealth = cfg.MaxHealth
	}
	if cfg.Inertia > 0 {
		p.Inertia = cfg.Inertia
	}
	if cfg.ReloadTime > 0 {
		p.Weapon.ReloadTime = cfg.ReloadTime
	}
	if cfg.Dormant {
		p.StartArmed = false
	}
	return p
}
