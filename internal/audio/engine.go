// Package audio plays fire-and-forget sound cues for simulation entities.
package audio

// Sound keys and groups used by enemies.
const (
	SoundDroneShot      = "drone_shot"
	SoundTurretShot     = "turret_shot"
	SoundDroneHover     = "drone_hover"
	SoundEnemyHit       = "enemy_hit"
	SoundDroneDeath     = "drone_death"
	SoundTurretDeath    = "turret_death"
	SoundTurretActivate = "turret_activate"

	GroupAlert  = "alert"
	GroupReload = "reload"
)

// Engine is the sound interface entities call. Handles matter only for loops.
type Engine interface {
	PlaySound(key string, volume float64, loop bool) Handle
	PlaySoundFromGroup(group string, volume float64, loop bool) Handle
}

// Handle controls one playing sound.
type Handle interface {
	Stop()
	Playing() bool
}

// Nop is a silent Engine.
type Nop struct{}

func (Nop) PlaySound(string, float64, bool) Handle          { return nopHandle{} }
func (Nop) PlaySoundFromGroup(string, float64, bool) Handle { return nopHandle{} }

type nopHandle struct{}

func (nopHandle) Stop()         {}
func (nopHandle) Playing() bool { return false }

// DefaultGroups maps group keys to their interchangeable clips.
func DefaultGroups() map[string][]string {
	return map[string][]string{
		GroupAlert:  {"alert_1", "alert_2", "alert_3"},
		GroupReload: {"reload_1", "reload_2"},
	}
}
