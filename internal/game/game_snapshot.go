package game

import (
	"sync/atomic"
	"time"
)

// ResourceLimits caps what a snapshot carries.
type ResourceLimits struct {
	MaxEnemies int
	MaxEffects int
}

// DefaultLimits provides production-safe default limits
var DefaultLimits = ResourceLimits{
	MaxEnemies: 128,
	MaxEffects: 256,
}

// PlayerSnapshot is an immutable copy of player state.
type PlayerSnapshot struct {
	X         float64 `json:"x" msgpack:"x"`
	Z         float64 `json:"z" msgpack:"z"`
	Health    float64 `json:"health" msgpack:"health"`
	MaxHealth float64 `json:"maxHealth" msgpack:"maxHealth"`
	Alive     bool    `json:"alive" msgpack:"alive"`
	Room      int     `json:"room" msgpack:"room"`
	HitsTaken int     `json:"hitsTaken" msgpack:"hitsTaken"`
}

// EnemySnapshot is an immutable copy of one enemy.
type EnemySnapshot struct {
	ID        string  `json:"id" msgpack:"id"`
	Kind      string  `json:"kind" msgpack:"kind"`
	X         float64 `json:"x" msgpack:"x"`
	Z         float64 `json:"z" msgpack:"z"`
	Yaw       float64 `json:"yaw" msgpack:"yaw"`
	State     string  `json:"state" msgpack:"state"`
	Health    float64 `json:"health" msgpack:"health"`
	MaxHealth float64 `json:"maxHealth" msgpack:"maxHealth"`
	Ammo      int     `json:"ammo" msgpack:"ammo"`
	Active    bool    `json:"active" msgpack:"active"`
	Room      int     `json:"room" msgpack:"room"`
}

// EffectSnapshot is an immutable tracer or spark.
type EffectSnapshot struct {
	Kind  string  `json:"kind" msgpack:"kind"`
	X     float64 `json:"x" msgpack:"x"`
	Z     float64 `json:"z" msgpack:"z"`
	TX    float64 `json:"tx" msgpack:"tx"`
	TZ    float64 `json:"tz" msgpack:"tz"`
	Alpha float64 `json:"alpha" msgpack:"alpha"`
	Room  int     `json:"room" msgpack:"room"`
}

// Counters are cumulative since the engine started.
type Counters struct {
	Shots       uint64 `json:"shots" msgpack:"shots"`
	Hits        uint64 `json:"hits" msgpack:"hits"`
	Kills       uint64 `json:"kills" msgpack:"kills"`
	PathSolves  uint64 `json:"pathSolves" msgpack:"pathSolves"`
	PathFails   uint64 `json:"pathFails" msgpack:"pathFails"`
	Raycasts    uint64 `json:"raycasts" msgpack:"raycasts"`
	Resolutions uint64 `json:"resolutions" msgpack:"resolutions"`
	SoundsMixed uint64 `json:"soundsMixed" msgpack:"soundsMixed"`
}

// GameSnapshot is a complete immutable simulation state.
type GameSnapshot struct {
	Sequence     uint64        `json:"sequence" msgpack:"sequence"`
	Timestamp    time.Time     `json:"timestamp" msgpack:"timestamp"`
	TickNumber   uint64        `json:"tick" msgpack:"tick"`
	Seed         int64         `json:"seed" msgpack:"seed"`
	TickDuration time.Duration `json:"tickDurationNs" msgpack:"tickDurationNs"`

	Player  *PlayerSnapshot  `json:"player,omitempty" msgpack:"player,omitempty"`
	Enemies []EnemySnapshot  `json:"enemies" msgpack:"enemies"`
	Effects []EffectSnapshot `json:"effects" msgpack:"effects"`

	EnemyCount  int            `json:"enemyCount" msgpack:"enemyCount"`
	ActiveCount int            `json:"activeCount" msgpack:"activeCount"`
	ByState     map[string]int `json:"byState" msgpack:"byState"`
	Counters    Counters       `json:"counters" msgpack:"counters"`

	// Cues are the sound keys started during the tick; Voices is the mixer load.
	Cues   []string `json:"cues,omitempty" msgpack:"cues,omitempty"`
	Voices int      `json:"voices" msgpack:"voices"`

	// BroadPhaseMaxCell is the fullest grid cell of any room's last collision pass.
	BroadPhaseMaxCell int `json:"broadPhaseMaxCell" msgpack:"broadPhaseMaxCell"`
}

// Clone deep-copies the snapshot so it can leave the engine lock.
func (s *GameSnapshot) Clone() *GameSnapshot {
	out := *s
	if s.Player != nil {
		p := *s.Player
		out.Player = &p
	}
	out.Enemies = append([]EnemySnapshot(nil), s.Enemies...)
	out.Effects = append([]EffectSnapshot(nil), s.Effects...)
	out.Cues = append([]string(nil), s.Cues...)
	out.ByState = make(map[string]int, len(s.ByState))
	for k, v := range s.ByState {
		out.ByState[k] = v
	}
	return &out
}

// SnapshotPool triple-buffers snapshots so a tick never allocates new slices.
type SnapshotPool struct {
	snapshots [3]GameSnapshot
	players   [3]PlayerSnapshot
	limits    ResourceLimits
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic - monotonic sequence
}

// NewSnapshotPool creates a pool with pre-allocated slices
func NewSnapshotPool(limits ResourceLimits) *SnapshotPool {
	pool := &SnapshotPool{limits: limits}
	for i := 0; i < 3; i++ {
		pool.snapshots[i] = GameSnapshot{
			Enemies: make([]EnemySnapshot, 0, limits.MaxEnemies),
			Effects: make([]EffectSnapshot, 0, limits.MaxEffects),
			ByState: make(map[string]int, 4),
		}
	}
	return pool
}

// AcquireWrite gets the next write slot with reset slices.
func (p *SnapshotPool) AcquireWrite() *GameSnapshot {
	idx := (atomic.LoadUint32(&p.readIdx) + 1) % 3
	atomic.StoreUint32(&p.writeIdx, idx)
	snap := &p.snapshots[idx]

	snap.Enemies = snap.Enemies[:0]
	snap.Effects = snap.Effects[:0]
	snap.Cues = snap.Cues[:0]
	snap.Voices = 0
	for k := range snap.ByState {
		delete(snap.ByState, k)
	}
	snap.Player = nil
	snap.EnemyCount = 0
	snap.ActiveCount = 0

	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()
	return snap
}

// PlayerSlot returns the player record belonging to the current write slot.
func (p *SnapshotPool) PlayerSlot() *PlayerSnapshot {
	return &p.players[atomic.LoadUint32(&p.writeIdx)%3]
}

// PublishWrite marks the write slot as the latest readable snapshot.
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead returns the latest published snapshot.
func (p *SnapshotPool) AcquireRead() *GameSnapshot {
	return &p.snapshots[atomic.LoadUint32(&p.readIdx)%3]
}

// GetLimits returns the resource limits
func (p *SnapshotPool) GetLimits() ResourceLimits {
	return p.limits
}
