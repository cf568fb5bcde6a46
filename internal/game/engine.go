// Package game runs the simulation: it owns the map, the player and every
// enemy, advances them on a fixed tick and publishes immutable snapshots.
package game

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"sentinel/internal/ai"
	"sentinel/internal/audio"
	"sentinel/internal/config"
	"sentinel/internal/geom"
	"sentinel/internal/path"
	"sentinel/internal/physics"
	"sentinel/internal/render"
	"sentinel/internal/tile"
	"sentinel/internal/world"
)

var (
	ErrNoMap        = errors.New("engine needs a map")
	ErrUnknownKind  = errors.New("unknown enemy kind")
	ErrNotWalkable  = errors.New("tile is not walkable")
	ErrNoSuchEnemy  = errors.New("no such enemy")
	ErrNoPlayer     = errors.New("no player placed")
	ErrNoSuchRoom   = errors.New("no such room")
	ErrEnemyLimit   = errors.New("enemy limit reached")
	ErrOutOfBounds  = errors.New("position is outside the map")
	ErrBadDimension = errors.New("render size must be positive")
)

// Options configure an Engine.
type Options struct {
	Config config.AppConfig
	Map    *world.Map
	Sound  audio.Engine // nil builds a Mixer from Config.Audio
	Solver path.Solver  // nil uses A* bounded by Config.Spatial
}

// Engine is the simulation loop. Every exported method is safe for
// concurrent use; one mutex serialises ticks against API calls.
type Engine struct {
	mu sync.Mutex

	cfg    config.AppConfig
	m      *world.Map
	solver path.Solver
	sound  audio.Engine
	mixer  *audio.Mixer

	player     *world.Player
	playerRoom *world.Room
	enemies    []ai.Enemy
	byID       map[string]ai.Enemy
	spawned    map[ai.Kind]int

	tickRate       int
	samplesPerTick int
	running        bool
	ticker         *time.Ticker
	stopChan       chan struct{}
	doneChan       chan struct{}

	tickCount     uint64
	counters      Counters
	lastTick      time.Duration
	lastCues      []string
	broadPhaseMax int
	limits        ResourceLimits

	snapshotPool *SnapshotPool
	eventLog     *EventLog

	onTick func(*GameSnapshot)
}

// NewEngine builds an engine over opts.Map and places the player on the
// layout's start marker when it has one.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Map == nil {
		return nil, ErrNoMap
	}
	cfg := opts.Config
	if cfg.Sim.TPS <= 0 {
		cfg.Sim.TPS = config.DefaultSim().TPS
	}

	e := &Engine{
		cfg:          cfg,
		m:            opts.Map,
		solver:       opts.Solver,
		sound:        opts.Sound,
		byID:         make(map[string]ai.Enemy),
		spawned:      make(map[ai.Kind]int),
		tickRate:     cfg.Sim.TPS,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
		limits:       DefaultLimits,
		snapshotPool: NewSnapshotPool(DefaultLimits),
		eventLog:     NewEventLog(cfg.Sim.MaxEvents),
	}
	if e.solver == nil {
		e.solver = path.NewAStar(cfg.Spatial.MaxExpansions)
	}
	if e.sound == nil {
		if cfg.Audio.Enabled {
			e.mixer = audio.NewMixer(audio.MixerConfig{
				SampleRate: cfg.Audio.SampleRate,
				SoundDir:   cfg.Audio.SoundDir,
				Volume:     cfg.Audio.Volume,
				MaxVoices:  cfg.Audio.MaxVoices,
				Seed:       cfg.Sim.Seed,
				Groups:     audio.DefaultGroups(),
			})
			e.sound = e.mixer
			e.samplesPerTick = cfg.Audio.SampleRate / e.tickRate
		} else {
			e.sound = audio.Nop{}
		}
	}

	if start, ok := e.m.PlayerStart(); ok {
		if err := e.placePlayerLocked(start); err != nil {
			return nil, err
		}
	}
	e.produceSnapshotLocked()
	return e, nil
}

// Start begins the game loop
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.ticker = time.NewTicker(time.Second / time.Duration(e.tickRate))
	e.mu.Unlock()

	go func() {
		defer close(e.doneChan)
		dt := 1.0 / float64(e.tickRate)
		for {
			select {
			case <-e.ticker.C:
				e.Step(dt)
			case <-e.stopChan:
				return
			}
		}
	}()

	log.Printf("🎮 Simulation started at %d TPS with %d enemies", e.tickRate, len(e.enemies))
}

// Stop stops the game loop and flushes the event log.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		e.eventLog.Stop()
		return
	}
	e.running = false
	e.ticker.Stop()
	close(e.stopChan)
	e.mu.Unlock()

	<-e.doneChan
	e.eventLog.Stop()
	log.Println("🛑 Simulation stopped")
}

// StartEventLog opens the JSONL event log at filePath.
func (e *Engine) StartEventLog(filePath string) error {
	return e.eventLog.Open(filePath)
}

// StartEventLogWriter streams the event log into w.
func (e *Engine) StartEventLogWriter(w io.Writer) {
	e.eventLog.Start(w)
}

// GetEventLogStats returns event log counters.
func (e *Engine) GetEventLogStats() map[string]interface{} {
	return e.eventLog.GetStats()
}

// OnTick registers fn to receive every published snapshot. fn runs on the
// tick goroutine with the engine lock held and must not call back in.
func (e *Engine) OnTick(fn func(*GameSnapshot)) {
	e.mu.Lock()
	e.onTick = fn
	e.mu.Unlock()
}

// Step advances the simulation by dt seconds.
func (e *Engine) Step(dt float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	started := time.Now()
	e.tickCount++

	active := 0
	for _, en := range e.enemies {
		if en.Active() {
			active++
		}
	}
	e.eventLog.EmitSimple(EventTypeTick, e.tickCount, "", TickPayload{
		Seed:        e.cfg.Sim.Seed,
		EnemyCount:  len(e.enemies),
		ActiveCount: active,
		DeltaTimeNs: int64(dt * 1e9),
	})

	e.updatePlayerLocked(dt)

	for _, en := range e.enemies {
		en.Update(dt)
	}
	e.drainEventsLocked()

	e.broadPhaseMax = 0
	for _, room := range e.m.Rooms() {
		room.Physics().ResolveAll()
		room.AgeEffects(dt)
		if n := room.Physics().BroadPhase().MaxInCell; n > e.broadPhaseMax {
			e.broadPhaseMax = n
		}
	}

	if e.mixer != nil && e.samplesPerTick > 0 {
		e.mixer.Drain(e.samplesPerTick)
		e.counters.SoundsMixed = e.mixer.Played()
		e.lastCues = e.mixer.Cues()
	}

	e.counters.Raycasts, e.counters.Resolutions = physics.Counters()
	e.lastTick = time.Since(started)
	e.produceSnapshotLocked()
}

// updatePlayerLocked walks the player and hands it to the room it now stands in.
func (e *Engine) updatePlayerLocked(dt float64) {
	if e.player == nil {
		return
	}
	if e.player.Alive() {
		e.player.Update(dt)
	}
	e.trackPlayerRoomLocked()
}

// trackPlayerRoomLocked moves the player between rooms. Walls and doors
// belong to no room, so the player stays with the last room it stood in.
func (e *Engine) trackPlayerRoomLocked() {
	room := e.m.RoomAt(e.m.WorldToTile(e.player.Position()))
	if room == nil || room == e.playerRoom {
		return
	}
	if e.playerRoom != nil {
		e.playerRoom.SetPlayer(nil)
	}
	room.SetPlayer(e.player)
	e.playerRoom = room
	log.Printf("🚪 Player entered room %d", room.ID)
}

// drainEventsLocked collects what every enemy did this tick.
func (e *Engine) drainEventsLocked() {
	for _, en := range e.enemies {
		for _, ev := range en.DrainEvents() {
			e.recordLocked(en, ev)
		}
	}
}

func (e *Engine) recordLocked(en ai.Enemy, ev ai.Event) {
	switch ev.Type {
	case ai.EventStateChange:
		e.eventLog.EmitSimple(EventTypeStateChange, e.tickCount, ev.Enemy,
			StatePayload{From: ev.From.String(), To: ev.To.String()})
	case ai.EventShot:
		e.counters.Shots++
		if ev.Hit {
			e.counters.Hits++
			if e.player != nil {
				e.eventLog.EmitSimple(EventTypePlayerDamage, e.tickCount, ev.Enemy,
					PlayerDamagePayload{Amount: ev.Amount, Health: e.player.Health()})
			}
		}
		e.eventLog.EmitSimple(EventTypeShot, e.tickCount, ev.Enemy,
			ShotPayload{Hit: ev.Hit, Damage: ev.Amount})
	case ai.EventReload:
		e.eventLog.EmitSimple(EventTypeReload, e.tickCount, ev.Enemy, nil)
	case ai.EventDamaged:
		e.eventLog.EmitSimple(EventTypeDamage, e.tickCount, ev.Enemy,
			DamagePayload{Amount: ev.Amount, Source: ev.Source, Health: en.Health()})
	case ai.EventDeath:
		e.counters.Kills++
		e.eventLog.EmitSimple(EventTypeDeath, e.tickCount, ev.Enemy, nil)
		log.Printf("💀 %s destroyed", ev.Enemy)
	case ai.EventPathSolve:
		e.counters.PathSolves++
		if !ev.OK {
			e.counters.PathFails++
		}
	case ai.EventDiscover:
		log.Printf("👁️ %s spotted the player", ev.Enemy)
	}
}

// SpawnEnemy places a new enemy of kind on c.
func (e *Engine) SpawnEnemy(kind ai.Kind, c tile.Coord) (ai.Enemy, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	en, err := e.spawnLocked(kind, c)
	if err == nil {
		e.produceSnapshotLocked()
	}
	return en, err
}

func (e *Engine) spawnLocked(kind ai.Kind, c tile.Coord) (ai.Enemy, error) {
	if len(e.enemies) >= e.limits.MaxEnemies {
		return nil, ErrEnemyLimit
	}
	room := e.m.RoomAt(c)
	if room == nil || !room.Walkable(c) {
		return nil, fmt.Errorf("spawn %s at %v: %w", kind, c, ErrNotWalkable)
	}

	e.spawned[kind]++
	id := fmt.Sprintf("%s-%d", kind, e.spawned[kind])
	deps := ai.Deps{
		Sound:  e.sound,
		Solver: e.solver,
		Seed:   e.cfg.Sim.Seed + int64(len(e.enemies)),
	}
	pos := e.m.TileToWorld(c)

	var en ai.Enemy
	switch kind {
	case ai.KindDrone:
		en = ai.NewDrone(id, room, pos, DroneProfile(e.cfg.Drone), deps)
	case ai.KindTurret:
		en = ai.NewTurret(id, room, pos, TurretProfile(e.cfg.Turret), deps)
	default:
		e.spawned[kind]--
		return nil, fmt.Errorf("spawn %q: %w", kind, ErrUnknownKind)
	}

	e.enemies = append(e.enemies, en)
	e.byID[id] = en
	e.eventLog.EmitSimple(EventTypeSpawn, e.tickCount, id,
		SpawnPayload{Kind: string(kind), Room: room.ID, X: pos.X, Z: pos.Y})
	log.Printf("🤖 Spawned %s in room %d at %v", id, room.ID, c)
	return en, nil
}

// SpawnMarkers spawns an enemy on every drone and turret marker of the map.
func (e *Engine) SpawnMarkers() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, s := range e.m.Spawns() {
		var kind ai.Kind
		switch s.Kind {
		case tile.FuncDroneSpawn:
			kind = ai.KindDrone
		case tile.FuncTurretSpawn:
			kind = ai.KindTurret
		default:
			continue
		}
		if _, err := e.spawnLocked(kind, s.Coord); err != nil {
			return n, err
		}
		n++
	}
	e.produceSnapshotLocked()
	return n, nil
}

// Enemy returns the enemy with id.
func (e *Engine) Enemy(id string) (ai.Enemy, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	en, ok := e.byID[id]
	return en, ok
}

// DamageEnemy applies amount to enemy id and reports whether it was destroyed.
func (e *Engine) DamageEnemy(id string, amount float64, source string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, ok := e.byID[id]
	if !ok {
		return false, fmt.Errorf("damage %q: %w", id, ErrNoSuchEnemy)
	}
	en.Damage(amount, source)
	for _, ev := range en.DrainEvents() {
		e.recordLocked(en, ev)
	}
	e.produceSnapshotLocked()
	return !en.Active(), nil
}

// PlacePlayer puts the player on c, creating it on first use.
func (e *Engine) PlacePlayer(c tile.Coord) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.placePlayerLocked(c)
}

func (e *Engine) placePlayerLocked(c tile.Coord) error {
	room := e.m.RoomAt(c)
	if room == nil || !room.Walkable(c) {
		return fmt.Errorf("place player at %v: %w", c, ErrNotWalkable)
	}
	pos := e.m.TileToWorld(c)
	if e.player == nil {
		e.player = world.NewPlayer(pos, world.DefaultPlayerConfig())
	} else {
		e.player.Teleport(pos)
	}
	e.trackPlayerRoomLocked()
	return nil
}

// MovePlayer makes the player walk toward target in world units.
func (e *Engine) MovePlayer(target geom.Vec2) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.player == nil {
		return ErrNoPlayer
	}
	if !e.m.InBounds(e.m.WorldToTile(target)) {
		return fmt.Errorf("move to %+v: %w", target, ErrOutOfBounds)
	}
	e.player.SetDestination(target)
	return nil
}

// HealPlayer restores amount health. Returns false when there is no live player.
func (e *Engine) HealPlayer(amount float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.player == nil || !e.player.Alive() {
		return false
	}
	e.player.Heal(amount, "api")
	return true
}

// SolvePath runs the shared solver between two tiles of the same room.
func (e *Engine) SolvePath(from, to tile.Coord) ([]tile.Coord, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	room := e.m.RoomAt(from)
	if room == nil {
		room = e.m.RoomAt(to)
	}
	if room == nil {
		return nil, false, fmt.Errorf("solve %v to %v: %w", from, to, ErrNoSuchRoom)
	}
	p, ok := e.solver.SolvePath(from, to, room)
	e.counters.PathSolves++
	if !ok {
		e.counters.PathFails++
		return nil, false, nil
	}
	return p.Coords(), true, nil
}

// Map returns the loaded map.
func (e *Engine) Map() *world.Map { return e.m }

// Sound returns the audio engine enemies play through.
func (e *Engine) Sound() audio.Engine { return e.sound }

// TickCount returns the number of completed ticks.
func (e *Engine) TickCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickCount
}

// GetSnapshot returns a private copy of the latest snapshot.
func (e *Engine) GetSnapshot() *GameSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotPool.AcquireRead().Clone()
}

// RenderPNG draws room roomID (or the whole map when roomID is negative)
// into a width x height PNG.
func (e *Engine) RenderPNG(w io.Writer, roomID, width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrBadDimension
	}

	e.mu.Lock()
	canvas := render.NewCanvas(width, height)
	canvas.Clear(render.ColorBackground)

	mw, md := e.m.Bounds()
	scale := float64(width) / mw
	if s := float64(height) / md; s < scale {
		scale = s
	}
	cam := render.NewCamera(scale)

	e.m.DrawTiles(canvas, cam)
	var rooms []*world.Room
	if roomID < 0 {
		rooms = e.m.Rooms()
	} else if room := e.m.Room(roomID); room != nil {
		rooms = []*world.Room{room}
	} else {
		e.mu.Unlock()
		return fmt.Errorf("render room %d: %w", roomID, ErrNoSuchRoom)
	}
	for _, room := range rooms {
		room.Draw(canvas, cam)
	}
	for _, en := range e.enemies {
		if roomID < 0 || en.Room().ID == roomID {
			en.Draw(canvas, cam)
		}
	}
	e.mu.Unlock()

	return canvas.EncodePNG(w)
}

// produceSnapshotLocked fills the next pool slot and publishes it.
func (e *Engine) produceSnapshotLocked() {
	snap := e.snapshotPool.AcquireWrite()
	snap.TickNumber = e.tickCount
	snap.Seed = e.cfg.Sim.Seed
	snap.TickDuration = e.lastTick
	snap.Counters = e.counters
	snap.Cues = append(snap.Cues, e.lastCues...)
	snap.BroadPhaseMaxCell = e.broadPhaseMax
	if e.mixer != nil {
		snap.Voices = e.mixer.Active()
	}

	if e.player != nil {
		ps := e.snapshotPool.PlayerSlot()
		pos := e.player.Position()
		room := tile.NoRoom
		if e.playerRoom != nil {
			room = e.playerRoom.ID
		}
		*ps = PlayerSnapshot{
			X:         pos.X,
			Z:         pos.Y,
			Health:    e.player.Health(),
			MaxHealth: e.player.MaxHealth(),
			Alive:     e.player.Alive(),
			Room:      room,
			HitsTaken: e.player.HitsTaken(),
		}
		snap.Player = ps
	}

	for _, en := range e.enemies {
		snap.EnemyCount++
		if en.Active() {
			snap.ActiveCount++
			snap.ByState[en.State().String()]++
		}
		if len(snap.Enemies) >= e.limits.MaxEnemies {
			continue
		}
		pos := en.Position()
		snap.Enemies = append(snap.Enemies, EnemySnapshot{
			ID:        en.ID(),
			Kind:      string(en.Kind()),
			X:         pos.X,
			Z:         pos.Y,
			Yaw:       en.Yaw(),
			State:     en.State().String(),
			Health:    en.Health(),
			MaxHealth: en.MaxHealth(),
			Ammo:      en.Ammo(),
			Active:    en.Active(),
			Room:      en.Room().ID,
		})
	}

	for _, room := range e.m.Rooms() {
		for _, fx := range room.Effects() {
			if len(snap.Effects) >= e.limits.MaxEffects {
				break
			}
			snap.Effects = append(snap.Effects, EffectSnapshot{
				Kind:  string(fx.Kind),
				X:     fx.From.X,
				Z:     fx.From.Y,
				TX:    fx.To.X,
				TZ:    fx.To.Y,
				Alpha: fx.Alpha(),
				Room:  room.ID,
			})
		}
	}

	e.snapshotPool.PublishWrite()
	if e.onTick != nil {
		e.onTick(snap)
	}
}
