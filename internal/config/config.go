// Package config provides centralized configuration management.
// Every tunable of the simulation, its HTTP surface and the enemy profiles
// lives here with a default and an optional environment override.
package config

import (
	"os"
	"strconv"
)

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimConfig holds the tick loop and world settings.
type SimConfig struct {
	TPS          int     // Simulation ticks per second
	Seed         int64   // Seed for every enemy RNG
	TileSize     float64 // World units per tile
	LayoutPath   string  // Optional text layout; empty uses the built-in demo
	EventLogPath string  // JSONL event log; empty disables it
	MaxEvents    int     // Events per second written to the log
}

// DefaultSim returns the default simulation configuration.
func DefaultSim() SimConfig {
	return SimConfig{
		TPS:          30,
		Seed:         1,
		TileSize:     1,
		EventLogPath: "events.jsonl",
		MaxEvents:    200,
	}
}

// SimFromEnv returns simulation configuration with environment overrides.
func SimFromEnv() SimConfig {
	cfg := DefaultSim()

	if tps := getEnvInt("SIM_TPS", 0); tps > 0 {
		cfg.TPS = tps
	}
	if v := os.Getenv("SIM_SEED"); v != "" {
		if s, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = s
		}
	}
	if ts := getEnvFloat("TILE_SIZE", 0); ts > 0 {
		cfg.TileSize = ts
	}
	if p := os.Getenv("LAYOUT_PATH"); p != "" {
		cfg.LayoutPath = p
	}
	if p, ok := os.LookupEnv("EVENT_LOG_PATH"); ok {
		cfg.EventLogPath = p
	}
	if n := getEnvInt("EVENT_LOG_RATE", 0); n > 0 {
		cfg.MaxEvents = n
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int
	DebugPort    int      // pprof and metrics; 0 disables
	RateLimit    float64  // Requests per second per IP
	RateBurst    int      // Burst per IP
	AllowOrigins []string // CORS origins
	RenderWidth  int      // Default PNG width for /api/render.png
	RenderHeight int
	AdminToken   string   // Bearer token for mutating endpoints; empty disables the check
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:         3000,
		DebugPort:    6060,
		RateLimit:    20,
		RateBurst:    40,
		AllowOrigins: []string{"*"},
		RenderWidth:  720,
		RenderHeight: 400,
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if p := getEnvInt("DEBUG_PORT", -1); p >= 0 {
		cfg.DebugPort = p
	}
	if r := getEnvFloat("RATE_LIMIT", 0); r > 0 {
		cfg.RateLimit = r
	}
	if b := getEnvInt("RATE_BURST", 0); b > 0 {
		cfg.RateBurst = b
	}
	if o := os.Getenv("CORS_ORIGIN"); o != "" {
		cfg.AllowOrigins = []string{o}
	}
	cfg.AdminToken = os.Getenv("ADMIN_TOKEN")

	return cfg
}

// =============================================================================
// AUDIO CONFIGURATION
// =============================================================================

// AudioConfig holds audio mixer settings.
type AudioConfig struct {
	SampleRate int     // Audio sample rate in Hz
	Volume     float64 // Master volume (0.0 to 1.0)
	Enabled    bool    // Off means every enemy gets a silent engine
	SoundDir   string  // Directory of <key>.wav / <key>.ogg clips
	MaxVoices  int     // Simultaneous one-shot voices
}

// DefaultAudio returns the default audio configuration.
func DefaultAudio() AudioConfig {
	return AudioConfig{
		SampleRate: 44100,
		Volume:     0.5,
		Enabled:    true,
		SoundDir:   "sounds",
		MaxVoices:  16,
	}
}

// AudioFromEnv returns audio configuration with environment overrides.
func AudioFromEnv() AudioConfig {
	cfg := DefaultAudio()

	if v := getEnvFloat("AUDIO_VOLUME", -1); v >= 0 {
		cfg.Volume = v
	}
	if os.Getenv("AUDIO_ENABLED") == "false" {
		cfg.Enabled = false
	}
	if d := os.Getenv("SOUND_DIR"); d != "" {
		cfg.SoundDir = d
	}
	if n := getEnvInt("AUDIO_VOICES", 0); n > 0 {
		cfg.MaxVoices = n
	}

	return cfg
}

// =============================================================================
// ENEMY TUNING
// =============================================================================

// DroneConfig overrides the drone profile. Zero fields keep the profile default.
type DroneConfig struct {
	Speed             float64
	MaxHealth         float64
	DiscoveryDistance float64
	DiscoveryAngle    float64
	StandoffDistance  float64
	ReloadTime        float64
}

// DroneFromEnv reads DRONE_* overrides.
func DroneFromEnv() DroneConfig {
	return DroneConfig{
		Speed:             getEnvFloat("DRONE_SPEED", 0),
		MaxHealth:         getEnvFloat("DRONE_HEALTH", 0),
		DiscoveryDistance: getEnvFloat("DRONE_DISCOVERY", 0),
		DiscoveryAngle:    getEnvFloat("DRONE_FOV", 0),
		StandoffDistance:  getEnvFloat("DRONE_STANDOFF", 0),
		ReloadTime:        getEnvFloat("DRONE_RELOAD", 0),
	}
}

// TurretConfig overrides the turret profile. Zero fields keep the profile default.
type TurretConfig struct {
	MaxHealth  float64
	Inertia    float64
	ReloadTime float64
	Dormant    bool // Start unarmed until damaged
}

// TurretFromEnv reads TURRET_* overrides.
func TurretFromEnv() TurretConfig {
	return TurretConfig{
		MaxHealth:  getEnvFloat("TURRET_HEALTH", 0),
		Inertia:    getEnvFloat("TURRET_INERTIA", 0),
		ReloadTime: getEnvFloat("TURRET_RELOAD", 0),
		Dormant:    os.Getenv("TURRET_DORMANT") == "true",
	}
}

// =============================================================================
// SPATIAL CONFIGURATION
// =============================================================================

// SpatialConfig holds pathfinding settings.
type SpatialConfig struct {
	MaxExpansions int // A* node budget; 0 is unbounded
}

// DefaultSpatial returns the default spatial configuration.
func DefaultSpatial() SpatialConfig {
	return SpatialConfig{
		MaxExpansions: 4096,
	}
}

// SpatialFromEnv returns spatial configuration with environment overrides.
func SpatialFromEnv() SpatialConfig {
	cfg := DefaultSpatial()

	if n := getEnvInt("PATH_MAX_EXPANSIONS", -1); n >= 0 {
		cfg.MaxExpansions = n
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Sim     SimConfig
	Server  ServerConfig
	Audio   AudioConfig
	Drone   DroneConfig
	Turret  TurretConfig
	Spatial SpatialConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Sim:     SimFromEnv(),
		Server:  ServerFromEnv(),
		Audio:   AudioFromEnv(),
		Drone:   DroneFromEnv(),
		Turret:  TurretFromEnv(),
		Spatial: SpatialFromEnv(),
	}
}

// Default returns the configuration with no environment applied.
func Default() AppConfig {
	return AppConfig{
		Sim:     DefaultSim(),
		Server:  DefaultServer(),
		Audio:   DefaultAudio(),
		Spatial: DefaultSpatial(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
