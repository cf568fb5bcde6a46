package api

import (
	"io"
	"net/http"

	"sentinel/internal/ai"
	"sentinel/internal/game"
	"sentinel/internal/geom"
	"sentinel/internal/tile"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineInterface is the slice of the simulation the HTTP layer calls.
// Tests substitute a mock so no tick loop is needed.
type EngineInterface interface {
	GetSnapshot() *game.GameSnapshot
	SpawnEnemy(kind ai.Kind, c tile.Coord) (ai.Enemy, error)
	DamageEnemy(id string, amount float64, source string) (bool, error)
	MovePlayer(target geom.Vec2) error
	HealPlayer(amount float64) bool
	SolvePath(from, to tile.Coord) ([]tile.Coord, bool, error)
	RenderPNG(w io.Writer, roomID, width, height int) error
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
// Example usage in tests:
//
//	router := api.NewRouter(api.RouterConfig{
//	    Engine:          mockEngine,
//	    RateLimitConfig: &api.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
//	})
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the simulation (required)
	Engine EngineInterface

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is only used if RateLimiter is nil.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins defaults to local development origins when nil.
	CORSOrigins []string

	// Guard protects mutating endpoints. Nil leaves them open.
	Guard *TokenGuard

	// RenderWidth and RenderHeight size /api/render.png when the query omits them.
	RenderWidth, RenderHeight int

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

type routerHandlers struct {
	engine        EngineInterface
	width, height int
}

// NewRouter constructs the HTTP router with all middleware and routes.
// It starts no goroutines besides the rate limiter cleanup and opens no
// listeners, so it is safe to use with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	// Rate limiting before CORS to reject early
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	h := &routerHandlers{
		engine: cfg.Engine,
		width:  cfg.RenderWidth,
		height: cfg.RenderHeight,
	}
	if h.width <= 0 {
		h.width = 720
	}
	if h.height <= 0 {
		h.height = 400
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		if cfg.Guard != nil {
			r.Use(cfg.Guard.Middleware)
		}

		r.Get("/state", h.handleGetState)
		r.Get("/enemies", h.handleListEnemies)
		r.Post("/enemies", h.handleSpawnEnemy)
		r.Post("/enemies/{id}/damage", h.handleDamageEnemy)

		r.Post("/player/move", h.handlePlayerMove)
		r.Post("/player/heal", h.handlePlayerHeal)

		r.Get("/path", h.handleSolvePath)
		r.Get("/render.png", h.handleRender)
	})

	return r
}
