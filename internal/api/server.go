package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"sentinel/internal/config"
	"sentinel/internal/game"

	"github.com/go-chi/chi/v5"
)

// BroadcastInterval is how often connected clients receive a snapshot.
const BroadcastInterval = 100 * time.Millisecond

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with WebSocket hub for real-time updates.
type Server struct {
	engine      *game.Engine
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
	httpServer  *http.Server
}

// NewServer creates the API server for engine.
//
// Background workers do NOT start until Start() is called, so the server
// can be constructed in tests and driven through Router().
func NewServer(engine *game.Engine, cfg config.ServerConfig) *Server {
	s := &Server{
		engine: engine,
		wsHub:  NewWebSocketHub(cfg.AllowOrigins),
	}

	rl := DefaultRateLimitConfig
	if cfg.RateLimit > 0 {
		rl.RequestsPerSecond = cfg.RateLimit
	}
	if cfg.RateBurst > 0 {
		rl.Burst = cfg.RateBurst
	}
	s.rateLimiter = NewIPRateLimiter(rl)

	guard := NewTokenGuard(cfg.AdminToken)
	if guard.Enabled() {
		log.Println("🔐 Admin token required for mutating endpoints")
	}

	s.router = NewRouter(RouterConfig{
		Engine:       engine,
		RateLimiter:  s.rateLimiter,
		CORSOrigins:  cfg.AllowOrigins,
		Guard:        guard,
		RenderWidth:  cfg.RenderWidth,
		RenderHeight: cfg.RenderHeight,
	})
	s.router.Get("/ws", s.wsHub.HandleWebSocket)

	return s
}

// Start starts the broadcast loop and serves on addr until Shutdown.
// Call it only once.
func (s *Server) Start(addr string) error {
	s.wsHub.StartBroadcastLoop(s.engine.GetSnapshot, BroadcastInterval)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("🌐 API server starting on %s", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub exposes the WebSocket hub.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Shutdown stops background workers and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
