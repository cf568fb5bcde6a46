package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"sentinel/internal/api"
	"sentinel/internal/config"
	"sentinel/internal/game"
	"sentinel/internal/world"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load("../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🤖 ================================")
	log.Println("🤖  SENTINEL - ENEMY AI SIMULATION")
	log.Println("🤖 ================================")

	appConfig := config.Load()
	simCfg := appConfig.Sim
	serverCfg := appConfig.Server

	m, err := loadMap(simCfg)
	if err != nil {
		log.Fatalf("❌ Failed to load layout: %v", err)
	}
	log.Printf("🗺️ Map %dx%d with %d rooms", m.Width(), m.Depth(), len(m.Rooms()))

	engine, err := game.NewEngine(game.Options{Config: appConfig, Map: m})
	if err != nil {
		log.Fatalf("❌ Failed to create engine: %v", err)
	}
	n, err := engine.SpawnMarkers()
	if err != nil {
		log.Printf("⚠️ Some spawn markers were skipped: %v", err)
	}
	log.Printf("👾 Spawned %d enemies from layout markers", n)

	if simCfg.EventLogPath != "" {
		if err := engine.StartEventLog(simCfg.EventLogPath); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
		} else {
			log.Printf("📝 Event log: %s", simCfg.EventLogPath)
		}
	}

	var debugServer interface{ Shutdown(context.Context) error }
	if serverCfg.DebugPort > 0 {
		debugCfg := api.DefaultObservabilityConfig()
		debugCfg.ListenAddr = "127.0.0.1:" + strconv.Itoa(serverCfg.DebugPort)
		debugCfg.BasicAuthUser = os.Getenv("DEBUG_USER")
		debugCfg.BasicAuthPass = os.Getenv("DEBUG_PASS")
		if srv := api.StartDebugServer(debugCfg); srv != nil {
			debugServer = srv
		}
	}

	engine.OnTick(api.ObserveSnapshot)
	engine.Start()

	server := api.NewServer(engine, serverCfg)
	go func() {
		addr := ":" + strconv.Itoa(serverCfg.Port)
		log.Printf("🌐 API:       http://localhost%s/api/state", addr)
		log.Printf("🖼️ Render:    http://localhost%s/api/render.png", addr)
		log.Printf("📡 WebSocket: ws://localhost%s/ws", addr)
		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ API shutdown: %v", err)
	}
	if debugServer != nil {
		debugServer.Shutdown(ctx)
	}
	engine.Stop()
	log.Println("👋 Goodbye!")
}

func loadMap(cfg config.SimConfig) (*world.Map, error) {
	if cfg.LayoutPath != "" {
		log.Printf("🗺️ Loading layout from %s", cfg.LayoutPath)
		return world.LoadLayout(cfg.LayoutPath, cfg.TileSize)
	}
	log.Println("🗺️ No LAYOUT_PATH set, using the demo facility")
	return world.ParseLayout(world.DemoLayout, cfg.TileSize)
}
