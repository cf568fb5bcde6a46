// Command replay runs the simulation headless for a fixed number of ticks,
// writing PNG frames and the JSONL event log. Runs with the same seed and
// layout produce the same frames.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"sentinel/internal/audio"
	"sentinel/internal/config"
	"sentinel/internal/game"
	"sentinel/internal/world"

	"github.com/joho/godotenv"
)

func main() {
	ticks := flag.Int("ticks", 300, "ticks to simulate")
	every := flag.Int("every", 30, "write a frame every N ticks (0 disables frames)")
	outDir := flag.String("out", "replay", "output directory")
	room := flag.Int("room", -1, "room to render (-1 renders the whole map)")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	}

	appConfig := config.Load()
	simCfg := appConfig.Sim

	var m *world.Map
	var err error
	if simCfg.LayoutPath != "" {
		m, err = world.LoadLayout(simCfg.LayoutPath, simCfg.TileSize)
	} else {
		m, err = world.ParseLayout(world.DemoLayout, simCfg.TileSize)
	}
	if err != nil {
		log.Fatalf("❌ Failed to load layout: %v", err)
	}

	// Headless runs never open an output device.
	engine, err := game.NewEngine(game.Options{Config: appConfig, Map: m, Sound: audio.Nop{}})
	if err != nil {
		log.Fatalf("❌ Failed to create engine: %v", err)
	}
	if _, err := engine.SpawnMarkers(); err != nil {
		log.Printf("⚠️ Some spawn markers were skipped: %v", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("❌ Output directory: %v", err)
	}
	if err := engine.StartEventLog(filepath.Join(*outDir, "events.jsonl")); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
	}

	log.Printf("🎬 Replaying %d ticks at %d TPS (seed %d)", *ticks, simCfg.TPS, simCfg.Seed)
	dt := 1.0 / float64(simCfg.TPS)
	frames := 0
	for i := 1; i <= *ticks; i++ {
		engine.Step(dt)
		if *every > 0 && i%*every == 0 {
			if err := writeFrame(engine, *outDir, i, *room, appConfig.Server); err != nil {
				log.Fatalf("❌ Frame %d: %v", i, err)
			}
			frames++
		}
	}
	engine.Stop()

	snap := engine.GetSnapshot()
	log.Printf("✅ Done: %d frames, %d shots, %d hits, %d kills", frames, snap.Counters.Shots, snap.Counters.Hits, snap.Counters.Kills)
	if snap.Player != nil {
		log.Printf("🧍 Player health %.0f/%.0f", snap.Player.Health, snap.Player.MaxHealth)
	}
}

func writeFrame(engine *game.Engine, dir string, tick, room int, cfg config.ServerConfig) error {
	f, err := os.Create(filepath.Join(dir, fmt.Sprintf("frame_%05d.png", tick)))
	if err != nil {
		return err
	}
	defer f.Close()
	return engine.RenderPNG(f, room, cfg.RenderWidth, cfg.RenderHeight)
}
