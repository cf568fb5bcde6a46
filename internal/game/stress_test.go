package game

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"sentinel/internal/ai"
	"sentinel/internal/geom"
	"sentinel/internal/tile"
)

// =============================================================================
// STRESS TEST SUITE: API CALLS AGAINST A RUNNING TICK LOOP
// Run with: go test -v -run=TestStress -race ./internal/game/...
// =============================================================================

func TestStressConcurrentAPI(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	e, _ := newTestEngine(t, arena)
	if _, err := e.SpawnMarkers(); err != nil {
		t.Fatalf("SpawnMarkers failed: %v", err)
	}
	e.Start()
	defer e.Stop()

	var (
		wg       sync.WaitGroup
		calls    atomic.Int64
		stopChan = make(chan struct{})
	)
	worker := func(fn func(i int)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; ; i++ {
				select {
				case <-stopChan:
					return
				default:
				}
				fn(i)
				calls.Add(1)
			}
		}()
	}

	worker(func(i int) {
		snap := e.GetSnapshot()
		if snap.EnemyCount < 2 {
			t.Errorf("Expected at least 2 enemies, got %d", snap.EnemyCount)
		}
	})
	worker(func(i int) { e.HealPlayer(5) })
	worker(func(i int) { e.MovePlayer(geom.V2(float64(1+i%7), 1)) })
	worker(func(i int) { e.SolvePath(tile.C(1, 1), tile.C(1+i%8, 1+i%3)) })
	worker(func(i int) {
		if i%50 == 0 {
			e.SpawnEnemy(ai.KindDrone, tile.C(2+i%6, 2))
		}
	})

	time.Sleep(300 * time.Millisecond)
	close(stopChan)
	wg.Wait()

	if e.TickCount() == 0 {
		t.Error("Expected the tick loop to advance under load")
	}
	t.Logf("📊 %d API calls across %d ticks", calls.Load(), e.TickCount())
}
