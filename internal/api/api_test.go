package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sentinel/internal/audio"
	"sentinel/internal/config"
	"sentinel/internal/game"
	"sentinel/internal/world"
)

var arena = []string{
	"##########",
	"#P......t#",
	"#........#",
	"#..d.....#",
	"##########",
}

// ============================================================================
// Helpers
// ============================================================================

func newTestEngine(t *testing.T) *game.Engine {
	t.Helper()
	m, err := world.ParseLayout(arena, world.DefaultTileSize)
	if err != nil {
		t.Fatalf("ParseLayout failed: %v", err)
	}
	e, err := game.NewEngine(game.Options{Config: config.Default(), Map: m, Sound: audio.Nop{}})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if n, err := e.SpawnMarkers(); err != nil || n != 2 {
		t.Fatalf("SpawnMarkers: expected 2, got %d (%v)", n, err)
	}
	return e
}

func newTestServer(t *testing.T, cfg RouterConfig) *httptest.Server {
	t.Helper()
	if cfg.Engine == nil {
		cfg.Engine = newTestEngine(t)
	}
	if cfg.RateLimitConfig == nil && cfg.RateLimiter == nil {
		cfg.RateLimitConfig = &RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
			CleanupInterval:   time.Hour,
		}
	}
	cfg.DisableLogging = true
	ts := httptest.NewServer(NewRouter(cfg))
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

// failingEngine errors on render so the 500 path can be observed.
type failingEngine struct {
	EngineInterface
}

func (failingEngine) RenderPNG(w io.Writer, roomID, width, height int) error {
	return errors.New("renderer exploded")
}

// ============================================================================
// Endpoint Tests
// ============================================================================

func TestHealth(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	resp := get(t, ts.URL+"/health")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	decode(t, resp, &body)
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", body["status"])
	}
}

func TestGetState(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	resp := get(t, ts.URL+"/api/state")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var snap game.GameSnapshot
	decode(t, resp, &snap)

	if len(snap.Enemies) != 2 {
		t.Errorf("Expected 2 enemies, got %d", len(snap.Enemies))
	}
	if snap.Player == nil {
		t.Fatal("Expected player in snapshot")
	}
	if !snap.Player.Alive {
		t.Error("Expected live player")
	}
}

func TestListEnemiesFilter(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	var all []game.EnemySnapshot
	decode(t, get(t, ts.URL+"/api/enemies"), &all)
	if len(all) != 2 {
		t.Errorf("Expected 2 enemies, got %d", len(all))
	}

	var attacking []game.EnemySnapshot
	decode(t, get(t, ts.URL+"/api/enemies?state=attacking"), &attacking)
	if len(attacking) != 0 {
		t.Errorf("Expected no attacking enemies before the first tick, got %d", len(attacking))
	}
}

func TestSpawnEnemy(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	resp := post(t, ts.URL+"/api/enemies", `{"kind":"drone","x":4,"z":2}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}
	var body map[string]interface{}
	decode(t, resp, &body)
	if body["id"] != "drone-2" {
		t.Errorf("Expected id drone-2, got %v", body["id"])
	}
	if body["state"] != "wandering" {
		t.Errorf("Expected state wandering, got %v", body["state"])
	}

	var all []game.EnemySnapshot
	decode(t, get(t, ts.URL+"/api/enemies"), &all)
	if len(all) != 3 {
		t.Errorf("Expected spawned enemy in listing, got %d enemies", len(all))
	}
}

func TestSpawnEnemyValidation(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"bad json", `{"kind":`, http.StatusBadRequest},
		{"unknown kind", `{"kind":"tank","x":4,"z":2}`, http.StatusUnprocessableEntity},
		{"wall tile", `{"kind":"drone","x":0,"z":0}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/api/enemies", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestDamageEnemy(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	resp := post(t, ts.URL+"/api/enemies/turret-1/damage", `{"amount":10000}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var body map[string]bool
	decode(t, resp, &body)
	if !body["killed"] {
		t.Error("Expected turret to be destroyed")
	}

	var snap game.GameSnapshot
	decode(t, get(t, ts.URL+"/api/state"), &snap)
	if snap.ActiveCount != 1 {
		t.Errorf("Expected 1 active enemy, got %d", snap.ActiveCount)
	}
	if snap.Counters.Kills != 1 {
		t.Errorf("Expected 1 kill, got %d", snap.Counters.Kills)
	}
}

func TestDamageEnemyValidation(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	tests := []struct {
		name       string
		id         string
		body       string
		wantStatus int
	}{
		{"unknown enemy", "drone-9", `{"amount":5}`, http.StatusNotFound},
		{"zero amount", "drone-1", `{"amount":0}`, http.StatusBadRequest},
		{"bad json", "drone-1", `nope`, http.StatusBadRequest},
		{"partial damage", "drone-1", `{"amount":1}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/api/enemies/"+tt.id+"/damage", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestPlayerMoveAndHeal(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	if resp := post(t, ts.URL+"/api/player/move", `{"x":3,"z":1}`); resp.StatusCode != http.StatusOK {
		t.Errorf("Move: expected 200, got %d", resp.StatusCode)
	}
	if resp := post(t, ts.URL+"/api/player/move", `{"x":-50,"z":0}`); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("Move out of bounds: expected 422, got %d", resp.StatusCode)
	}

	resp := post(t, ts.URL+"/api/player/heal", `{}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Heal: expected 200, got %d", resp.StatusCode)
	}
	var body map[string]bool
	decode(t, resp, &body)
	if !body["success"] {
		t.Error("Expected heal to succeed on a live player")
	}
}

func TestSolvePath(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	resp := get(t, ts.URL+"/api/path?fx=1&fz=1&tx=5&tz=3")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Found bool `json:"found"`
		Steps int  `json:"steps"`
		Path  []struct {
			X int `json:"x"`
			Z int `json:"z"`
		} `json:"path"`
	}
	decode(t, resp, &body)
	if !body.Found {
		t.Fatal("Expected a path across the arena")
	}
	if body.Steps != len(body.Path) || body.Steps == 0 {
		t.Errorf("Expected steps to match path length, got %d and %d", body.Steps, len(body.Path))
	}
	last := body.Path[len(body.Path)-1]
	if last.X != 5 || last.Z != 3 {
		t.Errorf("Expected path to end at (5,3), got (%d,%d)", last.X, last.Z)
	}
}

func TestSolvePathValidation(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"missing params", "fx=1&fz=1", http.StatusBadRequest},
		{"not a number", "fx=a&fz=1&tx=2&tz=1", http.StatusBadRequest},
		{"both on walls", "fx=0&fz=0&tx=9&tz=0", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, ts.URL+"/api/path?"+tt.query)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestRenderPNG(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	resp := get(t, ts.URL+"/api/render.png?w=200&h=100")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("Expected PNG signature")
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"unknown room", "room=42", http.StatusNotFound},
		{"zero width", "w=0&h=10", http.StatusUnprocessableEntity},
		{"too large", "w=5000&h=10", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, ts.URL+"/api/render.png?"+tt.query)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestRenderFailureIs500(t *testing.T) {
	ts := newTestServer(t, RouterConfig{Engine: failingEngine{}})

	resp := get(t, ts.URL+"/api/render.png")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{game.ErrNoSuchEnemy, http.StatusNotFound},
		{game.ErrNoSuchRoom, http.StatusNotFound},
		{game.ErrNoPlayer, http.StatusNotFound},
		{game.ErrEnemyLimit, http.StatusServiceUnavailable},
		{game.ErrNotWalkable, http.StatusUnprocessableEntity},
		{game.ErrUnknownKind, http.StatusUnprocessableEntity},
		{game.ErrOutOfBounds, http.StatusUnprocessableEntity},
		{game.ErrBadDimension, http.StatusUnprocessableEntity},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v): expected %d, got %d", tt.err, tt.want, got)
		}
	}
}

// ============================================================================
// Middleware Tests
// ============================================================================

func TestTokenGuard(t *testing.T) {
	ts := newTestServer(t, RouterConfig{Guard: NewTokenGuard("s3cret")})

	if resp := get(t, ts.URL+"/api/state"); resp.StatusCode != http.StatusOK {
		t.Errorf("Reads should stay open: expected 200, got %d", resp.StatusCode)
	}
	if resp := post(t, ts.URL+"/api/player/heal", `{}`); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/player/heal", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 with wrong token, got %d", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodPost, ts.URL+"/api/player/heal", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 with token, got %d", resp.StatusCode)
	}
}

func TestTokenGuardDisabled(t *testing.T) {
	g := NewTokenGuard("")
	if g.Enabled() {
		t.Error("Empty token should disable the guard")
	}
	req := httptest.NewRequest(http.MethodPost, "/api/player/heal", nil)
	if !g.Authorized(req) {
		t.Error("Disabled guard should authorize every request")
	}
}

func TestRateLimiting(t *testing.T) {
	ts := newTestServer(t, RouterConfig{
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 0.001,
			Burst:             2,
			CleanupInterval:   time.Hour,
		},
	})

	for i := 0; i < 2; i++ {
		if resp := get(t, ts.URL+"/health"); resp.StatusCode != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i, resp.StatusCode)
		}
	}
	resp := get(t, ts.URL+"/health")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
}

func TestCORSHeaders(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/state", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Expected Access-Control-Allow-Origin 'http://localhost:5173', got '%s'", got)
	}
}

func TestServerRouter(t *testing.T) {
	s := NewServer(newTestEngine(t), config.DefaultServer())
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	if resp := get(t, ts.URL+"/health"); resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	if s.Hub().ClientCount() != 0 {
		t.Errorf("Expected no clients, got %d", s.Hub().ClientCount())
	}
	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown before Start should be a no-op, got %v", err)
	}
}
