package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"sentinel/internal/ai"
	"sentinel/internal/game"
	"sentinel/internal/geom"
	"sentinel/internal/tile"

	"github.com/go-chi/chi/v5"
)

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.GetSnapshot())
}

func (h *routerHandlers) handleListEnemies(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.GetSnapshot()
	state := r.URL.Query().Get("state")
	out := make([]game.EnemySnapshot, 0, len(snap.Enemies))
	for _, e := range snap.Enemies {
		if state != "" && e.State != state {
			continue
		}
		out = append(out, e)
	}
	writeJSON(w, out)
}

func (h *routerHandlers) handleSpawnEnemy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind string `json:"kind"`
		X    int    `json:"x"`
		Z    int    `json:"z"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	en, err := h.engine.SpawnEnemy(ai.Kind(req.Kind), tile.C(req.X, req.Z))
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	pos := en.Position()
	writeJSONStatus(w, http.StatusCreated, map[string]interface{}{
		"id":    en.ID(),
		"kind":  en.Kind(),
		"x":     pos.X,
		"z":     pos.Y,
		"room":  en.Room().ID,
		"state": en.State(),
	})
}

func (h *routerHandlers) handleDamageEnemy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
		Source string  `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Amount <= 0 {
		writeError(w, "Amount must be positive", http.StatusBadRequest)
		return
	}
	if req.Source == "" {
		req.Source = "api"
	}

	killed, err := h.engine.DamageEnemy(chi.URLParam(r, "id"), req.Amount, req.Source)
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, map[string]bool{"success": true, "killed": killed})
}

func (h *routerHandlers) handlePlayerMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X float64 `json:"x"`
		Z float64 `json:"z"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.engine.MovePlayer(geom.V2(req.X, req.Z)); err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handlePlayerHeal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	amount := req.Amount
	if amount <= 0 {
		amount = 20
	}
	writeJSON(w, map[string]bool{"success": h.engine.HealPlayer(amount)})
}

func (h *routerHandlers) handleSolvePath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var vals [4]int
	for i, key := range []string{"fx", "fz", "tx", "tz"} {
		v, err := strconv.Atoi(q.Get(key))
		if err != nil {
			writeError(w, "Query needs integer fx, fz, tx and tz", http.StatusBadRequest)
			return
		}
		vals[i] = v
	}

	coords, ok, err := h.engine.SolvePath(tile.C(vals[0], vals[1]), tile.C(vals[2], vals[3]))
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	if coords == nil {
		coords = []tile.Coord{}
	}
	writeJSON(w, map[string]interface{}{
		"found": ok,
		"steps": len(coords),
		"path":  coords,
	})
}

func (h *routerHandlers) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	room := queryInt(q.Get("room"), -1)
	width := queryInt(q.Get("w"), h.width)
	height := queryInt(q.Get("h"), h.height)
	if width > 4096 || height > 4096 {
		writeError(w, "Image too large", http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := h.engine.RenderPNG(&buf, room, width, height); err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("⚠️ Render write failed: %v", err)
	}
}

// statusFor maps simulation errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrNoSuchEnemy), errors.Is(err, game.ErrNoSuchRoom), errors.Is(err, game.ErrNoPlayer):
		return http.StatusNotFound
	case errors.Is(err, game.ErrEnemyLimit):
		return http.StatusServiceUnavailable
	case errors.Is(err, game.ErrNotWalkable), errors.Is(err, game.ErrUnknownKind),
		errors.Is(err, game.ErrOutOfBounds), errors.Is(err, game.ErrBadDimension):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("⚠️ JSON encode failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
