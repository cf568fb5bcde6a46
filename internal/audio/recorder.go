package audio

import "sync"

// Cue is one recorded play request.
type Cue struct {
	Key    string  `json:"key" msgpack:"key"`
	Group  string  `json:"group,omitempty" msgpack:"group,omitempty"`
	Volume float64 `json:"volume" msgpack:"volume"`
	Loop   bool    `json:"loop,omitempty" msgpack:"loop,omitempty"`
}

// Recorder is an Engine that only records requests. Group plays record the
// group name as the key.
type Recorder struct {
	mu      sync.Mutex
	cues    []Cue
	handles []*RecordedHandle
}

// RecordedHandle tracks whether a recorded sound was stopped.
type RecordedHandle struct {
	mu      sync.Mutex
	Cue     Cue
	stopped bool
}

func (h *RecordedHandle) Stop() {
	h.mu.Lock()
	h.stopped = true
	h.mu.Unlock()
}

// Playing is true until Stop for loops, false for one-shots.
func (h *RecordedHandle) Playing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Cue.Loop && !h.stopped
}

func (r *Recorder) record(c Cue) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cues = append(r.cues, c)
	h := &RecordedHandle{Cue: c}
	r.handles = append(r.handles, h)
	return h
}

func (r *Recorder) PlaySound(key string, volume float64, loop bool) Handle {
	return r.record(Cue{Key: key, Volume: volume, Loop: loop})
}

func (r *Recorder) PlaySoundFromGroup(group string, volume float64, loop bool) Handle {
	return r.record(Cue{Key: group, Group: group, Volume: volume, Loop: loop})
}

// Cues returns a copy of everything recorded.
func (r *Recorder) Cues() []Cue {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Cue, len(r.cues))
	copy(out, r.cues)
	return out
}

// Count returns how many times key (or group) was played.
func (r *Recorder) Count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.cues {
		if c.Key == key {
			n++
		}
	}
	return n
}

// Handles returns the handles issued for key.
func (r *Recorder) Handles(key string) []*RecordedHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*RecordedHandle
	for _, h := range r.handles {
		if h.Cue.Key == key {
			out = append(out, h)
		}
	}
	return out
}

// Reset forgets all recorded cues.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.cues = nil
	r.handles = nil
	r.mu.Unlock()
}
