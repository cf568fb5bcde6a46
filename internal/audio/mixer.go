package audio

import (
	"encoding/binary"
	"log"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// MixerConfig configures the headless mixer.
type MixerConfig struct {
	SampleRate int
	SoundDir   string
	Volume     float64 // master, 0.0-1.0
	MaxVoices  int     // one-shots beyond this evict the oldest
	Seed       int64
	Groups     map[string][]string
}

// DefaultMixerConfig returns a 44.1 kHz mixer reading clips from assets/sounds.
func DefaultMixerConfig() MixerConfig {
	return MixerConfig{
		SampleRate: 44100,
		SoundDir:   "assets/sounds",
		Volume:     0.8,
		MaxVoices:  8,
		Seed:       1,
		Groups:     DefaultGroups(),
	}
}

// Mixer is a beep-backed Engine without an output device. The simulation pulls
// PCM through Drain so playback advances with simulated time, not wall time.
type Mixer struct {
	mu     sync.Mutex
	cfg    MixerConfig
	format beep.Format
	clips  map[string]*beep.Buffer
	mixer  *beep.Mixer
	voices []*voice
	rng    *rand.Rand

	scratch [][2]float64
	cues    []string
	played  uint64
}

// voice is one playing sound. Stopping clears the Ctrl streamer, which the
// beep mixer then drops.
type voice struct {
	m    *Mixer
	key  string
	loop bool
	ctrl *beep.Ctrl
	done bool
}

func (v *voice) Stream(samples [][2]float64) (int, bool) {
	n, ok := v.ctrl.Stream(samples)
	if !ok || n < len(samples) {
		v.done = true
	}
	return n, ok
}

func (v *voice) Err() error { return nil }

func (v *voice) Stop() {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	v.ctrl.Streamer = nil
	v.done = true
}

func (v *voice) Playing() bool {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	return !v.done
}

// NewMixer loads every known clip, falling back to synthesized tones for
// clips with no file, so a missing asset directory never disables sound.
func NewMixer(cfg MixerConfig) *Mixer {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	if cfg.MaxVoices <= 0 {
		cfg.MaxVoices = 8
	}
	if cfg.Groups == nil {
		cfg.Groups = DefaultGroups()
	}
	m := &Mixer{
		cfg: cfg,
		format: beep.Format{
			SampleRate:  beep.SampleRate(cfg.SampleRate),
			NumChannels: 2,
			Precision:   2,
		},
		clips: make(map[string]*beep.Buffer),
		mixer: &beep.Mixer{},
		rng:   rand.New(rand.NewSource(cfg.Seed)),
	}

	keys := make([]string, 0, len(fallbackTones))
	for k := range fallbackTones {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	loaded, synthesized := 0, 0
	for _, key := range keys {
		buf, err := loadClip(cfg.SoundDir, key, m.format)
		if err != nil {
			buf = synthClip(fallbackTones[key], m.format)
			synthesized++
		} else {
			loaded++
		}
		m.clips[key] = buf
	}
	log.Printf("🔊 Audio mixer ready: %d clips loaded, %d synthesized (%d Hz)", loaded, synthesized, cfg.SampleRate)
	return m
}

// SampleRate returns the output rate.
func (m *Mixer) SampleRate() beep.SampleRate { return m.format.SampleRate }

// PlaySound implements Engine. Unknown keys play nothing.
func (m *Mixer) PlaySound(key string, volume float64, loop bool) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playLocked(key, volume, loop)
}

// PlaySoundFromGroup implements Engine by picking one clip of the group at random.
func (m *Mixer) PlaySoundFromGroup(group string, volume float64, loop bool) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := m.cfg.Groups[group]
	if len(keys) == 0 {
		return nopHandle{}
	}
	return m.playLocked(keys[m.rng.Intn(len(keys))], volume, loop)
}

func (m *Mixer) playLocked(key string, volume float64, loop bool) Handle {
	buf, ok := m.clips[key]
	if !ok || buf.Len() == 0 {
		return nopHandle{}
	}

	var s beep.Streamer = buf.Streamer(0, buf.Len())
	if loop {
		s = beep.Iterate(func() beep.Streamer { return buf.Streamer(0, buf.Len()) })
	}
	v := &voice{m: m, key: key, loop: loop, ctrl: &beep.Ctrl{Streamer: withVolume(s, volume*m.cfg.Volume)}}

	m.pruneLocked()
	if oneShots := m.oneShotsLocked(); oneShots >= m.cfg.MaxVoices {
		for _, old := range m.voices {
			if !old.loop && !old.done {
				old.ctrl.Streamer = nil
				old.done = true
				break
			}
		}
	}
	m.voices = append(m.voices, v)
	m.mixer.Add(v)

	m.played++
	m.cues = append(m.cues, key)
	if len(m.cues) > 64 {
		m.cues = m.cues[len(m.cues)-64:]
	}
	return v
}

// withVolume maps a linear gain to beep's exponential volume.
func withVolume(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}

func (m *Mixer) pruneLocked() {
	alive := m.voices[:0]
	for _, v := range m.voices {
		if !v.done {
			alive = append(alive, v)
		}
	}
	for i := len(alive); i < len(m.voices); i++ {
		m.voices[i] = nil
	}
	m.voices = alive
}

func (m *Mixer) oneShotsLocked() int {
	n := 0
	for _, v := range m.voices {
		if !v.loop && !v.done {
			n++
		}
	}
	return n
}

// Drain mixes the next n samples and returns them as interleaved little-endian
// int16 stereo with soft limiting.
func (m *Mixer) Drain(n int) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n <= 0 {
		return nil
	}
	if cap(m.scratch) < n {
		m.scratch = make([][2]float64, n)
	}
	buf := m.scratch[:n]
	for i := range buf {
		buf[i] = [2]float64{}
	}
	m.mixer.Stream(buf)
	m.pruneLocked()

	out := make([]byte, n*4)
	for i, s := range buf {
		binary.LittleEndian.PutUint16(out[i*4:], uint16(floatToInt16(s[0])))
		binary.LittleEndian.PutUint16(out[i*4+2:], uint16(floatToInt16(s[1])))
	}
	return out
}

// Active returns the number of sounds still playing.
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked()
	return len(m.voices)
}

// Cues returns keys played since the last call.
func (m *Mixer) Cues() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.cues
	m.cues = nil
	return out
}

// Played returns the total number of sounds started.
func (m *Mixer) Played() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.played
}

// floatToInt16 converts a [-1,1] sample with soft clipping above ±30000.
func floatToInt16(sample float64) int16 {
	scaled := sample * 32767.0
	if scaled > 30000 {
		scaled = 30000 + (scaled-30000)/4
	} else if scaled < -30000 {
		scaled = -30000 + (scaled+30000)/4
	}
	if scaled > 32767 {
		scaled = 32767
	} else if scaled < -32768 {
		scaled = -32768
	}
	return int16(scaled)
}
