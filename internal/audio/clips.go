package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// toneSpec describes the synthesized stand-in for a missing clip.
type toneSpec struct {
	freq     float64
	duration time.Duration
}

// fallbackTones are used when a clip has no file in the sound directory.
var fallbackTones = map[string]toneSpec{
	SoundDroneShot:      {880, 60 * time.Millisecond},
	SoundTurretShot:     {660, 50 * time.Millisecond},
	SoundDroneHover:     {110, 500 * time.Millisecond},
	SoundEnemyHit:       {1200, 40 * time.Millisecond},
	SoundDroneDeath:     {220, 400 * time.Millisecond},
	SoundTurretDeath:    {180, 500 * time.Millisecond},
	SoundTurretActivate: {520, 200 * time.Millisecond},
	"alert_1":           {740, 250 * time.Millisecond},
	"alert_2":           {784, 250 * time.Millisecond},
	"alert_3":           {830, 250 * time.Millisecond},
	"reload_1":          {390, 300 * time.Millisecond},
	"reload_2":          {415, 300 * time.Millisecond},
}

// loadClip decodes dir/key.wav or dir/key.ogg into a buffer at format's rate.
func loadClip(dir, key string, format beep.Format) (*beep.Buffer, error) {
	for _, ext := range []string{".wav", ".ogg"} {
		path := filepath.Join(dir, key+ext)
		f, err := os.Open(path)
		if err != nil {
			continue
		}

		var (
			stream beep.StreamSeekCloser
			src    beep.Format
		)
		if ext == ".wav" {
			stream, src, err = wav.Decode(f)
		} else {
			stream, src, err = vorbis.Decode(f)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}

		var s beep.Streamer = stream
		if src.SampleRate != format.SampleRate {
			s = beep.Resample(4, src.SampleRate, format.SampleRate, stream)
		}
		buf := beep.NewBuffer(format)
		buf.Append(s)
		stream.Close()
		return buf, nil
	}
	return nil, os.ErrNotExist
}

// synthClip renders a decaying sine tone.
func synthClip(spec toneSpec, format beep.Format) *beep.Buffer {
	buf := beep.NewBuffer(format)
	n := format.SampleRate.N(spec.duration)
	buf.Append(beep.Take(n, &tone{freq: spec.freq, rate: format.SampleRate, total: n}))
	return buf
}

// tone is an endless sine oscillator with a linear fade over total samples.
type tone struct {
	freq  float64
	phase float64
	rate  beep.SampleRate
	pos   int
	total int
}

func (t *tone) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		fade := 1.0
		if t.total > 0 {
			fade = math.Max(0, 1-float64(t.pos)/float64(t.total))
		}
		v := math.Sin(2*math.Pi*t.phase) * 0.5 * fade
		samples[i][0] = v
		samples[i][1] = v

		t.phase += t.freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }
