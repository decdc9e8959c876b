// ABOUTME: Audio engine driving the mixer into the output
// ABOUTME: Owns the master mix, per-instrument channels and the real-time pump loop
package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gwambient/gwambient/internal/mixer"
	"github.com/gwambient/gwambient/pkg/audio"
	"github.com/gwambient/gwambient/pkg/audio/output"
)

const (
	// DefaultBufferMs is the amount of audio written per output call
	DefaultBufferMs = 20

	maxVolume = 100
)

// Config holds engine settings
type Config struct {
	Format   audio.Format
	BufferMs int
	Output   output.Output
	// Channels names the per-instrument channels to create
	Channels []string
}

// Engine pulls the master mix and writes it to the output
type Engine struct {
	format       audio.Format
	mixer        *mixer.Mixer
	channels     map[string]*mixer.Channel
	out          output.Output
	bufferFrames int

	opened  bool
	started atomic.Int64

	volume  atomic.Int32
	muted   atomic.Bool
	frames  atomic.Int64
	peak    atomic.Uint32
	clipped atomic.Int64
}

// Stats is a snapshot of engine state
type Stats struct {
	Format   audio.Format   `json:"format"`
	Frames   int64          `json:"frames"`
	Played   time.Duration  `json:"played"`
	Uptime   time.Duration  `json:"uptime"`
	Peak     float32        `json:"peak"`
	Clipped  int64          `json:"clipped"`
	Inputs   int            `json:"inputs"`
	Volume   int            `json:"volume"`
	Muted    bool           `json:"muted"`
	Channels []ChannelStats `json:"channels"`
}

// ChannelStats describes one instrument channel
type ChannelStats struct {
	Name    string `json:"name"`
	Playing bool   `json:"playing"`
	Pending int    `json:"pending"`
	Played  int64  `json:"played"`
}

// New creates an engine and adds one mixer input per channel
func New(cfg Config) *Engine {
	if cfg.BufferMs <= 0 {
		cfg.BufferMs = DefaultBufferMs
	}

	e := &Engine{
		format:       cfg.Format,
		mixer:        mixer.New(cfg.Format),
		channels:     make(map[string]*mixer.Channel, len(cfg.Channels)),
		out:          cfg.Output,
		bufferFrames: cfg.Format.SampleRate * cfg.BufferMs / 1000,
	}
	if e.bufferFrames <= 0 {
		e.bufferFrames = 1
	}
	e.volume.Store(maxVolume)

	for _, name := range cfg.Channels {
		if _, ok := e.channels[name]; ok {
			continue
		}
		ch := mixer.NewChannel(name, cfg.Format)
		e.channels[name] = ch
		e.mixer.Add(ch)
	}

	return e
}

// Mixer returns the master mixer
func (e *Engine) Mixer() *mixer.Mixer {
	return e.mixer
}

// Channel returns the named instrument channel
func (e *Engine) Channel(name string) (*mixer.Channel, bool) {
	ch, ok := e.channels[name]
	return ch, ok
}

// Channels returns every instrument channel sorted by name
func (e *Engine) Channels() []*mixer.Channel {
	out := make([]*mixer.Channel, 0, len(e.channels))
	for _, ch := range e.channels {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name() < out[j].Name()
	})
	return out
}

// SetVolume sets the master volume in percent
func (e *Engine) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	} else if volume > maxVolume {
		volume = maxVolume
	}
	e.volume.Store(int32(volume))
}

// SetMuted mutes or unmutes the output
func (e *Engine) SetMuted(muted bool) {
	e.muted.Store(muted)
}

// Open acquires the output device
func (e *Engine) Open() error {
	if e.opened {
		return nil
	}
	if err := e.out.Open(e.format.SampleRate, e.format.Channels); err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}
	e.opened = true
	return nil
}

// Run pumps the mixer into the output until ctx is done. The output write
// blocks at the device rate and paces the loop.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Open(); err != nil {
		return err
	}
	defer func() {
		if err := e.out.Close(); err != nil {
			log.Printf("Error closing output: %v", err)
		}
	}()

	log.Printf("Audio engine starting: %dHz, %d channels, %d inputs",
		e.format.SampleRate, e.format.Channels, e.mixer.Len())
	e.started.Store(time.Now().UnixNano())

	buf := make([]float32, e.bufferFrames*e.format.Channels)
	for {
		select {
		case <-ctx.Done():
			log.Printf("Audio engine stopping after %v", e.Stats().Played.Round(time.Second))
			return nil
		default:
		}

		n := audio.Fill(e.mixer, buf)
		e.process(buf[:n])

		if err := e.out.Write(buf[:n]); err != nil {
			return fmt.Errorf("output write failed: %w", err)
		}
		e.frames.Add(int64(n / e.format.Channels))
	}
}

// process applies the master volume and updates level stats
func (e *Engine) process(buf []float32) {
	gain := float32(e.volume.Load()) / maxVolume
	if e.muted.Load() {
		gain = 0
	}

	var peak float32
	var clipped int64
	for i, v := range buf {
		v *= gain
		buf[i] = v
		a := float32(math.Abs(float64(v)))
		if a > peak {
			peak = a
		}
		if a > 1 {
			clipped++
		}
	}

	e.peak.Store(math.Float32bits(peak))
	if clipped > 0 {
		e.clipped.Add(clipped)
	}
}

// Stats returns a snapshot of engine state
func (e *Engine) Stats() Stats {
	frames := e.frames.Load()
	s := Stats{
		Format:  e.format,
		Frames:  frames,
		Played:  audio.DurationOf(frames, e.format.SampleRate),
		Peak:    math.Float32frombits(e.peak.Load()),
		Clipped: e.clipped.Load(),
		Inputs:  e.mixer.Len(),
		Volume:  int(e.volume.Load()),
		Muted:   e.muted.Load(),
	}
	if started := e.started.Load(); started != 0 {
		s.Uptime = time.Since(time.Unix(0, started))
	}
	for _, ch := range e.Channels() {
		s.Channels = append(s.Channels, ChannelStats{
			Name:    ch.Name(),
			Playing: ch.Playing(),
			Pending: ch.Pending(),
			Played:  ch.Played(),
		})
	}
	return s
}
