// ABOUTME: Runtime-extensible additive mixer
// ABOUTME: Sums any number of inputs frame by frame while inputs are added concurrently
package mixer

import (
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gwambient/gwambient/pkg/audio"
	"github.com/gwambient/gwambient/pkg/audio/resample"
)

type input struct {
	source audio.Stream
	stream audio.Stream
	ended  bool
}

// Mixer sums its inputs without clipping. It never ends; with no inputs it
// produces silence.
//
// Add and Remove may be called from any goroutine. The set of inputs is an
// immutable snapshot swapped on every change; Next loads it at each frame
// boundary so a frame is always mixed from one consistent set.
type Mixer struct {
	format audio.Format

	mu     sync.Mutex
	inputs atomic.Pointer[[]*input]

	// consumer side
	frame []float32
	pos   int
}

// New creates an empty mixer
func New(format audio.Format) *Mixer {
	m := &Mixer{
		format: format,
		frame:  make([]float32, format.Channels),
		pos:    format.Channels,
	}
	empty := []*input{}
	m.inputs.Store(&empty)
	return m
}

// Format returns the mixer output format
func (m *Mixer) Format() audio.Format {
	return m.format
}

// Add starts mixing s from the next frame, adapting its format if needed
func (m *Mixer) Add(s audio.Stream) {
	in := &input{
		source: s,
		stream: resample.Uniform(s, m.format.Channels, m.format.SampleRate),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cur := *m.inputs.Load()
	next := make([]*input, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, in)
	m.inputs.Store(&next)
}

// Remove stops mixing s. It reports whether s was an input.
func (m *Mixer) Remove(s audio.Stream) bool {
	return m.filter(func(in *input) bool { return in.source != s })
}

// Len returns the number of inputs
func (m *Mixer) Len() int {
	return len(*m.inputs.Load())
}

// filter keeps inputs for which keep returns true and reports whether any
// were dropped
func (m *Mixer) filter(keep func(*input) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := *m.inputs.Load()
	next := make([]*input, 0, len(cur))
	for _, in := range cur {
		if keep(in) {
			next = append(next, in)
		}
	}
	if len(next) == len(cur) {
		return false
	}
	m.inputs.Store(&next)
	return true
}

func (m *Mixer) mixFrame() {
	inputs := *m.inputs.Load()

	for ch := range m.frame {
		m.frame[ch] = 0
	}

	pruned := false
	for _, in := range inputs {
		if in.ended {
			pruned = true
			continue
		}
		for ch := range m.frame {
			v, ok := in.stream.Next()
			if !ok {
				in.ended = true
				break
			}
			m.frame[ch] += v
		}
	}

	if pruned {
		m.filter(func(in *input) bool { return !in.ended })
		log.Debugf("Mixer: pruned ended inputs, %d remain", m.Len())
	}
}

// Next returns the next mixed sample. The mixer never ends.
func (m *Mixer) Next() (float32, bool) {
	if m.pos == len(m.frame) {
		m.mixFrame()
		m.pos = 0
	}
	v := m.frame[m.pos]
	m.pos++
	return v, true
}

func (m *Mixer) Channels() int                        { return m.format.Channels }
func (m *Mixer) SampleRate() int                      { return m.format.SampleRate }
func (m *Mixer) CurrentFrameLen() (int, bool)         { return 0, false }
func (m *Mixer) TotalDuration() (time.Duration, bool) { return 0, false }
