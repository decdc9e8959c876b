// ABOUTME: Plain sine generator
// ABOUTME: Unbounded mono tone at a configurable rate
package synth

import (
	"math"
	"time"
)

// Sine generates a continuous mono sine tone
type Sine struct {
	frequency   float64
	sampleRate  int
	sampleIndex uint64
}

// NewSine creates a sine generator. A zero rate means 48kHz.
func NewSine(frequency float64, sampleRate int) *Sine {
	if sampleRate <= 0 {
		sampleRate = BeatSampleRate
	}
	return &Sine{frequency: frequency, sampleRate: sampleRate}
}

func (s *Sine) Next() (float32, bool) {
	t := float64(s.sampleIndex) / float64(s.sampleRate)
	s.sampleIndex++
	return float32(math.Sin(2 * math.Pi * s.frequency * t)), true
}

func (s *Sine) Channels() int                        { return 1 }
func (s *Sine) SampleRate() int                      { return s.sampleRate }
func (s *Sine) CurrentFrameLen() (int, bool)         { return 0, false }
func (s *Sine) TotalDuration() (time.Duration, bool) { return 0, false }
