// ABOUTME: Pull-based sample stream abstraction
// ABOUTME: Every source, transform, queue and mixer implements Stream
package audio

import "time"

// Stream yields interleaved float32 samples one at a time.
//
// Next returns false once the stream is exhausted. Exhaustion is not an
// error and a stream that has ended keeps returning false.
type Stream interface {
	// Channels returns the number of interleaved channels
	Channels() int

	// SampleRate returns frames per second
	SampleRate() int

	// CurrentFrameLen returns the number of samples left before the
	// stream's format may change, if known
	CurrentFrameLen() (int, bool)

	// TotalDuration returns the stream length, false when unbounded
	TotalDuration() (time.Duration, bool)

	// Next pulls one sample
	Next() (float32, bool)
}

// silence is an endless zero stream
type silence struct {
	format Format
}

// Silence returns an unbounded stream of zeros
func Silence(channels, sampleRate int) Stream {
	return &silence{format: Format{SampleRate: sampleRate, Channels: channels}}
}

func (s *silence) Channels() int                        { return s.format.Channels }
func (s *silence) SampleRate() int                      { return s.format.SampleRate }
func (s *silence) CurrentFrameLen() (int, bool)         { return 0, false }
func (s *silence) TotalDuration() (time.Duration, bool) { return 0, false }
func (s *silence) Next() (float32, bool)                { return 0, true }

// Collect pulls up to max samples from s. It stops early when s ends.
func Collect(s Stream, max int) []float32 {
	out := make([]float32, 0, max)
	for len(out) < max {
		v, ok := s.Next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

// Fill pulls samples from s into buf and returns how many were written
func Fill(s Stream, buf []float32) int {
	for i := range buf {
		v, ok := s.Next()
		if !ok {
			return i
		}
		buf[i] = v
	}
	return len(buf)
}
