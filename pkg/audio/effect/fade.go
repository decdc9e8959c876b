// ABOUTME: Duration-truncating fade envelope
// ABOUTME: Cuts a stream after a fixed duration with a linear fade-out and optional fade-in
package effect

import (
	"time"

	"github.com/gwambient/gwambient/pkg/audio"
)

// Fade truncates its inner stream after a total duration, applying a linear
// fade-out over the final fade window and an optional fade-in at the start.
//
// When the total is reached the inner stream is dropped without being
// drained. If the inner stream ends first, Fade ends at the same sample.
type Fade struct {
	inner  audio.Stream
	format audio.Format

	totalFrames  int64
	fadeFrames   int64
	fadeInFrames int64

	// samples pulled so far; frame = elapsed / channels
	elapsed int64
	done    bool
}

// FadeOption configures a Fade
type FadeOption func(*Fade)

// WithFadeIn ramps the gain from 0 to 1 over window at the start of the stream
func WithFadeIn(window time.Duration) FadeOption {
	return func(f *Fade) {
		f.fadeInFrames = audio.FramesFor(window, f.format.SampleRate)
	}
}

// NewFade wraps inner so it stops after total with a fade-out of length fade.
// fade is clamped to total.
func NewFade(inner audio.Stream, total, fade time.Duration, opts ...FadeOption) *Fade {
	if fade > total {
		fade = total
	}
	if fade < 0 {
		fade = 0
	}

	f := &Fade{
		inner:  inner,
		format: audio.FormatOf(inner),
	}
	f.totalFrames = audio.FramesFor(total, f.format.SampleRate)
	f.fadeFrames = audio.FramesFor(fade, f.format.SampleRate)

	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Gain returns the envelope gain applied at the given frame
func (f *Fade) Gain(frame int64) float32 {
	gain := float32(1)

	if f.fadeFrames > 0 && frame >= f.totalFrames-f.fadeFrames {
		remaining := f.totalFrames - frame
		if remaining <= 0 {
			return 0
		}
		gain = float32(remaining) / float32(f.fadeFrames)
	}

	if f.fadeInFrames > 0 && frame < f.fadeInFrames {
		gain *= float32(frame) / float32(f.fadeInFrames)
	}
	return gain
}

func (f *Fade) frame() int64 {
	channels := int64(f.format.Channels)
	if channels <= 0 {
		channels = 1
	}
	return f.elapsed / channels
}

func (f *Fade) Next() (float32, bool) {
	if f.done {
		return 0, false
	}

	frame := f.frame()
	if frame >= f.totalFrames {
		f.done = true
		f.inner = nil
		return 0, false
	}

	v, ok := f.inner.Next()
	if !ok {
		f.done = true
		f.inner = nil
		return 0, false
	}

	f.elapsed++
	return v * f.Gain(frame), true
}

// Elapsed returns the number of samples emitted so far
func (f *Fade) Elapsed() int64 {
	return f.elapsed
}

func (f *Fade) Channels() int   { return f.format.Channels }
func (f *Fade) SampleRate() int { return f.format.SampleRate }

func (f *Fade) CurrentFrameLen() (int, bool) {
	if f.done {
		return 0, true
	}
	remaining := int(f.totalFrames*int64(f.format.Channels) - f.elapsed)
	if n, ok := f.inner.CurrentFrameLen(); ok && n < remaining {
		return n, true
	}
	return remaining, true
}

func (f *Fade) TotalDuration() (time.Duration, bool) {
	total := audio.DurationOf(f.totalFrames, f.format.SampleRate)
	if f.inner != nil {
		if d, ok := f.inner.TotalDuration(); ok && d < total {
			return d, true
		}
	}
	return total, true
}
