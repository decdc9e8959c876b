// ABOUTME: Streaming format converter for sample streams
// ABOUTME: Adapts channel count and converts sample rate by linear interpolation
package resample

import (
	"time"

	"github.com/gwambient/gwambient/pkg/audio"
)

// Converter adapts an inner stream to a target channel count and rate
type Converter struct {
	inner audio.Stream
	in    audio.Format
	out   audio.Format

	// input frames per output frame
	ratio    float64
	position float64

	prev   []float32
	cur    []float32
	raw    []float32
	frame  []float32
	idx    int
	primed bool
	ended  bool
}

// Uniform returns s converted to channels and sampleRate. If s already has
// that format it is returned unchanged.
func Uniform(s audio.Stream, channels, sampleRate int) audio.Stream {
	if s.Channels() == channels && s.SampleRate() == sampleRate {
		return s
	}
	return New(s, channels, sampleRate)
}

// New creates a converter around inner
func New(inner audio.Stream, channels, sampleRate int) *Converter {
	in := audio.FormatOf(inner)
	out := audio.Format{SampleRate: sampleRate, Channels: channels}

	c := &Converter{
		inner: inner,
		in:    in,
		out:   out,
		ratio: float64(in.SampleRate) / float64(out.SampleRate),
		prev:  make([]float32, channels),
		cur:   make([]float32, channels),
		raw:   make([]float32, in.Channels),
		frame: make([]float32, channels),
	}
	c.idx = len(c.frame)
	return c
}

// readFrame pulls one input frame and maps it into dst
func (c *Converter) readFrame(dst []float32) bool {
	for i := range c.raw {
		v, ok := c.inner.Next()
		if !ok {
			return false
		}
		c.raw[i] = v
	}
	mapChannels(c.raw, dst)
	return true
}

// mapChannels copies src into dst, duplicating mono, averaging down to
// mono and wrapping by index otherwise
func mapChannels(src, dst []float32) {
	switch {
	case len(src) == len(dst):
		copy(dst, src)
	case len(src) == 1:
		for i := range dst {
			dst[i] = src[0]
		}
	case len(dst) == 1:
		var sum float32
		for _, v := range src {
			sum += v
		}
		dst[0] = sum / float32(len(src))
	default:
		for i := range dst {
			dst[i] = src[i%len(src)]
		}
	}
}

// nextFrame computes the next output frame into c.frame
func (c *Converter) nextFrame() bool {
	if c.in.SampleRate == c.out.SampleRate {
		return c.readFrame(c.frame)
	}

	if !c.primed {
		if !c.readFrame(c.prev) || !c.readFrame(c.cur) {
			return false
		}
		c.primed = true
	}

	for c.position >= 1 {
		c.prev, c.cur = c.cur, c.prev
		if !c.readFrame(c.cur) {
			return false
		}
		c.position--
	}

	frac := float32(c.position)
	for ch := range c.frame {
		c.frame[ch] = c.prev[ch]*(1-frac) + c.cur[ch]*frac
	}
	c.position += c.ratio
	return true
}

func (c *Converter) Next() (float32, bool) {
	if c.ended {
		return 0, false
	}
	if c.idx >= len(c.frame) {
		if !c.nextFrame() {
			c.ended = true
			return 0, false
		}
		c.idx = 0
	}
	v := c.frame[c.idx]
	c.idx++
	return v, true
}

func (c *Converter) Channels() int                        { return c.out.Channels }
func (c *Converter) SampleRate() int                      { return c.out.SampleRate }
func (c *Converter) CurrentFrameLen() (int, bool)         { return 0, false }
func (c *Converter) TotalDuration() (time.Duration, bool) { return c.inner.TotalDuration() }
