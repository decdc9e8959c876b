// ABOUTME: Tests for stream transforms
// ABOUTME: Covers fade truncation, fade ramps, gain and instrumentation events
package effect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwambient/gwambient/pkg/audio"
)

// constant yields value forever, or limit samples when limit > 0
type constant struct {
	value    float32
	rate     int
	channels int
	limit    int
	pulls    int
}

func (c *constant) Next() (float32, bool) {
	if c.limit > 0 && c.pulls >= c.limit {
		c.pulls++
		return 0, false
	}
	c.pulls++
	return c.value, true
}

func (c *constant) Channels() int                { return c.channels }
func (c *constant) SampleRate() int              { return c.rate }
func (c *constant) CurrentFrameLen() (int, bool) { return 0, false }
func (c *constant) TotalDuration() (time.Duration, bool) {
	if c.limit > 0 {
		return audio.DurationOf(int64(c.limit/c.channels), c.rate), true
	}
	return 0, false
}

func ones(rate int) *constant {
	return &constant{value: 1, rate: rate, channels: 1}
}

func drain(s audio.Stream) []float32 {
	var out []float32
	for {
		v, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func TestFadeEnvelopeShape(t *testing.T) {
	tests := []struct {
		name  string
		total time.Duration
		fade  time.Duration
	}{
		{"quarter fade", time.Second, 250 * time.Millisecond},
		{"full fade", time.Second, time.Second},
		{"short fade", 2 * time.Second, 10 * time.Millisecond},
	}

	const rate = 1000
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := drain(NewFade(ones(rate), tt.total, tt.fade))

			total := audio.FramesFor(tt.total, rate)
			fade := audio.FramesFor(tt.fade, rate)
			require.Len(t, samples, int(total))

			for i, v := range samples {
				elapsed := int64(i)
				if elapsed < total-fade {
					require.Equal(t, float32(1), v, "sample %d", i)
					continue
				}
				want := float32(total-elapsed) / float32(fade)
				require.InDelta(t, want, v, 1e-6, "sample %d", i)
				if i > 0 {
					require.Less(t, v, samples[i-1], "gain must decrease at %d", i)
				}
			}
		})
	}
}

func TestFadeZeroIsHardCut(t *testing.T) {
	samples := drain(NewFade(ones(1000), 500*time.Millisecond, 0))
	require.Len(t, samples, 500)
	for _, v := range samples {
		assert.Equal(t, float32(1), v)
	}
}

func TestFadeClampedToTotal(t *testing.T) {
	f := NewFade(ones(100), time.Second, 5*time.Second)
	samples := drain(f)
	require.Len(t, samples, 100)
	assert.InDelta(t, 1.0, samples[0], 1e-6)
	assert.InDelta(t, 0.01, samples[99], 1e-6)
}

func TestFadeAbandonsInner(t *testing.T) {
	src := ones(1000)
	f := NewFade(src, time.Second, 100*time.Millisecond)
	drain(f)

	assert.Equal(t, 1000, src.pulls, "inner must not be pulled past truncation")

	_, ok := f.Next()
	assert.False(t, ok)
	assert.Equal(t, 1000, src.pulls)
}

func TestFadePropagatesEarlyEnd(t *testing.T) {
	src := &constant{value: 0.5, rate: 1000, channels: 1, limit: 10}
	f := NewFade(src, time.Second, 100*time.Millisecond)

	samples := drain(f)
	assert.Len(t, samples, 10, "no silence padding")
	for _, v := range samples {
		assert.Equal(t, float32(0.5), v)
	}

	_, ok := f.Next()
	assert.False(t, ok)
	assert.Equal(t, 11, src.pulls, "inner pulled once past its end only")

	d, bounded := NewFade(&constant{rate: 1000, channels: 1, limit: 10}, time.Second, 0).TotalDuration()
	assert.True(t, bounded)
	assert.Equal(t, 10*time.Millisecond, d)
}

func TestFadeCountsFrames(t *testing.T) {
	src := &constant{value: 1, rate: 100, channels: 2}
	samples := drain(NewFade(src, time.Second, 500*time.Millisecond))
	require.Len(t, samples, 200)

	// both samples of a frame share the gain
	for i := 0; i < len(samples); i += 2 {
		assert.Equal(t, samples[i], samples[i+1])
	}
	assert.InDelta(t, 1.0/50, samples[199], 1e-6)
}

func TestFadeIn(t *testing.T) {
	f := NewFade(ones(1000), time.Second, 0, WithFadeIn(100*time.Millisecond))
	samples := drain(f)
	require.Len(t, samples, 1000)

	assert.Equal(t, float32(0), samples[0])
	assert.InDelta(t, 0.5, samples[50], 1e-6)
	assert.Equal(t, float32(1), samples[100])
	assert.Equal(t, float32(1), samples[999])
}

func TestFadeInAndOutCompose(t *testing.T) {
	f := NewFade(ones(100), time.Second, time.Second, WithFadeIn(time.Second))
	samples := drain(f)
	require.Len(t, samples, 100)
	for i, v := range samples {
		want := float32(100-i) / 100 * float32(i) / 100
		assert.InDelta(t, want, v, 1e-6)
	}
}

func TestFadeTwoSecondScenario(t *testing.T) {
	const rate = 48000
	samples := drain(NewFade(ones(rate), 2*time.Second, 100*time.Millisecond))
	require.Len(t, samples, 2*rate)

	rampStart := 2*rate - rate/10
	assert.Equal(t, float32(1), samples[rampStart-1])
	assert.Equal(t, float32(1), samples[rampStart])
	assert.InDelta(t, 0.5, samples[rampStart+rate/20], 1e-4)
	assert.InDelta(t, 1.0/4800, samples[2*rate-1], 1e-6)
}

func TestFadeProperties(t *testing.T) {
	f := NewFade(&constant{rate: 44100, channels: 2}, 3*time.Second, time.Second)
	assert.Equal(t, 2, f.Channels())
	assert.Equal(t, 44100, f.SampleRate())
	d, ok := f.TotalDuration()
	assert.True(t, ok)
	assert.Equal(t, 3*time.Second, d)
	n, ok := f.CurrentFrameLen()
	assert.True(t, ok)
	assert.Equal(t, 3*44100*2, n)
}

func TestAmplify(t *testing.T) {
	a := Amplify(&constant{value: 0.5, rate: 1000, channels: 1, limit: 3}, 0.2)
	samples := drain(a)
	require.Len(t, samples, 3)
	for _, v := range samples {
		assert.InDelta(t, 0.1, v, 1e-7)
	}
}

func TestInstrumentedEvents(t *testing.T) {
	var events []Event
	src := &constant{value: 0.25, rate: 1000, channels: 1, limit: 5}
	s := NewInstrumented(src, "M-1", func(ev Event) { events = append(events, ev) })

	samples := drain(s)
	assert.Equal(t, []float32{0.25, 0.25, 0.25, 0.25, 0.25}, samples)

	// further pulls report nothing new
	_, ok := s.Next()
	assert.False(t, ok)

	require.Len(t, events, 2)
	assert.Equal(t, EventStarted, events[0].Kind)
	assert.Equal(t, "M-1", events[0].Label)
	assert.Equal(t, EventStopped, events[1].Kind)
}

func TestInstrumentedPeak(t *testing.T) {
	values := []float32{0.1, 0.3, 0.2, 0.5, -0.9}
	i := 0
	src := &funcStream{next: func() (float32, bool) {
		if i >= len(values) {
			return 0, false
		}
		v := values[i]
		i++
		return v, true
	}}

	var peaks []float32
	s := NewInstrumented(src, "beat", func(ev Event) {
		if ev.Kind == EventPeak {
			peaks = append(peaks, ev.Peak)
		}
	}, WithPeakTracking())

	assert.Equal(t, values, drain(s))
	assert.Equal(t, []float32{0.1, 0.3, 0.5}, peaks)
	peak, ok := s.Peak()
	assert.True(t, ok)
	assert.Equal(t, float32(0.5), peak)
}

func TestInstrumentedIsTransparent(t *testing.T) {
	src := &constant{rate: 22050, channels: 2, limit: 4}
	s := NewInstrumented(src, "x", func(Event) {})
	assert.Equal(t, 2, s.Channels())
	assert.Equal(t, 22050, s.SampleRate())
	d, ok := s.TotalDuration()
	assert.True(t, ok)
	want, _ := src.TotalDuration()
	assert.Equal(t, want, d)
	assert.Equal(t, "x", s.Label())
}

func TestInstrumentedSeesFadeTruncation(t *testing.T) {
	var kinds []EventKind
	s := NewInstrumented(NewFade(ones(1000), 2*time.Second, 100*time.Millisecond), "X",
		func(ev Event) { kinds = append(kinds, ev.Kind) })

	assert.Len(t, drain(s), 2000)
	assert.Equal(t, []EventKind{EventStarted, EventStopped}, kinds)
}

type funcStream struct {
	next func() (float32, bool)
}

func (f *funcStream) Next() (float32, bool)                { return f.next() }
func (f *funcStream) Channels() int                        { return 1 }
func (f *funcStream) SampleRate() int                      { return 1000 }
func (f *funcStream) CurrentFrameLen() (int, bool)         { return 0, false }
func (f *funcStream) TotalDuration() (time.Duration, bool) { return 0, false }
