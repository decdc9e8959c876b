// ABOUTME: Tests for the audio engine pump loop
// ABOUTME: Uses a capturing output to check mixing, volume and stats
package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gwambient/gwambient/pkg/audio"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var stereo = audio.Format{SampleRate: 1000, Channels: 2}

// capture records writes and cancels after limit writes
type capture struct {
	mu      sync.Mutex
	opened  bool
	closed  bool
	writes  [][]float32
	limit   int
	cancel  context.CancelFunc
	openErr error
	failAt  int
}

func (c *capture) Open(sampleRate, channels int) error {
	if c.openErr != nil {
		return c.openErr
	}
	c.opened = true
	return nil
}

func (c *capture) Write(samples []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAt > 0 && len(c.writes)+1 == c.failAt {
		return errors.New("device gone")
	}
	c.writes = append(c.writes, append([]float32(nil), samples...))
	if len(c.writes) == c.limit && c.cancel != nil {
		c.cancel()
	}
	return nil
}

func (c *capture) Close() error {
	c.closed = true
	return nil
}

type level struct {
	value float32
	left  int
}

func (l *level) Next() (float32, bool) {
	if l.left == 0 {
		return 0, false
	}
	if l.left > 0 {
		l.left--
	}
	return l.value, true
}

func (l *level) Channels() int                        { return 2 }
func (l *level) SampleRate() int                      { return 1000 }
func (l *level) CurrentFrameLen() (int, bool)         { return 0, false }
func (l *level) TotalDuration() (time.Duration, bool) { return 0, false }

func run(t *testing.T, e *Engine, out *capture, writes int) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out.limit = writes
	out.cancel = cancel
	require.NoError(t, e.Run(ctx))
	assert.True(t, out.closed)
}

func TestEngineCreatesChannels(t *testing.T) {
	e := New(Config{Format: stereo, Channels: []string{"beats", "M-1", "beats"}, Output: &capture{}})

	assert.Equal(t, 2, e.Mixer().Len())
	assert.Zero(t, e.Stats().Uptime)
	_, ok := e.Channel("beats")
	assert.True(t, ok)
	_, ok = e.Channel("nope")
	assert.False(t, ok)

	var names []string
	for _, ch := range e.Channels() {
		names = append(names, ch.Name())
	}
	assert.Equal(t, []string{"M-1", "beats"}, names)
}

func TestEnginePumpsMix(t *testing.T) {
	out := &capture{}
	e := New(Config{Format: stereo, BufferMs: 10, Output: out, Channels: []string{"a"}})

	ch, _ := e.Channel("a")
	ch.Enqueue(&level{value: 0.5, left: 30})

	run(t, e, out, 3)

	require.Len(t, out.writes, 3)
	assert.Len(t, out.writes[0], 20)

	var all []float32
	for _, w := range out.writes {
		all = append(all, w...)
	}
	for i := 0; i < 30; i++ {
		assert.Equal(t, float32(0.5), all[i], "sample %d", i)
	}
	for i := 30; i < 60; i++ {
		assert.Equal(t, float32(0), all[i], "sample %d", i)
	}

	stats := e.Stats()
	assert.Equal(t, int64(30), stats.Frames)
	assert.Equal(t, 30*time.Millisecond, stats.Played)
	assert.Positive(t, stats.Uptime)
	assert.Equal(t, []ChannelStats{{Name: "a", Played: 1}}, stats.Channels)
}

func TestEngineVolume(t *testing.T) {
	tests := []struct {
		name   string
		volume int
		muted  bool
		want   float32
	}{
		{"full", 100, false, 0.8},
		{"half", 50, false, 0.4},
		{"clamped high", 150, false, 0.8},
		{"clamped low", -5, false, 0},
		{"muted", 100, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &capture{}
			e := New(Config{Format: stereo, BufferMs: 10, Output: out})
			e.Mixer().Add(&level{value: 0.8, left: -1})
			e.SetVolume(tt.volume)
			e.SetMuted(tt.muted)

			run(t, e, out, 1)

			for _, v := range out.writes[0] {
				assert.InDelta(t, tt.want, v, 1e-6)
			}
			assert.InDelta(t, tt.want, e.Stats().Peak, 1e-6)
		})
	}
}

func TestEngineCountsClipping(t *testing.T) {
	out := &capture{}
	e := New(Config{Format: stereo, BufferMs: 10, Output: out})
	e.Mixer().Add(&level{value: 0.75, left: -1})
	e.Mixer().Add(&level{value: 0.75, left: 4})

	run(t, e, out, 1)

	assert.InDelta(t, 1.5, out.writes[0][0], 1e-6)
	assert.Equal(t, int64(4), e.Stats().Clipped)
}

func TestEngineOpenFailure(t *testing.T) {
	boom := errors.New("no audio device")
	e := New(Config{Format: stereo, Output: &capture{openErr: boom}})

	err := e.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestEngineWriteFailure(t *testing.T) {
	out := &capture{failAt: 2}
	e := New(Config{Format: stereo, BufferMs: 10, Output: out})

	err := e.Run(context.Background())
	assert.ErrorContains(t, err, "device gone")
	assert.True(t, out.closed)
	assert.Equal(t, int64(10), e.Stats().Frames)
}
