// ABOUTME: Tests for channel queues, completions and the mixer
// ABOUTME: Covers gapless sequencing, one-shot completion and concurrent insertion
package mixer

import (
	"context"
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

// tone yields value for limit samples, or forever when limit is 0
type tone struct {
	value    float32
	channels int
	rate     int
	limit    int
	pulled   int
}

func (t *tone) Next() (float32, bool) {
	if t.limit > 0 && t.pulled >= t.limit {
		return 0, false
	}
	t.pulled++
	return t.value, true
}

func (t *tone) Channels() int                        { return t.channels }
func (t *tone) SampleRate() int                      { return t.rate }
func (t *tone) CurrentFrameLen() (int, bool)         { return 0, false }
func (t *tone) TotalDuration() (time.Duration, bool) { return 0, false }

var mono = audio.Format{SampleRate: 8000, Channels: 1}
var stereo = audio.Format{SampleRate: 8000, Channels: 2}

func TestCompletionFiresOnce(t *testing.T) {
	c := newCompletion()
	assert.False(t, c.Fired())

	c.fire()
	c.fire()
	assert.True(t, c.Fired())
	require.NoError(t, c.Wait(context.Background()))

	select {
	case <-c.Done():
	default:
		t.Fatal("Done channel not closed")
	}
}

func TestCompletionWaitCancelled(t *testing.T) {
	c := newCompletion()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Wait(ctx), context.Canceled)
	assert.False(t, c.Fired())
}

func TestChannelIdleIsSilent(t *testing.T) {
	ch := NewChannel("idle", stereo)
	assert.Equal(t, []float32{0, 0, 0, 0}, audio.Collect(ch, 4))
	assert.False(t, ch.Playing())
}

func TestChannelPlaysBackToBack(t *testing.T) {
	ch := NewChannel("beats", mono)
	a := ch.Enqueue(&tone{value: 1, channels: 1, rate: 8000, limit: 3})
	b := ch.Enqueue(&tone{value: 2, channels: 1, rate: 8000, limit: 2})
	assert.Equal(t, 2, ch.Pending())

	got := audio.Collect(ch, 3)
	assert.Equal(t, []float32{1, 1, 1}, got)
	assert.False(t, a.Fired(), "completion before the end was observed")
	assert.True(t, ch.Playing())

	// the pull that observes A's end returns B's first sample
	v, ok := ch.Next()
	require.True(t, ok)
	assert.Equal(t, float32(2), v)
	assert.True(t, a.Fired())
	assert.False(t, b.Fired())

	assert.Equal(t, []float32{2, 0, 0}, audio.Collect(ch, 3))
	assert.True(t, b.Fired())
	assert.Equal(t, 0, ch.Pending())
	assert.Equal(t, int64(2), ch.Played())
	assert.False(t, ch.Playing())
}

func TestChannelPreservesOrder(t *testing.T) {
	ch := NewChannel("order", mono)
	var done []*Completion
	for i := 1; i <= 5; i++ {
		done = append(done, ch.Enqueue(&tone{value: float32(i), channels: 1, rate: 8000, limit: 2}))
	}

	assert.Equal(t, []float32{1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 0}, audio.Collect(ch, 11))
	for i, c := range done {
		assert.True(t, c.Fired(), "completion %d", i)
	}
}

func TestChannelStartsOnFrameBoundary(t *testing.T) {
	ch := NewChannel("stereo", stereo)

	v, _ := ch.Next()
	assert.Equal(t, float32(0), v)

	ch.Enqueue(&tone{value: 1, channels: 2, rate: 8000, limit: 4})
	assert.Equal(t, []float32{0, 1, 1, 1, 1, 0}, audio.Collect(ch, 6))
}

func TestChannelAdaptsFormat(t *testing.T) {
	ch := NewChannel("stereo", stereo)
	ch.Enqueue(&tone{value: 0.5, channels: 1, rate: 8000, limit: 2})

	assert.Equal(t, []float32{0.5, 0.5, 0.5, 0.5, 0, 0}, audio.Collect(ch, 6))
}

func TestChannelNilStream(t *testing.T) {
	ch := NewChannel("nil", mono)
	assert.True(t, ch.Enqueue(nil).Fired())
	assert.Equal(t, 0, ch.Pending())
}

func TestChannelCompletionWakesWatcher(t *testing.T) {
	ch := NewChannel("watch", mono)
	done := ch.Enqueue(&tone{value: 1, channels: 1, rate: 8000, limit: 100})

	woke := make(chan struct{})
	go func() {
		defer close(woke)
		_ = done.Wait(context.Background())
	}()

	audio.Collect(ch, 101)

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("watcher not woken")
	}
}

func TestMixerSilentWhenEmpty(t *testing.T) {
	m := New(stereo)
	assert.Equal(t, []float32{0, 0, 0, 0}, audio.Collect(m, 4))
	assert.Equal(t, 0, m.Len())
}

func TestMixerSumsWithoutClipping(t *testing.T) {
	tests := []struct {
		name   string
		values []float32
		want   float32
	}{
		{"single", []float32{0.25}, 0.25},
		{"additive", []float32{0.25, 0.5}, 0.75},
		{"no clipping", []float32{0.8, 0.8}, 1.6},
		{"cancelling", []float32{0.5, -0.5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(stereo)
			for _, v := range tt.values {
				m.Add(&tone{value: v, channels: 2, rate: 8000})
			}
			for _, got := range audio.Collect(m, 8) {
				assert.InDelta(t, tt.want, got, 1e-6)
			}
		})
	}
}

func TestMixerPrunesEndedInputs(t *testing.T) {
	m := New(mono)
	m.Add(&tone{value: 1, channels: 1, rate: 8000})
	m.Add(&tone{value: 0.5, channels: 1, rate: 8000, limit: 2})

	assert.Equal(t, []float32{1.5, 1.5, 1, 1}, audio.Collect(m, 4))
	assert.Equal(t, 1, m.Len())
}

func TestMixerRemove(t *testing.T) {
	m := New(mono)
	a := &tone{value: 1, channels: 1, rate: 8000}
	b := &tone{value: 2, channels: 1, rate: 8000}
	m.Add(a)
	m.Add(b)

	assert.Equal(t, []float32{3}, audio.Collect(m, 1))
	assert.True(t, m.Remove(a))
	assert.False(t, m.Remove(a))
	assert.Equal(t, []float32{2}, audio.Collect(m, 1))
}

func TestMixerNeverEnds(t *testing.T) {
	m := New(mono)
	m.Add(&tone{value: 1, channels: 1, rate: 8000, limit: 1})
	for i := 0; i < 10; i++ {
		_, ok := m.Next()
		require.True(t, ok)
	}
}

func TestMixerChannelsIntegration(t *testing.T) {
	m := New(mono)
	drone := NewChannel("drone", mono)
	beats := NewChannel("beats", mono)
	m.Add(drone)
	m.Add(beats)

	drone.Enqueue(&tone{value: 0.5, channels: 1, rate: 8000, limit: 4})
	done := beats.Enqueue(&tone{value: 0.25, channels: 1, rate: 8000, limit: 2})

	assert.Equal(t, []float32{0.75, 0.75, 0.5, 0.5, 0}, audio.Collect(m, 5))
	assert.True(t, done.Fired())
	assert.Equal(t, 2, m.Len(), "idle channels stay mixed")
}

func TestMixerConcurrentAdd(t *testing.T) {
	m := New(stereo)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.Add(&tone{value: 0.01, channels: 2, rate: 8000, limit: 200})
			}
		}()
	}

	// every frame comes from one snapshot, so both channels always agree
	for i := 0; i < 20000; i++ {
		l, _ := m.Next()
		r, _ := m.Next()
		require.Equal(t, l, r, "frame %d mixed from two input sets", i)
	}

	wg.Wait()
}
