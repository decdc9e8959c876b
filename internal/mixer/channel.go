// ABOUTME: Per-instrument sequencing queue
// ABOUTME: Plays enqueued streams back to back and emits silence when idle
package mixer

import (
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gwambient/gwambient/pkg/audio"
	"github.com/gwambient/gwambient/pkg/audio/resample"
)

type queued struct {
	stream audio.Stream
	done   *Completion
}

// Channel is a FIFO of finite streams exposed as a single endless stream.
//
// Enqueue may be called from any goroutine. Next must only be called by
// the single consumer (the mixer).
type Channel struct {
	name   string
	format audio.Format

	mu      sync.Mutex
	pending []*queued
	waiting atomic.Int32

	// consumer side
	current *queued
	pos     int
	playing atomic.Bool
	played  atomic.Int64
}

// NewChannel creates an idle channel producing samples in format
func NewChannel(name string, format audio.Format) *Channel {
	return &Channel{name: name, format: format}
}

// Name returns the channel name
func (c *Channel) Name() string {
	return c.name
}

// Enqueue appends s to the queue and returns its completion
func (c *Channel) Enqueue(s audio.Stream) *Completion {
	done := newCompletion()
	if s == nil {
		done.fire()
		return done
	}

	item := &queued{
		stream: resample.Uniform(s, c.format.Channels, c.format.SampleRate),
		done:   done,
	}

	c.mu.Lock()
	c.pending = append(c.pending, item)
	c.mu.Unlock()
	c.waiting.Add(1)

	return done
}

// Pending returns the number of streams waiting behind the current one
func (c *Channel) Pending() int {
	return int(c.waiting.Load())
}

// Playing reports whether a stream is currently being played
func (c *Channel) Playing() bool {
	return c.playing.Load()
}

// Played returns the number of streams played to completion
func (c *Channel) Played() int64 {
	return c.played.Load()
}

func (c *Channel) advance() bool {
	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return false
	}
	next := c.pending[0]
	c.pending[0] = nil
	c.pending = c.pending[1:]
	c.mu.Unlock()

	c.waiting.Add(-1)
	c.current = next
	c.playing.Store(true)
	return true
}

func (c *Channel) finishCurrent() {
	c.current.done.fire()
	c.current = nil
	c.playing.Store(false)
	c.played.Add(1)
	log.Debugf("Channel %s: stream finished (%d pending)", c.name, c.Pending())
}

func (c *Channel) step() {
	c.pos++
	if c.pos == c.format.Channels {
		c.pos = 0
	}
}

// Next returns the next sample. The channel never ends.
func (c *Channel) Next() (float32, bool) {
	for {
		if c.current == nil {
			// new streams only start on a frame boundary
			if c.pos != 0 || !c.advance() {
				c.step()
				return 0, true
			}
		}

		if v, ok := c.current.stream.Next(); ok {
			c.step()
			return v, true
		}
		c.finishCurrent()
	}
}

func (c *Channel) Channels() int                        { return c.format.Channels }
func (c *Channel) SampleRate() int                      { return c.format.SampleRate }
func (c *Channel) CurrentFrameLen() (int, bool)         { return 0, false }
func (c *Channel) TotalDuration() (time.Duration, bool) { return 0, false }
