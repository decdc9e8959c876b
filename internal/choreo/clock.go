// ABOUTME: Time source used by the scheduler
// ABOUTME: Wall clock for playback and a manually advanced clock for tests
package choreo

import (
	"context"
	"sync"
	"time"
)

// Clock tells time and sleeps
type Clock interface {
	Now() time.Time

	// Sleep blocks for d or until ctx is done
	Sleep(ctx context.Context, d time.Duration) error
}

// WallClock is the real clock
type WallClock struct{}

func (WallClock) Now() time.Time {
	return time.Now()
}

func (WallClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type sleeper struct {
	deadline time.Time
	wake     chan struct{}
}

// VirtualClock only moves when Advance is called. Sleepers wake once the
// clock reaches their deadline.
type VirtualClock struct {
	mu       sync.Mutex
	now      time.Time
	sleepers []*sleeper
}

// NewVirtualClock creates a clock reading start
func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{now: start}
}

func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *VirtualClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	c.mu.Lock()
	s := &sleeper{deadline: c.now.Add(d), wake: make(chan struct{})}
	c.sleepers = append(c.sleepers, s)
	c.mu.Unlock()

	select {
	case <-s.wake:
		return nil
	case <-ctx.Done():
		c.mu.Lock()
		c.drop(s)
		c.mu.Unlock()
		return ctx.Err()
	}
}

func (c *VirtualClock) drop(s *sleeper) {
	for i, other := range c.sleepers {
		if other == s {
			c.sleepers = append(c.sleepers[:i], c.sleepers[i+1:]...)
			return
		}
	}
}

// Advance moves the clock forward and wakes every sleeper whose deadline
// has passed
func (c *VirtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
	kept := c.sleepers[:0]
	for _, s := range c.sleepers {
		if s.deadline.After(c.now) {
			kept = append(kept, s)
			continue
		}
		close(s.wake)
	}
	c.sleepers = kept
}

// Sleepers returns the number of goroutines blocked in Sleep
func (c *VirtualClock) Sleepers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sleepers)
}
