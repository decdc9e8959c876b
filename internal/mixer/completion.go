// ABOUTME: One-shot completion signal for queued streams
// ABOUTME: Fires exactly once after the stream's final sample is pulled
package mixer

import (
	"context"
	"sync"
)

// Completion is closed once its stream has been played to the end
type Completion struct {
	once sync.Once
	done chan struct{}
}

func newCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

func (c *Completion) fire() {
	c.once.Do(func() {
		close(c.done)
	})
}

// Done returns a channel closed when the stream has finished
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Fired reports whether the stream has finished
func (c *Completion) Fired() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the stream finishes or ctx ends
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
