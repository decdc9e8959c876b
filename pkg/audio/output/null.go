// ABOUTME: Discarding output paced in real time
// ABOUTME: Lets the engine run headless at the device rate without a device
package output

import (
	"time"
)

// Null discards samples, sleeping so writes take as long as playback would
type Null struct {
	sampleRate int
	channels   int
	start      time.Time
	played     time.Duration
	ready      bool
}

// NewNull creates a discarding output
func NewNull() *Null {
	return &Null{}
}

func (n *Null) Open(sampleRate, channels int) error {
	n.sampleRate = sampleRate
	n.channels = channels
	n.start = time.Now()
	n.ready = true
	return nil
}

func (n *Null) Write(samples []float32) error {
	if !n.ready {
		return ErrNotOpen
	}
	frames := len(samples) / n.channels
	n.played += time.Duration(frames) * time.Second / time.Duration(n.sampleRate)
	if ahead := n.played - time.Since(n.start); ahead > 0 {
		time.Sleep(ahead)
	}
	return nil
}

func (n *Null) Close() error {
	n.ready = false
	return nil
}
