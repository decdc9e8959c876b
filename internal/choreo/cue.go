// ABOUTME: Cue and track definitions
// ABOUTME: A track is a looping list of play and sleep cues
package choreo

import (
	"fmt"
	"time"
)

// Cue is one step of a track
type Cue interface {
	fmt.Stringer
	cue()
}

// Play starts one sound on its instrument's channel
type Play struct {
	Instrument string
	// Label names the sound in the registry; defaults to Instrument
	Label    string
	Duration time.Duration
	Fade     time.Duration
	FadeIn   time.Duration
	Gain     float32
}

func (Play) cue() {}

// Name returns the registry label for the sound
func (p Play) Name() string {
	if p.Label != "" {
		return p.Label
	}
	return p.Instrument
}

func (p Play) String() string {
	return fmt.Sprintf("play %s for %v (fade %v, gain %.2f)", p.Name(), p.Duration, p.Fade, p.Gain)
}

// Sleep pauses the track for Duration plus or minus up to Jitter
type Sleep struct {
	Duration time.Duration
	Jitter   time.Duration
}

func (Sleep) cue() {}

func (s Sleep) String() string {
	if s.Jitter > 0 {
		return fmt.Sprintf("sleep %v ±%v", s.Duration, s.Jitter)
	}
	return fmt.Sprintf("sleep %v", s.Duration)
}

// Track is an endlessly repeated cue list. When Cycle is set, each pass
// is padded with a sleep so that it lasts at least Cycle.
type Track struct {
	Name  string
	Cues  []Cue
	Cycle time.Duration
}

// Rest returns how long to sleep after a pass that took elapsed
func (t Track) Rest(elapsed time.Duration) time.Duration {
	if t.Cycle <= 0 || elapsed >= t.Cycle {
		return 0
	}
	return t.Cycle - elapsed
}

// sleeps reports whether a pass over the track can take any time
func (t Track) sleeps() bool {
	if t.Cycle > 0 {
		return true
	}
	for _, c := range t.Cues {
		if s, ok := c.(Sleep); ok && (s.Duration > 0 || s.Jitter > 0) {
			return true
		}
	}
	return false
}
