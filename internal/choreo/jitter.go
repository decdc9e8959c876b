// ABOUTME: Randomized sleep lengths
// ABOUTME: Adds a uniform signed offset to a nominal duration, floored at zero
package choreo

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Jitter draws uniform offsets. It is safe for concurrent use.
type Jitter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewJitter creates a jitter source. A zero seed draws a random one.
func NewJitter(seed uint64) *Jitter {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Jitter{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// offset returns a uniform value in [-bound, bound]
func (j *Jitter) offset(bound time.Duration) time.Duration {
	if bound <= 0 {
		return 0
	}
	j.mu.Lock()
	f := j.rng.Float64()
	j.mu.Unlock()
	return time.Duration((2*f - 1) * float64(bound))
}

// Apply returns nominal plus a random offset within bound, never negative
func (j *Jitter) Apply(nominal, bound time.Duration) (time.Duration, error) {
	d, err := addDurations(nominal, j.offset(bound))
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, nil
	}
	return d, nil
}
