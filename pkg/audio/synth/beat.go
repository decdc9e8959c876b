// ABOUTME: Beat-frequency oscillator
// ABOUTME: Sums two close sines so their amplitude beats once per period
package synth

import (
	"math"
	"time"

	log "github.com/sirupsen/logrus"
)

// BeatSampleRate is the fixed rate of a Beat oscillator
const BeatSampleRate = 48000

// Beat is an unbounded mono source producing an audible amplitude beat.
//
// The two component frequencies are offset symmetrically around the base
// so that their phase difference completes one cycle every beat period.
type Beat struct {
	freq1     float64
	freq2     float64
	numSample uint64
}

// NewBeat creates a beat oscillator around base (Hz) with the given beat
// period in seconds
func NewBeat(base, beatPeriod float64) *Beat {
	half := 1.0 / beatPeriod / 2.0

	freq1 := base + half
	freq2 := base - half

	log.Debugf("Beat oscillator: base %.3fHz, beat period %.3fs -> f1 %.3fHz, f2 %.3fHz",
		base, beatPeriod, freq1, freq2)

	// start half a period in so playback opens between two beats
	skip := uint64(BeatSampleRate * beatPeriod / 2.0)

	return &Beat{freq1: freq1, freq2: freq2, numSample: skip}
}

// Frequencies returns the two component frequencies
func (b *Beat) Frequencies() (float64, float64) {
	return b.freq1, b.freq2
}

// Position returns the current sample index
func (b *Beat) Position() uint64 {
	return b.numSample
}

func (b *Beat) Next() (float32, bool) {
	b.numSample++

	n := float64(b.numSample)
	v1 := math.Sin(2 * math.Pi * b.freq1 * n / BeatSampleRate)
	v2 := math.Sin(2 * math.Pi * b.freq2 * n / BeatSampleRate)
	return float32((v1 + v2) / 2), true
}

func (b *Beat) Channels() int                        { return 1 }
func (b *Beat) SampleRate() int                      { return BeatSampleRate }
func (b *Beat) CurrentFrameLen() (int, bool)         { return 0, false }
func (b *Beat) TotalDuration() (time.Duration, bool) { return 0, false }
