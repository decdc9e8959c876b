// ABOUTME: Constant gain transform
// ABOUTME: Scales every sample of a stream by a fixed factor
package effect

import (
	"time"

	"github.com/gwambient/gwambient/pkg/audio"
)

// Amplified scales its inner stream by a constant gain
type Amplified struct {
	inner audio.Stream
	gain  float32
}

// Amplify wraps inner with a constant gain
func Amplify(inner audio.Stream, gain float32) *Amplified {
	return &Amplified{inner: inner, gain: gain}
}

func (a *Amplified) Next() (float32, bool) {
	v, ok := a.inner.Next()
	if !ok {
		return 0, false
	}
	return v * a.gain, true
}

func (a *Amplified) Channels() int                        { return a.inner.Channels() }
func (a *Amplified) SampleRate() int                      { return a.inner.SampleRate() }
func (a *Amplified) CurrentFrameLen() (int, bool)         { return a.inner.CurrentFrameLen() }
func (a *Amplified) TotalDuration() (time.Duration, bool) { return a.inner.TotalDuration() }
