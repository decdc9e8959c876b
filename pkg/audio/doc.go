// ABOUTME: Audio fundamentals package providing the Stream contract
// ABOUTME: Defines Stream, Format and sample conversion functions
// Package audio defines the pull-based sample stream used throughout gwambient.
//
// A Stream yields one interleaved float32 sample per Next call. Sources
// (oscillators, decoded files), transforms (fades, gain, instrumentation),
// channel queues and the mixer all implement it, so they compose by wrapping.
//
// Example:
//
//	s := synth.NewBeat(110, 8)
//	faded := effect.NewFade(s, 30*time.Second, 2*time.Second)
//	samples := audio.Collect(faded, 48000)
package audio
