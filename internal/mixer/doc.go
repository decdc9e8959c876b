// ABOUTME: Mixing package for per-instrument queues and the master mix
// ABOUTME: Provides Channel, Completion and Mixer
// Package mixer combines sample streams.
//
// A Channel plays streams one after another with no gap and signals each
// stream's Completion once it has been played out. The Mixer sums channels
// and any other inputs into one endless stream.
//
// Example:
//
//	m := mixer.New(audio.Format{SampleRate: 44100, Channels: 2})
//	beats := mixer.NewChannel("beats", m.Format())
//	m.Add(beats)
//	done := beats.Enqueue(stream)
//	<-done.Done()
package mixer
