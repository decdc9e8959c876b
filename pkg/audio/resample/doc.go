// ABOUTME: Format conversion package for sample streams
// ABOUTME: Channel mapping and linear-interpolation rate conversion
// Package resample converts streams to a common format so they can be
// summed by the mixer.
//
// Example:
//
//	beat := synth.NewBeat(110, 8)          // 48kHz mono
//	s := resample.Uniform(beat, 2, 44100)  // 44.1kHz stereo
package resample
