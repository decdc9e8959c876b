// ABOUTME: Audio output package for playing and recording the mix
// ABOUTME: Provides Output interface with oto, PortAudio, WAV and null sinks
// Package output provides audio sinks for the final mixed stream.
//
// Oto is the default device output. PortAudio is available with the
// portaudio build tag. WAV records to disk and Null discards in real time.
//
// Example:
//
//	out := output.NewOto()
//	err := out.Open(44100, 2)
//	err = out.Write(samples)
package output
