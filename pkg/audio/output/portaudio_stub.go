//go:build !portaudio

// ABOUTME: Placeholder PortAudio output for builds without the C library
// ABOUTME: Every operation reports that the portaudio build tag is missing
package output

import "errors"

// ErrPortAudioDisabled is returned when the binary was built without PortAudio
var ErrPortAudioDisabled = errors.New("portaudio output not compiled in (build with -tags portaudio)")

// PortAudio is unavailable in this build
type PortAudio struct{}

// NewPortAudio returns an output that refuses to open
func NewPortAudio() Output {
	return &PortAudio{}
}

func (p *PortAudio) Open(sampleRate, channels int) error { return ErrPortAudioDisabled }
func (p *PortAudio) Write(samples []float32) error       { return ErrPortAudioDisabled }
func (p *PortAudio) Close() error                        { return nil }
