// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for playback and recording sinks
package output

import (
	"errors"
	"fmt"
)

// Output represents an audio sink fed with interleaved float samples
type Output interface {
	// Open initializes the sink
	Open(sampleRate, channels int) error

	// Write outputs samples, blocking until the sink accepts them
	Write(samples []float32) error

	// Close releases sink resources
	Close() error
}

// ErrNotOpen is returned when writing to a sink that was not opened
var ErrNotOpen = errors.New("output not initialized")

// New returns the named output. wavPath is only used by "wav".
func New(name, wavPath string) (Output, error) {
	switch name {
	case "oto", "":
		return NewOto(), nil
	case "portaudio":
		return NewPortAudio(), nil
	case "wav":
		return NewWAV(wavPath), nil
	case "null":
		return NewNull(), nil
	}
	return nil, fmt.Errorf("unknown output %q (supported: oto, portaudio, wav, null)", name)
}

// Tee writes to every output in order
type Tee []Output

func (t Tee) Open(sampleRate, channels int) error {
	for i, o := range t {
		if err := o.Open(sampleRate, channels); err != nil {
			for _, opened := range t[:i] {
				opened.Close()
			}
			return err
		}
	}
	return nil
}

func (t Tee) Write(samples []float32) error {
	for _, o := range t {
		if err := o.Write(samples); err != nil {
			return err
		}
	}
	return nil
}

func (t Tee) Close() error {
	var errs []error
	for _, o := range t {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
