//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Blocking device writes in fixed-size buffers, carrying partial buffers between calls
package output

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

const portAudioFrames = 1024

// PortAudio plays through the default PortAudio device
type PortAudio struct {
	stream *portaudio.Stream
	buffer []float32
	filled int
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() Output {
	return &PortAudio{}
}

// Open initializes PortAudio and starts the default output stream
func (p *PortAudio) Open(sampleRate, channels int) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	p.buffer = make([]float32, portAudioFrames*channels)
	p.filled = 0

	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), portAudioFrames, &p.buffer)
	if err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("failed to open portaudio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return fmt.Errorf("failed to start portaudio stream: %w", err)
	}

	p.stream = stream
	return nil
}

// Write queues samples and blocks while full device buffers are played.
// A trailing partial buffer waits for the next call.
func (p *PortAudio) Write(samples []float32) error {
	if p.stream == nil {
		return ErrNotOpen
	}

	for len(samples) > 0 {
		n := copy(p.buffer[p.filled:], samples)
		p.filled += n
		samples = samples[n:]

		if p.filled < len(p.buffer) {
			return nil
		}
		if err := p.stream.Write(); err != nil {
			return fmt.Errorf("portaudio write failed: %w", err)
		}
		p.filled = 0
	}
	return nil
}

// Close stops the stream and releases PortAudio
func (p *PortAudio) Close() error {
	if p.stream == nil {
		return nil
	}
	stream := p.stream
	p.stream = nil

	if err := stream.Stop(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return fmt.Errorf("failed to stop portaudio stream: %w", err)
	}
	if err := stream.Close(); err != nil {
		_ = portaudio.Terminate()
		return err
	}
	return portaudio.Terminate()
}
