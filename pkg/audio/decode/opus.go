// ABOUTME: Ogg Opus file decoding
// ABOUTME: Decodes Opus files to float samples using libopusfile via hraban/opus
package decode

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/hraban/opus.v2"

	"github.com/gwambient/gwambient/pkg/audio"
)

// Opus always decodes at 48kHz
const opusSampleRate = 48000

// max frame size of 120ms at 48kHz
const opusFrameSamples = 5760

type opusReader struct {
	file     *os.File
	stream   *opus.Stream
	channels int
	pcm      []float32
}

func openOpus(path string, channels int) (chunkReader, audio.Format, error) {
	if channels <= 0 {
		channels = 2
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to open Opus file: %w", err)
	}

	stream, err := opus.NewStream(f)
	if err != nil {
		f.Close()
		return nil, audio.Format{}, fmt.Errorf("failed to create opus stream: %w", err)
	}

	format := audio.Format{SampleRate: opusSampleRate, Channels: channels}
	return &opusReader{
		file:     f,
		stream:   stream,
		channels: channels,
		pcm:      make([]float32, opusFrameSamples*channels),
	}, format, nil
}

func (r *opusReader) read() ([]float32, error) {
	n, err := r.stream.ReadFloat32(r.pcm)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("opus decode failed: %w", err)
	}

	samples := make([]float32, n*r.channels)
	copy(samples, r.pcm)
	return samples, nil
}

func (r *opusReader) rewind() error {
	if err := r.stream.Close(); err != nil {
		return fmt.Errorf("failed to close opus stream: %w", err)
	}
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to start: %w", err)
	}
	stream, err := opus.NewStream(r.file)
	if err != nil {
		return fmt.Errorf("failed to create opus stream: %w", err)
	}
	r.stream = stream
	return nil
}

func (r *opusReader) close() error {
	r.stream.Close()
	return r.file.Close()
}
