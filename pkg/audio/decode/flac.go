// ABOUTME: FLAC file decoding
// ABOUTME: Decodes FLAC frames to interleaved float samples using mewkiz/flac
package decode

import (
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"

	"github.com/gwambient/gwambient/pkg/audio"
)

type flacReader struct {
	file     *os.File
	stream   *flac.Stream
	channels int
	bitDepth int
}

func openFLAC(path string) (chunkReader, audio.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to open FLAC file: %w", err)
	}

	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, audio.Format{}, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	format := audio.Format{SampleRate: int(info.SampleRate), Channels: int(info.NChannels)}
	return &flacReader{
		file:     f,
		stream:   stream,
		channels: int(info.NChannels),
		bitDepth: int(info.BitsPerSample),
	}, format, nil
}

func (r *flacReader) read() ([]float32, error) {
	frame, err := r.stream.ParseNext()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("flac decode error: %w", err)
	}

	blockSize := int(frame.BlockSize)
	samples := make([]float32, 0, blockSize*r.channels)
	for i := 0; i < blockSize; i++ {
		for ch := 0; ch < r.channels; ch++ {
			samples = append(samples, audio.IntToFloat(frame.Subframes[ch].Samples[i], r.bitDepth))
		}
	}
	return samples, nil
}

func (r *flacReader) rewind() error {
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to start: %w", err)
	}
	stream, err := flac.New(r.file)
	if err != nil {
		return fmt.Errorf("failed to create new stream: %w", err)
	}
	r.stream = stream
	return nil
}

func (r *flacReader) close() error {
	return r.file.Close()
}
