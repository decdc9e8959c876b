// ABOUTME: WAV file decoding
// ABOUTME: Decodes PCM WAV to float samples using go-audio/wav
package decode

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/gwambient/gwambient/pkg/audio"
)

const wavChunkSamples = 4096

type wavReader struct {
	file     *os.File
	decoder  *wav.Decoder
	buf      *goaudio.IntBuffer
	bitDepth int
}

func openWAV(path string) (chunkReader, audio.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to open WAV file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		f.Close()
		return nil, audio.Format{}, fmt.Errorf("invalid WAV file: %s", path)
	}

	pcmFormat := decoder.Format()
	format := audio.Format{SampleRate: pcmFormat.SampleRate, Channels: pcmFormat.NumChannels}

	return &wavReader{
		file:    f,
		decoder: decoder,
		buf: &goaudio.IntBuffer{
			Format: pcmFormat,
			Data:   make([]int, wavChunkSamples*pcmFormat.NumChannels),
		},
		bitDepth: int(decoder.BitDepth),
	}, format, nil
}

func (r *wavReader) read() ([]float32, error) {
	n, err := r.decoder.PCMBuffer(r.buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("wav decode error: %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}

	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		samples[i] = audio.IntToFloat(int32(r.buf.Data[i]), r.bitDepth)
	}
	return samples, nil
}

func (r *wavReader) rewind() error {
	if err := r.decoder.Rewind(); err != nil {
		return fmt.Errorf("failed to rewind WAV: %w", err)
	}
	return nil
}

func (r *wavReader) close() error {
	return r.file.Close()
}
