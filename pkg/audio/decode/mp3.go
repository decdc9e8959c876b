// ABOUTME: MP3 file decoding
// ABOUTME: Decodes MP3 to float samples using go-mp3
package decode

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"

	"github.com/gwambient/gwambient/pkg/audio"
)

const mp3ChunkBytes = 8192

type mp3Reader struct {
	file    *os.File
	decoder *mp3.Decoder
	raw     []byte
}

func openMP3(path string) (chunkReader, audio.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to open MP3 file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, audio.Format{}, fmt.Errorf("failed to decode MP3: %w", err)
	}

	// go-mp3 always outputs 16-bit stereo
	format := audio.Format{SampleRate: decoder.SampleRate(), Channels: 2}
	return &mp3Reader{file: f, decoder: decoder, raw: make([]byte, mp3ChunkBytes)}, format, nil
}

func (r *mp3Reader) read() ([]float32, error) {
	n, err := r.decoder.Read(r.raw)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	numSamples := n / 2
	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		samples[i] = audio.Int16ToFloat(int16(binary.LittleEndian.Uint16(r.raw[i*2:])))
	}
	return samples, err
}

func (r *mp3Reader) rewind() error {
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to start: %w", err)
	}
	decoder, err := mp3.NewDecoder(r.file)
	if err != nil {
		return fmt.Errorf("failed to create new decoder: %w", err)
	}
	r.decoder = decoder
	return nil
}

func (r *mp3Reader) close() error {
	return r.file.Close()
}
