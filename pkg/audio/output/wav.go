// ABOUTME: WAV file recording output
// ABOUTME: Writes the mixed stream to a 16-bit PCM WAV file using go-audio/wav
package output

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	log "github.com/sirupsen/logrus"

	"github.com/gwambient/gwambient/pkg/audio"
)

// WAV records samples to a file
type WAV struct {
	path    string
	file    *os.File
	encoder *wav.Encoder
	buf     *goaudio.IntBuffer
	written int64
}

// NewWAV creates a WAV recorder writing to path
func NewWAV(path string) *WAV {
	return &WAV{path: path}
}

// Open creates the file and writes the header
func (w *WAV) Open(sampleRate, channels int) error {
	if w.path == "" {
		return fmt.Errorf("wav output needs a file path")
	}

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create wav file: %w", err)
	}

	w.file = f
	w.encoder = wav.NewEncoder(f, sampleRate, 16, channels, 1)
	w.buf = &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: 16,
	}

	log.Infof("Recording to %s: %dHz, %d channels", w.path, sampleRate, channels)
	return nil
}

// Write converts samples to 16-bit and appends them
func (w *WAV) Write(samples []float32) error {
	if w.encoder == nil {
		return ErrNotOpen
	}

	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]
	for i, s := range samples {
		w.buf.Data[i] = int(audio.FloatToInt16(s))
	}

	if err := w.encoder.Write(w.buf); err != nil {
		return fmt.Errorf("wav write failed: %w", err)
	}
	w.written += int64(len(samples))
	return nil
}

// Written returns the number of samples recorded
func (w *WAV) Written() int64 {
	return w.written
}

// Close finalizes the header and closes the file
func (w *WAV) Close() error {
	if w.encoder == nil {
		return nil
	}
	err := w.encoder.Close()
	w.encoder = nil
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to finalize wav file: %w", err)
	}
	return nil
}
