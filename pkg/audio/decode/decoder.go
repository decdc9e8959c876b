// ABOUTME: File decoder entry point and looping stream plumbing
// ABOUTME: Opens MP3, FLAC, WAV and Ogg Opus files as looping sample streams
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gwambient/gwambient/pkg/audio"
)

// ErrUnsupportedFormat is returned for files with an unknown extension
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// chunkReader decodes a file chunk by chunk
type chunkReader interface {
	// read returns the next decoded chunk; io.EOF at end of file
	read() ([]float32, error)

	// rewind restarts decoding from the beginning of the file
	rewind() error

	close() error
}

// Options controls how a file is opened
type Options struct {
	// Loop restarts the file at EOF instead of ending the stream
	Loop bool

	// Channels is the channel count assumed for Ogg Opus files
	Channels int
}

// Option configures Open
type Option func(*Options)

// WithoutLoop makes the stream end at the end of the file
func WithoutLoop() Option {
	return func(o *Options) { o.Loop = false }
}

// WithChannels sets the channel count for formats that don't report one
func WithChannels(channels int) Option {
	return func(o *Options) { o.Channels = channels }
}

// Open opens an audio file as a stream. Files loop by default.
func Open(path string, opts ...Option) (*FileStream, error) {
	o := Options{Loop: true, Channels: 2}
	for _, opt := range opts {
		opt(&o)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", path)
	}

	var (
		reader chunkReader
		format audio.Format
		err    error
	)

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp3":
		reader, format, err = openMP3(path)
	case ".flac":
		reader, format, err = openFLAC(path)
	case ".wav":
		reader, format, err = openWAV(path)
	case ".opus", ".ogg":
		reader, format, err = openOpus(path, o.Channels)
	default:
		return nil, fmt.Errorf("%w: %s (supported: .mp3, .flac, .wav, .opus)", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	log.Debugf("Opened %s: %dHz, %d channels, loop=%v", filepath.Base(path), format.SampleRate, format.Channels, o.Loop)

	return &FileStream{
		path:   path,
		format: format,
		reader: reader,
		loop:   o.Loop,
	}, nil
}

// FileStream is a decoded file exposed as a stream
type FileStream struct {
	path   string
	format audio.Format
	reader chunkReader
	loop   bool

	buf   []float32
	pos   int
	ended bool
}

func (s *FileStream) Next() (float32, bool) {
	if s.ended {
		return 0, false
	}
	for s.pos >= len(s.buf) {
		if !s.refill() {
			s.finish()
			return 0, false
		}
	}
	v := s.buf[s.pos]
	s.pos++
	return v, true
}

// refill loads the next chunk, looping at EOF. A file that yields no
// samples between two rewinds ends the stream.
func (s *FileStream) refill() bool {
	rewound := false
	for {
		chunk, err := s.reader.read()
		if len(chunk) > 0 {
			s.buf = chunk
			s.pos = 0
			return true
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, io.EOF) {
			log.Errorf("Decode error in %s: %v", s.path, err)
			return false
		}
		if !s.loop || rewound {
			return false
		}
		if err := s.reader.rewind(); err != nil {
			log.Errorf("Failed to loop %s: %v", s.path, err)
			return false
		}
		rewound = true
	}
}

func (s *FileStream) finish() {
	s.ended = true
	if err := s.reader.close(); err != nil {
		log.Debugf("Closing %s: %v", s.path, err)
	}
}

// Close releases the underlying file
func (s *FileStream) Close() error {
	if s.ended {
		return nil
	}
	s.ended = true
	return s.reader.close()
}

// Path returns the file path
func (s *FileStream) Path() string {
	return s.path
}

func (s *FileStream) Channels() int   { return s.format.Channels }
func (s *FileStream) SampleRate() int { return s.format.SampleRate }

func (s *FileStream) CurrentFrameLen() (int, bool) {
	if s.ended {
		return 0, true
	}
	return len(s.buf) - s.pos, s.pos < len(s.buf)
}

func (s *FileStream) TotalDuration() (time.Duration, bool) {
	return 0, false
}
