// ABOUTME: Instrument definitions and the stream factory
// ABOUTME: Builds a fresh synthesized or decoded stream for each play
package choreo

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/gwambient/gwambient/pkg/audio"
	"github.com/gwambient/gwambient/pkg/audio/decode"
	"github.com/gwambient/gwambient/pkg/audio/synth"
)

// ErrUnknownInstrument is returned when a cue names an undefined instrument
var ErrUnknownInstrument = errors.New("unknown instrument")

// SourceKind selects how an instrument produces sound
type SourceKind string

const (
	SourceBeat SourceKind = "beat"
	SourceSine SourceKind = "sine"
	SourceFile SourceKind = "file"
)

// Instrument is a named sound source bound to a mixer channel
type Instrument struct {
	Name    string
	Channel string
	Kind    SourceKind

	// beat
	Base   float64
	Period float64

	// sine
	Freq float64

	// file, relative to the sound directory
	File string
}

func (i Instrument) String() string {
	switch i.Kind {
	case SourceBeat:
		return fmt.Sprintf("%s: beat %gHz every %gs", i.Name, i.Base, i.Period)
	case SourceSine:
		return fmt.Sprintf("%s: sine %gHz", i.Name, i.Freq)
	case SourceFile:
		return fmt.Sprintf("%s: %s", i.Name, i.File)
	}
	return i.Name
}

// Library builds streams for instruments
type Library struct {
	dir         string
	format      audio.Format
	instruments map[string]Instrument
}

// NewLibrary creates a library resolving files under dir
func NewLibrary(dir string, format audio.Format, instruments []Instrument) *Library {
	l := &Library{
		dir:         dir,
		format:      format,
		instruments: make(map[string]Instrument, len(instruments)),
	}
	for _, inst := range instruments {
		l.instruments[inst.Name] = inst
	}
	return l
}

// Instrument returns the named instrument
func (l *Library) Instrument(name string) (Instrument, bool) {
	inst, ok := l.instruments[name]
	return inst, ok
}

// Names returns all instrument names, sorted
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.instruments))
	for name := range l.instruments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build creates a new base stream for the named instrument. Streams are
// unbounded; callers bound them with a fade.
func (l *Library) Build(name string) (audio.Stream, Instrument, error) {
	inst, ok := l.instruments[name]
	if !ok {
		return nil, Instrument{}, fmt.Errorf("%w: %s", ErrUnknownInstrument, name)
	}

	switch inst.Kind {
	case SourceBeat:
		return synth.NewBeat(inst.Base, inst.Period), inst, nil
	case SourceSine:
		return synth.NewSine(inst.Freq, l.format.SampleRate), inst, nil
	case SourceFile:
		path := inst.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(l.dir, path)
		}
		s, err := decode.Open(path, decode.WithChannels(l.format.Channels))
		if err != nil {
			return nil, inst, err
		}
		return s, inst, nil
	}
	return nil, inst, fmt.Errorf("instrument %s has no source", name)
}
