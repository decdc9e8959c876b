// ABOUTME: Observational stream wrapper
// ABOUTME: Reports start, stop and running peak of a stream without altering it
package effect

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gwambient/gwambient/pkg/audio"
)

// EventKind identifies what an Instrumented stream observed
type EventKind int

const (
	EventStarted EventKind = iota
	EventStopped
	EventPeak
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventPeak:
		return "peak"
	}
	return "unknown"
}

// Event is emitted by an Instrumented stream
type Event struct {
	Kind  EventKind
	Label string
	Peak  float32
	At    time.Time
}

// Observer receives stream events. It runs on the goroutine pulling the
// stream, so it must not block.
type Observer func(Event)

// LogObserver logs stream events
func LogObserver(ev Event) {
	entry := log.WithField("label", ev.Label)
	switch ev.Kind {
	case EventStarted:
		entry.Info("Beginning source")
	case EventStopped:
		entry.Info("Finished source")
	case EventPeak:
		entry.WithField("peak", ev.Peak).Debug("New source peak")
	}
}

// Instrumented passes samples through unchanged and reports what it sees
type Instrumented struct {
	inner    audio.Stream
	label    string
	observer Observer

	started   bool
	stopped   bool
	trackPeak bool
	hasPeak   bool
	peak      float32
}

// InstrumentOption configures an Instrumented stream
type InstrumentOption func(*Instrumented)

// WithPeakTracking reports every new running maximum sample value
func WithPeakTracking() InstrumentOption {
	return func(i *Instrumented) {
		i.trackPeak = true
	}
}

// NewInstrumented wraps inner. A nil observer logs events.
func NewInstrumented(inner audio.Stream, label string, observer Observer, opts ...InstrumentOption) *Instrumented {
	if observer == nil {
		observer = LogObserver
	}
	i := &Instrumented{inner: inner, label: label, observer: observer}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Instrumented) emit(kind EventKind) {
	i.observer(Event{Kind: kind, Label: i.label, Peak: i.peak, At: time.Now()})
}

func (i *Instrumented) Next() (float32, bool) {
	v, ok := i.inner.Next()
	if !ok {
		if !i.stopped {
			i.stopped = true
			i.emit(EventStopped)
		}
		return 0, false
	}

	if !i.started {
		i.started = true
		i.emit(EventStarted)
	}

	if i.trackPeak && (!i.hasPeak || v > i.peak) {
		i.hasPeak = true
		i.peak = v
		i.emit(EventPeak)
	}
	return v, true
}

// Label returns the stream label
func (i *Instrumented) Label() string {
	return i.label
}

// Peak returns the running maximum, false before any sample was seen or
// when peak tracking is off
func (i *Instrumented) Peak() (float32, bool) {
	return i.peak, i.hasPeak
}

func (i *Instrumented) Channels() int                        { return i.inner.Channels() }
func (i *Instrumented) SampleRate() int                      { return i.inner.SampleRate() }
func (i *Instrumented) CurrentFrameLen() (int, bool)         { return i.inner.CurrentFrameLen() }
func (i *Instrumented) TotalDuration() (time.Duration, bool) { return i.inner.TotalDuration() }
