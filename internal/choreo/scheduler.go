// ABOUTME: Concurrent choreography scheduler
// ABOUTME: Runs every track in its own goroutine and tracks active sounds in the registry
package choreo

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gwambient/gwambient/internal/mixer"
	"github.com/gwambient/gwambient/internal/registry"
	"github.com/gwambient/gwambient/pkg/audio"
	"github.com/gwambient/gwambient/pkg/audio/effect"
)

// Queue accepts streams for sequential playback
type Queue interface {
	Enqueue(s audio.Stream) *mixer.Completion
}

// Config holds scheduler collaborators
type Config struct {
	Library  *Library
	Queues   map[string]Queue
	Registry *registry.Registry
	Clock    Clock
	Jitter   *Jitter
	Observer effect.Observer
}

// Scheduler plays tracks
type Scheduler struct {
	tracks   []Track
	lib      *Library
	queues   map[string]Queue
	reg      *registry.Registry
	clock    Clock
	jitter   *Jitter
	observer effect.Observer

	watchers sync.WaitGroup
	plays    atomic.Int64
	failures atomic.Int64
}

// NewScheduler creates a scheduler for tracks
func NewScheduler(tracks []Track, cfg Config) *Scheduler {
	s := &Scheduler{
		tracks:   tracks,
		lib:      cfg.Library,
		queues:   cfg.Queues,
		reg:      cfg.Registry,
		clock:    cfg.Clock,
		jitter:   cfg.Jitter,
		observer: cfg.Observer,
	}
	if s.reg == nil {
		s.reg = registry.New()
	}
	if s.clock == nil {
		s.clock = WallClock{}
	}
	if s.jitter == nil {
		s.jitter = NewJitter(0)
	}
	if s.observer == nil {
		s.observer = effect.LogObserver
	}
	return s
}

// Registry returns the registry of active sounds
func (s *Scheduler) Registry() *registry.Registry {
	return s.reg
}

// Plays returns the number of sounds started
func (s *Scheduler) Plays() int64 {
	return s.plays.Load()
}

// Failures returns the number of cues that failed
func (s *Scheduler) Failures() int64 {
	return s.failures.Load()
}

// Run plays all tracks until ctx is done, then waits for every watcher
func (s *Scheduler) Run(ctx context.Context) error {
	log.Printf("Scheduler starting %d tracks", len(s.tracks))

	g, ctx := errgroup.WithContext(ctx)
	for _, t := range s.tracks {
		g.Go(func() error {
			s.runTrack(ctx, t)
			return nil
		})
	}

	err := g.Wait()
	s.watchers.Wait()
	log.Printf("Scheduler stopped after %d plays", s.Plays())
	return err
}

func (s *Scheduler) runTrack(ctx context.Context, t Track) {
	logger := log.WithField("track", t.Name)
	logger.Debugf("Track starting with %d cues", len(t.Cues))

	for pass := 1; ctx.Err() == nil; pass++ {
		start := s.clock.Now()

		for _, c := range t.Cues {
			if ctx.Err() != nil {
				break
			}
			if err := s.runCue(ctx, c); err != nil && ctx.Err() == nil {
				s.failures.Add(1)
				logger.Warnf("Cue %q failed: %v", c, err)
			}
		}

		if rest := t.Rest(s.clock.Now().Sub(start)); rest > 0 && ctx.Err() == nil {
			logger.Debugf("Pass %d done, resting %v", pass, rest)
			_ = s.clock.Sleep(ctx, rest)
		}
	}

	logger.Debug("Track stopped")
}

// runCue executes one cue. A panic is turned into an error so one broken
// cue can't take down the track.
func (s *Scheduler) runCue(ctx context.Context, c Cue) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	switch c := c.(type) {
	case Play:
		return s.play(ctx, c)
	case Sleep:
		d, jerr := s.jitter.Apply(c.Duration, c.Jitter)
		if serr := s.clock.Sleep(ctx, d); serr != nil {
			return serr
		}
		return jerr
	}
	return fmt.Errorf("unknown cue type %T", c)
}

func (s *Scheduler) play(ctx context.Context, p Play) error {
	label := p.Name()

	base, inst, err := s.lib.Build(p.Instrument)
	if err != nil {
		return fmt.Errorf("play %s: %w", label, err)
	}

	q, ok := s.queues[inst.Channel]
	if !ok {
		closeStream(base)
		return fmt.Errorf("play %s: no channel %q", label, inst.Channel)
	}

	// the instrumentation sits outside the fade so truncation is reported
	// as the end of the sound
	stream := effect.NewInstrumented(
		effect.NewFade(effect.Amplify(base, p.Gain), p.Duration, p.Fade, effect.WithFadeIn(p.FadeIn)),
		label,
		s.observer,
	)

	done := q.Enqueue(stream)
	entry := s.reg.Put(label, s.clock.Now(), p.Duration)
	s.plays.Add(1)

	s.watchers.Add(1)
	go s.watch(ctx, label, entry, done, base)

	return nil
}

// watch removes the registry entry once the sound has been played out
func (s *Scheduler) watch(ctx context.Context, label string, entry *registry.Entry, done *mixer.Completion, base audio.Stream) {
	defer s.watchers.Done()

	if err := done.Wait(ctx); err != nil {
		// the mixer may still be pulling base, so leave it open
		s.reg.Remove(label, entry)
		return
	}

	closeStream(base)
	if !s.reg.Remove(label, entry) {
		log.Debugf("Registry entry for %s already replaced", label)
	}
}

func closeStream(s audio.Stream) {
	if c, ok := s.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Debugf("Closing stream: %v", err)
		}
	}
}
