// ABOUTME: Offline renderer for a single instrument play
// ABOUTME: Runs one play cue through the effect chain and writes it to a WAV file
package main

import (
	"flag"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/gwambient/gwambient/internal/choreo"
	"github.com/gwambient/gwambient/pkg/audio"
	"github.com/gwambient/gwambient/pkg/audio/effect"
	"github.com/gwambient/gwambient/pkg/audio/output"
	"github.com/gwambient/gwambient/pkg/audio/resample"
)

var (
	choreography = flag.String("choreography", "", "Choreography YAML file (default: built-in layout)")
	sounds       = flag.String("sounds", "sounds", "Directory holding instrument sound files")
	instrument   = flag.String("instrument", "", "Instrument to render")
	duration     = flag.Float64("duration", 10, "Play duration in seconds")
	fade         = flag.Float64("fade", 2, "Fade-out seconds")
	fadeIn       = flag.Float64("fade-in", 0, "Fade-in seconds")
	gain         = flag.Float64("gain", 1, "Linear gain")
	out          = flag.String("out", "render.wav", "Output WAV file")
	list         = flag.Bool("list", false, "List instruments and exit")
)

func main() {
	flag.Parse()

	var layout *choreo.Choreography
	var err error
	if *choreography == "" {
		layout, err = choreo.Default()
	} else {
		layout, err = choreo.Load(*choreography)
	}
	if err != nil {
		log.Fatalf("Failed to load choreography: %v", err)
	}

	lib := choreo.NewLibrary(*sounds, layout.Format, layout.Instruments)

	if *list {
		for _, n := range lib.Names() {
			inst, _ := lib.Instrument(n)
			fmt.Println(inst)
		}
		return
	}
	if *instrument == "" {
		log.Fatalf("-instrument is required (use -list to see them)")
	}

	play, err := buildPlay()
	if err != nil {
		log.Fatalf("Invalid play: %v", err)
	}

	written, err := render(lib, layout.Format, play, *out)
	if err != nil {
		log.Fatalf("Render failed: %v", err)
	}

	log.Printf("Rendered %s: %d frames to %s", play, written, *out)
}

func buildPlay() (choreo.Play, error) {
	d, err := choreo.Seconds(*duration)
	if err != nil {
		return choreo.Play{}, fmt.Errorf("duration: %w", err)
	}
	f, err := choreo.Seconds(*fade)
	if err != nil {
		return choreo.Play{}, fmt.Errorf("fade: %w", err)
	}
	fi, err := choreo.Seconds(*fadeIn)
	if err != nil {
		return choreo.Play{}, fmt.Errorf("fade-in: %w", err)
	}
	return choreo.Play{
		Instrument: *instrument,
		Duration:   d,
		Fade:       f,
		FadeIn:     fi,
		Gain:       float32(*gain),
	}, nil
}

// render writes the play to path and returns the number of frames written
func render(lib *choreo.Library, format audio.Format, p choreo.Play, path string) (int64, error) {
	base, _, err := lib.Build(p.Instrument)
	if err != nil {
		return 0, err
	}
	if c, ok := base.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	stream := effect.NewInstrumented(
		effect.NewFade(effect.Amplify(base, p.Gain), p.Duration, p.Fade, effect.WithFadeIn(p.FadeIn)),
		p.Name(),
		effect.LogObserver,
		effect.WithPeakTracking(),
	)
	src := resample.Uniform(stream, format.Channels, format.SampleRate)

	wav := output.NewWAV(path)
	if err := wav.Open(format.SampleRate, format.Channels); err != nil {
		return 0, err
	}

	buf := make([]float32, 4096*format.Channels)
	for {
		n := audio.Fill(src, buf)
		if n > 0 {
			if err := wav.Write(buf[:n]); err != nil {
				_ = wav.Close()
				return 0, err
			}
		}
		if n < len(buf) {
			break
		}
	}

	if err := wav.Close(); err != nil {
		return 0, err
	}
	return wav.Written() / int64(format.Channels), nil
}
