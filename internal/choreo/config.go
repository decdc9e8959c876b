// ABOUTME: Choreography file loading
// ABOUTME: Parses YAML instruments and tracks, with an embedded default layout
package choreo

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/gwambient/gwambient/pkg/audio"
)

//go:embed default.yaml
var defaultChoreography []byte

// Choreography is a complete installation layout
type Choreography struct {
	Format      audio.Format
	Instruments []Instrument
	Tracks      []Track
}

// Channels returns the distinct channel names used by instruments, sorted
func (c *Choreography) Channels() []string {
	seen := make(map[string]bool)
	var names []string
	for _, inst := range c.Instruments {
		if !seen[inst.Channel] {
			seen[inst.Channel] = true
			names = append(names, inst.Channel)
		}
	}
	sort.Strings(names)
	return names
}

type formatConfig struct {
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`
}

type beatConfig struct {
	Base   float64 `yaml:"base"`
	Period float64 `yaml:"period"`
}

type sineConfig struct {
	Freq float64 `yaml:"freq"`
}

type instrumentConfig struct {
	Channel string      `yaml:"channel"`
	Beat    *beatConfig `yaml:"beat"`
	Sine    *sineConfig `yaml:"sine"`
	File    string      `yaml:"file"`
}

type cueConfig struct {
	Play     string   `yaml:"play"`
	Label    string   `yaml:"label"`
	Duration float64  `yaml:"duration"`
	Fade     float64  `yaml:"fade"`
	FadeIn   float64  `yaml:"fade_in"`
	Gain     *float64 `yaml:"gain"`
	Sleep    *float64 `yaml:"sleep"`
	Jitter   float64  `yaml:"jitter"`
}

type trackConfig struct {
	Name  string      `yaml:"name"`
	Cycle float64     `yaml:"cycle"`
	Cues  []cueConfig `yaml:"cues"`
}

type fileConfig struct {
	Format      formatConfig                `yaml:"format"`
	Instruments map[string]instrumentConfig `yaml:"instruments"`
	Tracks      []trackConfig               `yaml:"tracks"`
}

// Default returns the built-in choreography
func Default() (*Choreography, error) {
	return Parse(defaultChoreography)
}

// Load reads a choreography file
func Load(path string) (*Choreography, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read choreography: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML choreography
func Parse(data []byte) (*Choreography, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("invalid choreography: %w", err)
	}

	c := &Choreography{
		Format: audio.Format{SampleRate: fc.Format.SampleRate, Channels: fc.Format.Channels},
	}
	if c.Format.SampleRate <= 0 {
		c.Format.SampleRate = 44100
	}
	if c.Format.Channels <= 0 {
		c.Format.Channels = 2
	}

	names := make([]string, 0, len(fc.Instruments))
	for name := range fc.Instruments {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		inst, err := parseInstrument(name, fc.Instruments[name])
		if err != nil {
			return nil, err
		}
		c.Instruments = append(c.Instruments, inst)
	}

	if len(fc.Tracks) == 0 {
		return nil, errors.New("choreography has no tracks")
	}
	for i, tc := range fc.Tracks {
		t, err := parseTrack(i, tc)
		if errors.Is(err, errDegradedTrack) {
			log.Warnf("Skipping %v", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		c.Tracks = append(c.Tracks, t)
	}
	if len(c.Tracks) == 0 {
		log.Warn("No playable tracks; the installation will be silent")
	}

	return c, nil
}

func parseInstrument(name string, ic instrumentConfig) (Instrument, error) {
	inst := Instrument{Name: name, Channel: ic.Channel}
	if inst.Channel == "" {
		inst.Channel = name
	}

	sources := 0
	if ic.Beat != nil {
		sources++
		if ic.Beat.Base <= 0 || ic.Beat.Period <= 0 {
			return inst, fmt.Errorf("instrument %s: beat needs positive base and period", name)
		}
		inst.Kind, inst.Base, inst.Period = SourceBeat, ic.Beat.Base, ic.Beat.Period
	}
	if ic.Sine != nil {
		sources++
		if ic.Sine.Freq <= 0 {
			return inst, fmt.Errorf("instrument %s: sine needs a positive freq", name)
		}
		inst.Kind, inst.Freq = SourceSine, ic.Sine.Freq
	}
	if ic.File != "" {
		sources++
		inst.Kind, inst.File = SourceFile, ic.File
	}
	if sources != 1 {
		return inst, fmt.Errorf("instrument %s: exactly one of beat, sine or file is required", name)
	}
	return inst, nil
}

// errDegradedTrack marks a track whose only waits were zeroed by bad values
var errDegradedTrack = errors.New("track never sleeps after invalid times were zeroed")

// seconds converts a configured time, logging and zeroing bad values
func seconds(where string, s float64) time.Duration {
	d, _ := checkedSeconds(where, s)
	return d
}

// checkedSeconds is seconds that also reports whether s was usable
func checkedSeconds(where string, s float64) (time.Duration, bool) {
	d, err := Seconds(s)
	if err != nil {
		log.Warnf("%s: %v, using 0", where, err)
		return d, false
	}
	return d, true
}

func parseTrack(i int, tc trackConfig) (Track, error) {
	t := Track{Name: tc.Name}
	if t.Name == "" {
		t.Name = fmt.Sprintf("track-%d", i+1)
	}
	var cycleOK bool
	t.Cycle, cycleOK = checkedSeconds(t.Name+" cycle", tc.Cycle)
	degraded := !cycleOK

	for j, cc := range tc.Cues {
		where := fmt.Sprintf("%s cue %d", t.Name, j+1)
		switch {
		case cc.Play != "" && cc.Sleep != nil:
			return t, fmt.Errorf("%s: play and sleep are exclusive", where)
		case cc.Play != "":
			gain := float32(1)
			if cc.Gain != nil {
				gain = float32(*cc.Gain)
			}
			t.Cues = append(t.Cues, Play{
				Instrument: cc.Play,
				Label:      cc.Label,
				Duration:   seconds(where+" duration", cc.Duration),
				Fade:       seconds(where+" fade", cc.Fade),
				FadeIn:     seconds(where+" fade_in", cc.FadeIn),
				Gain:       gain,
			})
		case cc.Sleep != nil:
			d, okSleep := checkedSeconds(where+" sleep", *cc.Sleep)
			j, okJitter := checkedSeconds(where+" jitter", cc.Jitter)
			degraded = degraded || !okSleep || !okJitter
			t.Cues = append(t.Cues, Sleep{Duration: d, Jitter: j})
		default:
			return t, fmt.Errorf("%s: needs play or sleep", where)
		}
	}

	if !t.sleeps() {
		if degraded {
			return t, fmt.Errorf("%s: %w", t.Name, errDegradedTrack)
		}
		return t, fmt.Errorf("track %s never sleeps; add a sleep cue or a cycle", t.Name)
	}
	return t, nil
}
