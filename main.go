// ABOUTME: Entry point for the gwambient installation
// ABOUTME: Parses CLI flags, wires engine, scheduler, monitor and TUI, and runs until stopped
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gwambient/gwambient/internal/catalog"
	"github.com/gwambient/gwambient/internal/choreo"
	"github.com/gwambient/gwambient/internal/engine"
	"github.com/gwambient/gwambient/internal/logging"
	"github.com/gwambient/gwambient/internal/monitor"
	"github.com/gwambient/gwambient/internal/ui"
	"github.com/gwambient/gwambient/internal/version"
	"github.com/gwambient/gwambient/pkg/audio/effect"
	"github.com/gwambient/gwambient/pkg/audio/output"
)

var (
	choreography = flag.String("choreography", "", "Choreography YAML file (default: built-in layout)")
	sounds       = flag.String("sounds", "sounds", "Directory holding instrument sound files")
	rate         = flag.Int("rate", 0, "Output sample rate (overrides choreography)")
	channels     = flag.Int("channels", 0, "Output channel count (overrides choreography)")
	bufferMs     = flag.Int("buffer-ms", engine.DefaultBufferMs, "Audio written per output call in milliseconds")
	outputName   = flag.String("output", "oto", "Audio output: oto, portaudio, wav, null")
	record       = flag.String("record", "", "Also record the master mix to this WAV file")
	logFile      = flag.String("log-file", "gwambient.log", "Log file path")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	noTUI        = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	monitorPort  = flag.Int("monitor-port", 8928, "Status server port (0 disables)")
	noMDNS       = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
	name         = flag.String("name", "", "Installation name (default: hostname-gwambient)")
	catalogURL   = flag.String("catalog-url", "", "GraceDB superevent endpoint (empty skips the live catalog)")
	catalogFile  = flag.String("catalog-file", "", "Event catalog TSV file (used instead of -catalog-url)")
	catalogN     = flag.Int("catalog-n", 10, "Number of catalog events to load")
	seed         = flag.Uint64("seed", 0, "Jitter seed (0 picks one at random)")
)

func main() {
	flag.Parse()

	useTUI := !*noTUI

	closer, err := logging.Setup(logging.Config{
		File:    *logFile,
		Console: !useTUI,
		Debug:   *debug || logging.DebugFromEnv(),
	})
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = closer.Close() }()

	installName := *name
	if installName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		installName = fmt.Sprintf("%s-gwambient", hostname)
	}

	log.Printf("Starting %s %s: %s", version.Product, version.Version, installName)

	layout, err := loadChoreography(*choreography)
	if err != nil {
		log.Fatalf("Failed to load choreography: %v", err)
	}
	if *rate > 0 {
		layout.Format.SampleRate = *rate
	}
	if *channels > 0 {
		layout.Format.Channels = *channels
	}
	log.Printf("Format: %dHz, %d channels, %d instruments, %d tracks",
		layout.Format.SampleRate, layout.Format.Channels, len(layout.Instruments), len(layout.Tracks))

	out, err := buildOutput(*outputName, *record)
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}

	eng := engine.New(engine.Config{
		Format:   layout.Format,
		BufferMs: *bufferMs,
		Output:   out,
		Channels: layout.Channels(),
	})
	if err := eng.Open(); err != nil {
		log.Fatalf("Failed to open output: %v", err)
	}

	// TUI setup
	var tuiProg *tea.Program
	var volumeCtrl *ui.VolumeControl
	tuiMsgs := make(chan tea.Msg, 64)

	if useTUI {
		volumeCtrl = ui.NewVolumeControl()
		tuiProg, err = ui.Run(installName, volumeCtrl)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}
	}

	// Observers run on the audio goroutine, so TUI messages are dropped
	// rather than waited on.
	sendTUI := func(msg tea.Msg) {
		if tuiProg == nil {
			return
		}
		select {
		case tuiMsgs <- msg:
		default:
		}
	}

	queues := make(map[string]choreo.Queue)
	for _, ch := range eng.Channels() {
		queues[ch.Name()] = ch
	}

	sched := choreo.NewScheduler(layout.Tracks, choreo.Config{
		Library: choreo.NewLibrary(*sounds, layout.Format, layout.Instruments),
		Queues:  queues,
		Jitter:  choreo.NewJitter(*seed),
		Observer: func(ev effect.Event) {
			effect.LogObserver(ev)
			sendTUI(ui.StreamEventMsg(ev))
		},
	})

	var catalogEvents []catalog.Event
	catalogLoaded := make(chan struct{})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if tuiProg != nil {
		g.Go(func() error {
			if _, err := tuiProg.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
			}
			stop()
			return nil
		})
		g.Go(func() error {
			forwardTUI(ctx, tuiProg, tuiMsgs)
			return nil
		})
		g.Go(func() error {
			handleVolumeControl(ctx, eng, volumeCtrl, stop)
			return nil
		})
	}

	g.Go(func() error {
		return eng.Run(ctx)
	})

	g.Go(func() error {
		return sched.Run(ctx)
	})

	g.Go(func() error {
		defer close(catalogLoaded)
		events, err := loadCatalog(ctx)
		if err != nil {
			log.Warnf("Catalog unavailable: %v", err)
			return nil
		}
		for _, ev := range events {
			log.Info(ev.String())
		}
		catalogEvents = events
		sendTUI(ui.CatalogMsg(events))
		return nil
	})

	if *monitorPort > 0 {
		mon := monitor.New(monitor.Config{
			Port:       *monitorPort,
			Name:       installName,
			EnableMDNS: !*noMDNS,
			Collect: func() monitor.Status {
				st := monitor.Status{
					Active:   sched.Registry().Snapshot(),
					Engine:   eng.Stats(),
					Plays:    sched.Plays(),
					Failures: sched.Failures(),
				}
				select {
				case <-catalogLoaded:
					st.Events = len(catalogEvents)
				default:
				}
				return st
			},
		})
		g.Go(func() error {
			return runDiagnostic(ctx, "Status server", mon.Run)
		})
	}

	if tuiProg != nil {
		g.Go(func() error {
			statusLoop(ctx, sched, eng, sendTUI)
			return nil
		})
	}

	if !useTUI {
		log.Printf("Press Ctrl-C to stop")
	}

	<-ctx.Done()
	log.Printf("Shutting down...")
	if tuiProg != nil {
		tuiProg.Quit()
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("Stopped with error: %v", err)
	}
	log.Printf("Stopped after %d plays (%d failed)", sched.Plays(), sched.Failures())
}

// runDiagnostic runs a component that playback doesn't depend on. Its
// failure is logged and never cancels the group.
func runDiagnostic(ctx context.Context, name string, run func(context.Context) error) error {
	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("%s stopped: %v", name, err)
	}
	return nil
}

func loadChoreography(path string) (*choreo.Choreography, error) {
	if path == "" {
		return choreo.Default()
	}
	return choreo.Load(path)
}

func buildOutput(name, recordPath string) (output.Output, error) {
	out, err := output.New(name, recordPath)
	if err != nil {
		return nil, err
	}
	if recordPath == "" || name == "wav" {
		return out, nil
	}
	return output.Tee{out, output.NewWAV(recordPath)}, nil
}

func loadCatalog(ctx context.Context) ([]catalog.Event, error) {
	if *catalogFile != "" {
		events, err := catalog.ReadTSV(*catalogFile)
		if err != nil {
			return nil, err
		}
		if *catalogN > 0 && len(events) > *catalogN {
			events = events[:*catalogN]
		}
		return events, nil
	}
	if *catalogURL == "" {
		return nil, nil
	}

	cache, err := catalog.NewCache("", nil)
	if err != nil {
		return nil, err
	}
	return catalog.NewClient(*catalogURL, cache).Fetch(ctx, *catalogN)
}

// forwardTUI delivers queued messages to the TUI program
func forwardTUI(ctx context.Context, p *tea.Program, msgs <-chan tea.Msg) {
	for {
		select {
		case msg := <-msgs:
			p.Send(msg)
		case <-ctx.Done():
			return
		}
	}
}

// handleVolumeControl processes volume changes from TUI
func handleVolumeControl(ctx context.Context, eng *engine.Engine, volumeCtrl *ui.VolumeControl, stop func()) {
	for {
		select {
		case vol := <-volumeCtrl.Changes:
			log.Printf("Volume change: %d%%, muted=%v", vol.Volume, vol.Muted)
			eng.SetVolume(vol.Volume)
			eng.SetMuted(vol.Muted)
		case <-volumeCtrl.Quit:
			log.Printf("Received quit signal from TUI")
			stop()
			return
		case <-ctx.Done():
			return
		}
	}
}

// statusLoop periodically updates TUI with installation state
func statusLoop(ctx context.Context, sched *choreo.Scheduler, eng *engine.Engine, send func(tea.Msg)) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			send(ui.StatusMsg{
				Time:     now,
				Active:   sched.Registry().Snapshot(),
				Engine:   eng.Stats(),
				Plays:    sched.Plays(),
				Failures: sched.Failures(),
			})
		}
	}
}
