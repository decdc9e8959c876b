// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, message handling, and key bindings
package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gwambient/gwambient/internal/engine"
	"github.com/gwambient/gwambient/internal/registry"
	"github.com/gwambient/gwambient/pkg/audio"
	"github.com/gwambient/gwambient/pkg/audio/effect"
)

var epoch = time.Date(2019, 4, 25, 8, 18, 26, 0, time.UTC)

func TestNewModel(t *testing.T) {
	model := NewModel("gwambient", nil) // VolumeControl is optional for testing

	if model.volume != 100 {
		t.Errorf("expected default volume 100, got %d", model.volume)
	}

	if model.muted {
		t.Error("expected muted to be false initially")
	}

	if model.showDebug {
		t.Error("expected showDebug to be false initially")
	}

	if len(model.active) != 0 {
		t.Error("expected no active sounds initially")
	}
}

func TestStatusMsg(t *testing.T) {
	model := NewModel("gwambient", nil)

	msg := StatusMsg{
		Time: epoch,
		Active: []registry.Entry{
			{Label: "M-1", Start: epoch, End: epoch.Add(5 * time.Second)},
		},
		Engine: engine.Stats{
			Format: audio.Format{SampleRate: 44100, Channels: 2},
			Peak:   0.5,
		},
		Plays:    7,
		Failures: 1,
	}

	updated, _ := model.Update(msg)
	model = updated.(Model)

	if len(model.active) != 1 || model.active[0].Label != "M-1" {
		t.Errorf("expected M-1 active, got %v", model.active)
	}

	if model.plays != 7 || model.failures != 1 {
		t.Errorf("expected 7 plays and 1 failure, got %d and %d", model.plays, model.failures)
	}

	if !model.now.Equal(epoch) {
		t.Errorf("expected now %v, got %v", epoch, model.now)
	}
}

func TestStreamEvents(t *testing.T) {
	model := NewModel("gwambient", nil)

	for i := 0; i < 12; i++ {
		updated, _ := model.Update(StreamEventMsg{Kind: effect.EventStarted, Label: "beat", At: epoch})
		model = updated.(Model)
	}
	updated, _ := model.Update(StreamEventMsg{Kind: effect.EventPeak, Label: "beat"})
	model = updated.(Model)

	if len(model.recent) != maxRecentEvents {
		t.Errorf("expected %d recent events, got %d", maxRecentEvents, len(model.recent))
	}
	for _, ev := range model.recent {
		if ev.Kind == effect.EventPeak {
			t.Error("peak events should not be listed")
		}
	}
}

func TestCatalogMsg(t *testing.T) {
	model := NewModel("gwambient", nil)

	updated, _ := model.Update(CatalogMsg{{ID: "S190425z"}, {ID: "S190426c"}})
	model = updated.(Model)

	if len(model.events) != 2 {
		t.Errorf("expected 2 catalog events, got %d", len(model.events))
	}
}

func TestVolumeKeys(t *testing.T) {
	ctrl := NewVolumeControl()
	model := NewModel("gwambient", ctrl)

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model = updated.(Model)

	if model.volume != 95 {
		t.Errorf("expected volume 95, got %d", model.volume)
	}

	select {
	case change := <-ctrl.Changes:
		if change.Volume != 95 || change.Muted {
			t.Errorf("unexpected volume change %+v", change)
		}
	default:
		t.Error("expected a volume change to be sent")
	}

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyUp})
	model = updated.(Model)
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyUp})
	model = updated.(Model)

	if model.volume != 100 {
		t.Errorf("expected volume capped at 100, got %d", model.volume)
	}

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	model = updated.(Model)

	if !model.muted {
		t.Error("expected muted after pressing m")
	}
}

func TestQuitKey(t *testing.T) {
	ctrl := NewVolumeControl()
	model := NewModel("gwambient", ctrl)

	updated, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	model = updated.(Model)

	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !model.quitting {
		t.Error("expected quitting to be set")
	}

	select {
	case <-ctrl.Quit:
	default:
		t.Error("expected quit signal")
	}
}

func TestViewRendersSections(t *testing.T) {
	model := NewModel("gwambient", nil)

	if model.View() != "Loading..." {
		t.Error("expected loading view before window size is known")
	}

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	model = updated.(Model)
	updated, _ = model.Update(StatusMsg{
		Time:   epoch.Add(2 * time.Second),
		Active: []registry.Entry{{Label: "beat-low", Start: epoch, End: epoch.Add(4 * time.Second)}},
		Engine: engine.Stats{
			Channels: []engine.ChannelStats{{Name: "beats", Playing: true, Pending: 1}},
			Clipped:  3,
		},
	})
	model = updated.(Model)
	updated, _ = model.Update(CatalogMsg{{ID: "S190425z", Detectors: []string{"L1", "V1"}}})
	model = updated.(Model)

	view := model.View()
	for _, want := range []string{"gwambient", "Playing (1)", "beat-low", "2s left", "beats", "Events (1)", "S190425z", "Clipped: 3", "q:Quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value, max, width int
		want              string
	}{
		{0, 100, 4, "░░░░"},
		{50, 100, 4, "██░░"},
		{100, 100, 4, "████"},
	}

	for _, tt := range tests {
		if got := renderBar(tt.value, tt.max, tt.width); got != tt.want {
			t.Errorf("renderBar(%d, %d, %d) = %q, want %q", tt.value, tt.max, tt.width, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("expected short unchanged, got %q", got)
	}
	if got := truncate("a-very-long-label", 10); got != "a-very-..." {
		t.Errorf("expected truncated label, got %q", got)
	}
}
