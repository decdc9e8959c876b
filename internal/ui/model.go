// ABOUTME: Bubbletea model for the installation TUI
// ABOUTME: Defines display state and update logic
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gwambient/gwambient/internal/catalog"
	"github.com/gwambient/gwambient/internal/engine"
	"github.com/gwambient/gwambient/internal/registry"
	"github.com/gwambient/gwambient/pkg/audio/effect"
)

const (
	maxRecentEvents  = 8
	maxCatalogEvents = 5
	barWidth         = 20
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().Faint(true)
)

// Model represents the TUI state
type Model struct {
	// Installation
	name    string
	started time.Time
	now     time.Time

	// Sounds
	active []registry.Entry
	recent []effect.Event

	// Engine
	stats    engine.Stats
	plays    int64
	failures int64

	// Catalog
	events []catalog.Event

	// Playback
	volume int
	muted  bool

	// Debug
	showDebug bool

	volumeCtrl *VolumeControl
	quitting   bool

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tickEvery()
}

type tickMsg time.Time

func tickEvery() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.now = time.Time(msg)
		return m, tickEvery()
	case StatusMsg:
		m.applyStatus(msg)
	case StreamEventMsg:
		m.addEvent(effect.Event(msg))
	case CatalogMsg:
		m.events = msg
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Stopping installation...\n"
	}
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderActive())
	b.WriteString(m.renderChannels())
	b.WriteString(m.renderRecent())
	b.WriteString(m.renderCatalog())
	b.WriteString(m.renderStats())

	if m.showDebug {
		b.WriteString(m.renderDebug())
	}

	b.WriteString(m.renderHelp())
	return b.String()
}

// renderHeader renders the title, uptime and volume
func (m Model) renderHeader() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.name))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("Uptime: "))
	b.WriteString(valueStyle.Render(m.now.Sub(m.started).Round(time.Second).String()))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Output: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%dHz %s", m.stats.Format.SampleRate, channelName(m.stats.Format.Channels))))
	b.WriteString("\n")

	muteIcon := ""
	if m.muted {
		muteIcon = " (muted)"
	}
	b.WriteString(headerStyle.Render("Volume: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("[%s] %d%%%s", renderBar(m.volume, 100, 10), m.volume, muteIcon)))
	b.WriteString("\n\n")

	return b.String()
}

// renderActive renders every playing sound with its progress
func (m Model) renderActive() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(fmt.Sprintf("Playing (%d)", len(m.active))))
	b.WriteString("\n")

	if len(m.active) == 0 {
		b.WriteString(valueStyle.Render("  silence"))
		b.WriteString("\n")
	}
	for _, e := range m.active {
		progress := int(e.Progress(m.now) * 1000)
		b.WriteString(fmt.Sprintf("  %-12s [%s] %s left\n",
			truncate(e.Label, 12),
			renderBar(progress, 1000, barWidth),
			e.Remaining(m.now).Round(100*time.Millisecond)))
	}
	b.WriteString("\n")
	return b.String()
}

// renderChannels renders the mixer channel queues
func (m Model) renderChannels() string {
	if len(m.stats.Channels) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(sectionStyle.Render("Channels"))
	b.WriteString("\n")
	for _, ch := range m.stats.Channels {
		state := "idle"
		if ch.Playing {
			state = "playing"
		}
		b.WriteString(valueStyle.Render(fmt.Sprintf("  %-10s %-8s queued: %d  done: %d",
			truncate(ch.Name, 10), state, ch.Pending, ch.Played)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// renderRecent renders the latest stream events, newest first
func (m Model) renderRecent() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Recent"))
	b.WriteString("\n")
	if len(m.recent) == 0 {
		b.WriteString(valueStyle.Render("  nothing yet"))
		b.WriteString("\n")
	}
	for i := len(m.recent) - 1; i >= 0; i-- {
		ev := m.recent[i]
		b.WriteString(valueStyle.Render(fmt.Sprintf("  %s %-8s %s",
			ev.At.Format("15:04:05"), ev.Kind, ev.Label)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// renderCatalog renders the newest catalog events
func (m Model) renderCatalog() string {
	if len(m.events) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(sectionStyle.Render(fmt.Sprintf("Events (%d)", len(m.events))))
	b.WriteString("\n")
	for i, ev := range m.events {
		if i == maxCatalogEvents {
			break
		}
		line := fmt.Sprintf("  %-10s %s %s", ev.ID, ev.Time.Format("2006-01-02"), strings.Join(ev.Detectors, ","))
		b.WriteString(valueStyle.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// renderStats renders engine and scheduler counters
func (m Model) renderStats() string {
	line := fmt.Sprintf("Plays: %d  Failed: %d  Played: %s  Peak: %.2f",
		m.plays, m.failures, m.stats.Played.Round(time.Second), m.stats.Peak)

	s := headerStyle.Render("Stats: ") + valueStyle.Render(line)
	if m.stats.Clipped > 0 {
		s += warnStyle.Render(fmt.Sprintf("  Clipped: %d", m.stats.Clipped))
	}
	return s + "\n\n"
}

// renderDebug renders debug information
func (m Model) renderDebug() string {
	return valueStyle.Render(fmt.Sprintf("DEBUG: inputs=%d frames=%d", m.stats.Inputs, m.stats.Frames)) + "\n\n"
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return helpStyle.Render("↑/↓:Volume  m:Mute  d:Debug  q:Quit") + "\n"
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		if m.volumeCtrl != nil {
			select {
			case m.volumeCtrl.Quit <- QuitMsg{}:
			default:
			}
		}
		return m, tea.Quit
	case "up":
		if m.volume < 100 {
			m.volume += 5
			if m.volume > 100 {
				m.volume = 100
			}
			m.sendVolume()
		}
	case "down":
		if m.volume > 0 {
			m.volume -= 5
			if m.volume < 0 {
				m.volume = 0
			}
			m.sendVolume()
		}
	case "m":
		m.muted = !m.muted
		m.sendVolume()
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

func (m Model) sendVolume() {
	if m.volumeCtrl == nil {
		return
	}
	select {
	case m.volumeCtrl.Changes <- VolumeChangeMsg{Volume: m.volume, Muted: m.muted}:
	default:
	}
}

func (m *Model) addEvent(ev effect.Event) {
	if ev.Kind == effect.EventPeak {
		return
	}
	m.recent = append(m.recent, ev)
	if len(m.recent) > maxRecentEvents {
		m.recent = m.recent[len(m.recent)-maxRecentEvents:]
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if !msg.Time.IsZero() {
		m.now = msg.Time
	}
	m.active = msg.Active
	m.stats = msg.Engine
	m.plays = msg.Plays
	m.failures = msg.Failures
}

// StatusMsg carries a periodic snapshot
type StatusMsg struct {
	Time     time.Time
	Active   []registry.Entry
	Engine   engine.Stats
	Plays    int64
	Failures int64
}

// StreamEventMsg reports a stream starting or stopping
type StreamEventMsg effect.Event

// CatalogMsg delivers loaded catalog events
type CatalogMsg []catalog.Event

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	switch channels {
	case 0:
		return "-"
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	}
	return fmt.Sprintf("%dch", channels)
}
