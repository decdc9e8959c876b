// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and its control channels
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// VolumeChangeMsg is sent when the user changes volume or mute
type VolumeChangeMsg struct {
	Volume int
	Muted  bool
}

// QuitMsg is sent when the user quits
type QuitMsg struct{}

// VolumeControl holds channels for volume control communication
type VolumeControl struct {
	Changes chan VolumeChangeMsg
	Quit    chan QuitMsg
}

// NewVolumeControl creates a new volume control handler
func NewVolumeControl() *VolumeControl {
	return &VolumeControl{
		Changes: make(chan VolumeChangeMsg, 10),
		Quit:    make(chan QuitMsg, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(name string, volCtrl *VolumeControl) Model {
	now := time.Now()
	return Model{
		name:       name,
		started:    now,
		now:        now,
		volume:     100,
		volumeCtrl: volCtrl,
	}
}

// Run creates the TUI program. The caller runs it.
func Run(name string, volCtrl *VolumeControl) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(name, volCtrl), tea.WithAltScreen())
	return p, nil
}
