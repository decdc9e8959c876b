// ABOUTME: Status snapshot published by the monitor
// ABOUTME: Combines active sounds, engine stats and scheduler counters
package monitor

import (
	"time"

	"github.com/gwambient/gwambient/internal/engine"
	"github.com/gwambient/gwambient/internal/registry"
)

// Status is a point-in-time view of the installation
type Status struct {
	ServerID string           `json:"server_id"`
	Name     string           `json:"name"`
	Product  string           `json:"product"`
	Version  string           `json:"version"`
	Time     time.Time        `json:"time"`
	Uptime   float64          `json:"uptime_seconds"`
	Active   []registry.Entry `json:"active"`
	Engine   engine.Stats     `json:"engine"`
	Plays    int64            `json:"plays"`
	Failures int64            `json:"failures"`
	Events   int              `json:"catalog_events"`
}

// Collector returns the parts of a Status the monitor doesn't own
type Collector func() Status
