// ABOUTME: Gravitational-wave event records
// ABOUTME: Common event type shared by the GraceDB and TSV sources
package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Event is one detection shown on the status display
type Event struct {
	ID           string
	Time         time.Time
	LocationArea uint64
	Distance     uint64
	Detectors    []string
	NSNS         float64
	NSBH         float64
	BHBH         float64
	Terrestrial  float64
	MassGap      float64
}

func (e Event) String() string {
	return fmt.Sprintf("Event: id=%-10s %-8s time=%s area=%d dist=%d ns_ns=%.3f ns_bh=%.3f bh_bh=%.3f terr=%.3f mass_gap=%.3f",
		e.ID,
		strings.Join(e.Detectors, ","),
		e.Time.Format(time.RFC3339),
		e.LocationArea,
		e.Distance,
		e.NSNS,
		e.NSBH,
		e.BHBH,
		e.Terrestrial,
		e.MassGap,
	)
}

// Events have one of these formats
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05 MST",
}

// parseTime parses a catalog timestamp as UTC
func parseTime(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q: %w", s, firstErr)
}

// Time is a catalog timestamp in JSON
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	parsed, err := parseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
