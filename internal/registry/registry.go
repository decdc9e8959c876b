// ABOUTME: Registry of currently playing sounds
// ABOUTME: Concurrent label-keyed map of start and end times without a global lock
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry describes one play call
type Entry struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Remaining returns how long the entry has left at now, never negative
func (e Entry) Remaining(now time.Time) time.Duration {
	if d := e.End.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Progress returns the elapsed fraction of the entry at now in [0, 1]
func (e Entry) Progress(now time.Time) float64 {
	total := e.End.Sub(e.Start)
	if total <= 0 {
		return 1
	}
	p := float64(now.Sub(e.Start)) / float64(total)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Registry maps labels to the sound currently playing under them.
// It is passed explicitly to whoever needs it.
type Registry struct {
	entries sync.Map // label -> *Entry
}

// New creates an empty registry
func New() *Registry {
	return &Registry{}
}

// Put records label as playing from start for d and returns the entry.
// A later Put for the same label replaces the entry.
func (r *Registry) Put(label string, start time.Time, d time.Duration) *Entry {
	e := &Entry{
		ID:    uuid.New().String(),
		Label: label,
		Start: start,
		End:   start.Add(d),
	}
	r.entries.Store(label, e)
	return e
}

// Remove deletes label only if it still maps to e. It reports whether it
// removed anything, so each entry is removed at most once.
func (r *Registry) Remove(label string, e *Entry) bool {
	return r.entries.CompareAndDelete(label, e)
}

// Get returns the entry for label
func (r *Registry) Get(label string) (Entry, bool) {
	v, ok := r.entries.Load(label)
	if !ok {
		return Entry{}, false
	}
	return *v.(*Entry), true
}

// Snapshot returns the current entries sorted by label. Concurrent changes
// may or may not be reflected.
func (r *Registry) Snapshot() []Entry {
	var out []Entry
	r.entries.Range(func(_, v any) bool {
		out = append(out, *v.(*Entry))
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].Label < out[j].Label
	})
	return out
}

// Len returns the number of entries
func (r *Registry) Len() int {
	n := 0
	r.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
