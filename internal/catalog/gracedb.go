// ABOUTME: GraceDB superevent client
// ABOUTME: Lists recent significant events and reads their update documents
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultURL is the public GraceDB superevent endpoint
	DefaultURL = "https://gracedb.ligo.org/apiweb/superevents/"

	// DefaultQuery selects significant production events
	DefaultQuery = "category: Production label: SIGNIF_LOCKED"
)

type supereventList struct {
	NumRows     uint64          `json:"numRows"`
	Superevents []supereventRef `json:"superevents"`
}

type supereventRef struct {
	ID      string            `json:"superevent_id"`
	Created Time              `json:"created"`
	FAR     float64           `json:"far"`
	Links   map[string]string `json:"links"`
}

type eventUpdate struct {
	SupereventID string    `json:"superevent_id"`
	AlertType    string    `json:"alert_type"`
	TimeCreated  Time      `json:"time_created"`
	Event        eventData `json:"event"`
}

type eventData struct {
	Significant bool     `json:"significant"`
	Time        Time     `json:"time"`
	FAR         float64  `json:"far"`
	Instruments []string `json:"instruments"`
	Group       string   `json:"group"`
	Pipeline    string   `json:"pipeline"`
	Search      string   `json:"search"`
	Properties  struct {
		HasNS      float64 `json:"HasNS"`
		HasRemnant float64 `json:"HasRemnant"`
		HasMassGap float64 `json:"HasMassGap"`
	} `json:"properties"`
	Classification struct {
		BBH         float64 `json:"BBH"`
		BNS         float64 `json:"BNS"`
		NSBH        float64 `json:"NSBH"`
		Terrestrial float64 `json:"Terrestrial"`
	} `json:"classification"`
}

func (u eventUpdate) toEvent() Event {
	return Event{
		ID:          u.SupereventID,
		Time:        u.Event.Time.Time,
		Detectors:   u.Event.Instruments,
		NSNS:        u.Event.Classification.BNS,
		NSBH:        u.Event.Classification.NSBH,
		BHBH:        u.Event.Classification.BBH,
		Terrestrial: u.Event.Classification.Terrestrial,
		MassGap:     u.Event.Properties.HasMassGap,
	}
}

// Client reads events from GraceDB
type Client struct {
	baseURL string
	query   string
	cache   *Cache
}

// NewClient creates a client for the superevent list at baseURL
func NewClient(baseURL string, cache *Cache) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: baseURL,
		query:   DefaultQuery,
		cache:   cache,
	}
}

// Fetch returns up to n of the most recent events. Events whose documents
// can't be read are logged and skipped.
func (c *Client) Fetch(ctx context.Context, n int) ([]Event, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog url: %w", err)
	}
	q := u.Query()
	q.Set("query", c.query)
	u.RawQuery = q.Encode()

	// the list changes, so it always comes from the server
	data, err := c.cache.download(ctx, u.String())
	if err != nil {
		return nil, err
	}

	var list supereventList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("invalid superevent list: %w", err)
	}
	log.Printf("Catalog lists %d superevents", len(list.Superevents))

	refs := list.Superevents
	if n >= 0 && len(refs) > n {
		refs = refs[:n]
	}

	var events []Event
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return events, err
		}
		ev, err := c.fetchEvent(ctx, ref)
		if err != nil {
			log.Warnf("Skipping %s: %v", ref.ID, err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (c *Client) fetchEvent(ctx context.Context, ref supereventRef) (Event, error) {
	filesURL, ok := ref.Links["files"]
	if !ok {
		return Event{}, fmt.Errorf("no files link")
	}

	data, err := c.cache.download(ctx, filesURL)
	if err != nil {
		return Event{}, err
	}
	var files map[string]string
	if err := json.Unmarshal(data, &files); err != nil {
		return Event{}, fmt.Errorf("invalid file list: %w", err)
	}

	updateURL, ok := latestUpdate(files)
	if !ok {
		return Event{}, fmt.Errorf("no update document")
	}

	// update documents never change once published
	data, err = c.cache.Get(ctx, updateURL)
	if err != nil {
		return Event{}, err
	}
	var update eventUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		return Event{}, fmt.Errorf("invalid update document: %w", err)
	}
	if update.SupereventID == "" {
		update.SupereventID = ref.ID
	}
	ev := update.toEvent()

	if skyURL, ok := files[SkyMapFile]; ok {
		if err := c.addSkyMap(ctx, &ev, skyURL); err != nil {
			log.Debugf("No sky map for %s: %v", ev.ID, err)
		}
	}
	return ev, nil
}

// addSkyMap fills distance and detectors from the event's sky map headers
func (c *Client) addSkyMap(ctx context.Context, ev *Event, skyURL string) error {
	data, err := c.cache.Get(ctx, skyURL)
	if err != nil {
		return err
	}
	sm, err := ReadSkyMap(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if sm.DistMean > 0 {
		ev.Distance = uint64(math.Round(sm.DistMean))
	}
	if len(ev.Detectors) == 0 {
		ev.Detectors = sm.Detectors
	}
	return nil
}

// latestUpdate picks the last update document by name
func latestUpdate(files map[string]string) (string, bool) {
	var names []string
	for name := range files {
		if strings.Contains(strings.ToLower(name), "update.json") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Strings(names)
	return files[names[len(names)-1]], true
}
