// ABOUTME: Reader for the tab-separated event catalog
// ABOUTME: Parses header-named columns and strips ± uncertainties
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var tsvColumns = []string{
	"id", "detection_time", "location_area", "distance", "detectors",
	"NS_NS", "NS_BH", "BH_BH", "mass_gap",
}

// ReadTSV reads events from a tab-separated file with a header row. Rows
// that don't parse are skipped.
func ReadTSV(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return parseTSV(f)
}

func parseTSV(r io.Reader) ([]Event, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range tsvColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("catalog is missing column %q", col)
		}
	}

	var events []Event
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Debugf("Catalog line %d: %v", line, err)
			continue
		}

		ev, err := parseRow(record, index)
		if err != nil {
			log.Debugf("Catalog line %d: %v", line, err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseRow(record []string, index map[string]int) (Event, error) {
	field := func(name string) string {
		i := index[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var ev Event
	var err error

	ev.ID = field("id")

	date, _, _ := strings.Cut(field("detection_time"), " ")
	if ev.Time, err = time.Parse("2006-01-02", date); err != nil {
		return ev, fmt.Errorf("detection_time: %w", err)
	}
	if ev.LocationArea, err = strconv.ParseUint(field("location_area"), 10, 64); err != nil {
		return ev, fmt.Errorf("location_area: %w", err)
	}
	if ev.Distance, err = strconv.ParseUint(stripUncertainty(field("distance")), 10, 64); err != nil {
		return ev, fmt.Errorf("distance: %w", err)
	}
	ev.Detectors = strings.Split(field("detectors"), ",")

	probs := []struct {
		name string
		dst  *float64
	}{
		{"NS_NS", &ev.NSNS},
		{"NS_BH", &ev.NSBH},
		{"BH_BH", &ev.BHBH},
		{"mass_gap", &ev.MassGap},
	}
	for _, p := range probs {
		if *p.dst, err = strconv.ParseFloat(stripUncertainty(field(p.name)), 64); err != nil {
			return ev, fmt.Errorf("%s: %w", p.name, err)
		}
	}
	return ev, nil
}

// stripUncertainty drops a "±x" suffix
func stripUncertainty(s string) string {
	v, _, _ := strings.Cut(s, "±")
	return strings.TrimSpace(v)
}
